package rules

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// remoteAccessPorts are the TCP ports checked for public exposure.
var remoteAccessPorts = []int32{22, 3389}

// OpenSSHRule flags security groups that expose SSH or RDP to the internet.
type OpenSSHRule struct{}

func (OpenSSHRule) Describe() Descriptor {
	return Descriptor{
		ID:          "openSSH",
		Title:       "Open SSH",
		Category:    "EC2",
		Provider:    ProviderAWS,
		Description: "Determine if TCP port 22 for SSH or 3389 for RDP is open to the public",
		MoreInfo:    "While some ports such as HTTP and HTTPS are required to be open to the public to function properly, more sensitive services such as SSH should be restricted to known IP addresses.",
		Link:        "http://docs.aws.amazon.com/AWSEC2/latest/UserGuide/authorizing-access-to-an-instance.html",
		Remediation: "Restrict TCP ports 22 and 3389 to known IP addresses",
		APIs:        []cache.API{awssecurity.DescribeSecurityGroups},
	}
}

func (r OpenSSHRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeSecurityGroups.Service) {
		groups, ok := list[ec2types.SecurityGroup](rep, awssecurity.DescribeSecurityGroups.Key(region), "security groups")
		if !ok {
			continue
		}
		var found bool
		for _, g := range groups {
			open := publicPorts(g.IpPermissions, remoteAccessPorts)
			if len(open) == 0 {
				continue
			}
			found = true
			rep.fail(region, aws.ToString(g.GroupId), "Security group %s (%s) has %s open to 0.0.0.0/0",
				aws.ToString(g.GroupName), aws.ToString(g.GroupId), strings.Join(open, ", "))
		}
		if !found {
			rep.ok(region, "", "No public open ports found")
		}
	}
	return rep.findings
}

// publicPorts returns "tcp:<port>" for each port in ports that perms allow
// from any IPv4 or IPv6 address.
func publicPorts(perms []ec2types.IpPermission, ports []int32) []string {
	var open []string
	for _, port := range ports {
		for _, p := range perms {
			if !anyAddress(p) || !permitsTCPPort(p, port) {
				continue
			}
			open = append(open, fmt.Sprintf("tcp:%d", port))
			break
		}
	}
	return open
}

func anyAddress(p ec2types.IpPermission) bool {
	for _, r := range p.IpRanges {
		if aws.ToString(r.CidrIp) == "0.0.0.0/0" {
			return true
		}
	}
	for _, r := range p.Ipv6Ranges {
		if aws.ToString(r.CidrIpv6) == "::/0" {
			return true
		}
	}
	return false
}

// permitsTCPPort reports whether p covers TCP port. Protocol "-1" means all
// traffic regardless of the port range.
func permitsTCPPort(p ec2types.IpPermission, port int32) bool {
	switch aws.ToString(p.IpProtocol) {
	case "-1":
		return true
	case "tcp", "6":
		return aws.ToInt32(p.FromPort) <= port && port <= aws.ToInt32(p.ToPort)
	}
	return false
}
