package rules

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// CrossVPCPublicPrivateRule flags VPC peering connections that are routed from
// public subnets. A route table counts as public when it has an internet
// gateway route and is associated with a subnet that maps public IPs on
// launch, either explicitly or as its VPC's main table.
type CrossVPCPublicPrivateRule struct{}

func (CrossVPCPublicPrivateRule) Describe() Descriptor {
	return Descriptor{
		ID:          "crossVpcPublicPrivate",
		Title:       "Cross VPC Public Private Communication",
		Category:    "EC2",
		Provider:    ProviderAWS,
		Description: "Ensures communication between public and private VPC tiers is not enabled",
		MoreInfo:    "Communication between the public tier of one VPC and the private tier of other VPCs should never be allowed. Instead, VPC peerings with proper NACLs and gateways should be used.",
		Link:        "https://docs.aws.amazon.com/vpc/latest/peering/peering-configurations-partial-access.html",
		Remediation: "Remove the NACL rules allowing communication between the public and private tiers of different VPCs",
		APIs: []cache.API{
			awssecurity.DescribeSubnets,
			awssecurity.DescribeRouteTables,
			awssecurity.DescribeVpcPeeringConnections,
		},
	}
}

func (r CrossVPCPublicPrivateRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeVpcPeeringConnections.Service) {
		subnetNode, ok1 := ctx.Cache.Get(awssecurity.DescribeSubnets.Key(region))
		tableNode, ok2 := ctx.Cache.Get(awssecurity.DescribeRouteTables.Key(region))
		peeringNode, ok3 := ctx.Cache.Get(awssecurity.DescribeVpcPeeringConnections.Key(region))
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		subnets, ok := cache.As[[]ec2types.Subnet](subnetNode)
		if !ok {
			rep.unknown(region, "", "Unable to query for subnets: %s", subnetNode.ErrorMessage())
			continue
		}
		tables, ok := cache.As[[]ec2types.RouteTable](tableNode)
		if !ok {
			rep.unknown(region, "", "Unable to query for route tables: %s", tableNode.ErrorMessage())
			continue
		}
		peerings, ok := cache.As[[]ec2types.VpcPeeringConnection](peeringNode)
		if !ok {
			rep.unknown(region, "", "Unable to query for VPC peering connections: %s", peeringNode.ErrorMessage())
			continue
		}
		if len(peerings) == 0 {
			rep.ok(region, "", "No VPC peering connections found")
			continue
		}

		exposed := publicPeerings(subnets, tables)
		for _, p := range peerings {
			id := aws.ToString(p.VpcPeeringConnectionId)
			if id == "" {
				continue
			}
			if from := exposed[id]; len(from) > 0 {
				rep.fail(region, id, "VPC peering connection %s is routed from public subnets: %s", id, strings.Join(from, ", "))
			} else {
				rep.ok(region, id, "VPC peering connection %s is not routed from public subnets", id)
			}
		}
	}
	return rep.findings
}

// publicPeerings maps each peering connection ID to the sorted public subnet
// IDs whose route table sends traffic through it alongside an internet
// gateway route.
func publicPeerings(subnets []ec2types.Subnet, tables []ec2types.RouteTable) map[string][]string {
	public := make(map[string]bool)
	byVPC := make(map[string][]string)
	for _, s := range subnets {
		id := aws.ToString(s.SubnetId)
		byVPC[aws.ToString(s.VpcId)] = append(byVPC[aws.ToString(s.VpcId)], id)
		if aws.ToBool(s.MapPublicIpOnLaunch) {
			public[id] = true
		}
	}

	explicit := make(map[string]bool)
	for _, t := range tables {
		for _, a := range t.Associations {
			if id := aws.ToString(a.SubnetId); id != "" {
				explicit[id] = true
			}
		}
	}

	exposed := make(map[string]map[string]bool)
	for _, t := range tables {
		var viaIGW bool
		var peerings []string
		for _, route := range t.Routes {
			if strings.HasPrefix(aws.ToString(route.GatewayId), "igw-") {
				viaIGW = true
			}
			if id := aws.ToString(route.VpcPeeringConnectionId); id != "" {
				peerings = append(peerings, id)
			}
		}
		if !viaIGW || len(peerings) == 0 {
			continue
		}

		var associated []string
		for _, a := range t.Associations {
			if id := aws.ToString(a.SubnetId); id != "" {
				associated = append(associated, id)
			}
			if aws.ToBool(a.Main) {
				for _, id := range byVPC[aws.ToString(t.VpcId)] {
					if !explicit[id] {
						associated = append(associated, id)
					}
				}
			}
		}
		for _, subnet := range associated {
			if !public[subnet] {
				continue
			}
			for _, p := range peerings {
				if exposed[p] == nil {
					exposed[p] = make(map[string]bool)
				}
				exposed[p][subnet] = true
			}
		}
	}

	out := make(map[string][]string, len(exposed))
	for p, set := range exposed {
		for subnet := range set {
			out[p] = append(out[p], subnet)
		}
		sort.Strings(out[p])
	}
	return out
}
