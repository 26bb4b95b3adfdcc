package rules

import (
	"strings"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/google"
)

// OpenAllPortsRule flags enabled ingress firewall rules that allow every port
// from any address.
type OpenAllPortsRule struct{}

func (OpenAllPortsRule) Describe() Descriptor {
	return Descriptor{
		ID:          "openAllPorts",
		Title:       "Open All Ports",
		Category:    "VPC Network",
		Provider:    ProviderGoogle,
		Description: "Determine if all ports are open to the public",
		MoreInfo:    "While some ports such as HTTP and HTTPS are required to be open to the public to function properly, services should be restricted to known IP addresses.",
		Link:        "https://cloud.google.com/vpc/docs/using-firewalls",
		Remediation: "Restrict ports to known IP addresses",
		APIs:        []cache.API{google.ListFirewalls},
	}
}

func (r OpenAllPortsRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(google.ListFirewalls.Service) {
		node, present := ctx.Cache.Get(google.ListFirewalls.Key(region))
		if !present {
			continue
		}
		firewalls, ok := cache.As[[]google.Firewall](node)
		if !ok {
			rep.unknown(region, "", "Unable to query firewall rules: %s", node.ErrorMessage())
			continue
		}
		if len(firewalls) == 0 {
			rep.ok(region, "", "No firewall rules present")
			continue
		}

		var found bool
		for _, fw := range firewalls {
			if !fw.Ingress() || fw.Disabled || !publicSource(fw.SourceRanges) || !allowsAllPorts(fw.Allowed) {
				continue
			}
			found = true
			resource := fw.SelfLink
			if resource == "" {
				resource = fw.Name
			}
			rep.fail(region, resource, "Firewall rule %s allows all ports from the public internet", fw.Name)
		}
		if !found {
			rep.ok(region, "", "No public open ports found")
		}
	}
	return rep.findings
}

func publicSource(ranges []string) bool {
	for _, r := range ranges {
		if r == "0.0.0.0/0" || r == "::/0" {
			return true
		}
	}
	return false
}

// allowsAllPorts reports whether any entry opens the full port range: protocol
// "all", a tcp/udp entry without ports, or an explicit 0-65535 / 1-65535 range.
func allowsAllPorts(allowed []google.FirewallRule) bool {
	for _, a := range allowed {
		proto := strings.ToLower(a.IPProtocol)
		if proto == "all" {
			return true
		}
		if proto != "tcp" && proto != "udp" {
			continue
		}
		if len(a.Ports) == 0 {
			return true
		}
		for _, p := range a.Ports {
			if p == "0-65535" || p == "1-65535" {
				return true
			}
		}
	}
	return false
}
