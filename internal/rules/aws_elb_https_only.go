package rules

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// ELBHTTPSOnlyRule flags application load balancers that serve plain HTTP.
// An HTTP listener whose default action redirects to HTTPS is accepted.
type ELBHTTPSOnlyRule struct{}

func (ELBHTTPSOnlyRule) Describe() Descriptor {
	return Descriptor{
		ID:          "elbHttpsOnly",
		Title:       "ELBv2 HTTPS Only",
		Category:    "ELBv2",
		Provider:    ProviderAWS,
		Description: "Ensures ELBs are configured to only accept connections on HTTPS ports.",
		MoreInfo:    "For maximum security, ELBs can be configured to only accept HTTPS connections. Standard HTTP connections will be blocked. This should only be done if the client application is configured to query HTTPS directly and not rely on a redirect from HTTP.",
		Link:        "https://docs.aws.amazon.com/elasticloadbalancing/latest/application/load-balancer-listeners.html",
		Remediation: "Remove non-HTTPS listeners from the load balancer or redirect them to HTTPS.",
		APIs:        []cache.API{awssecurity.DescribeLoadBalancers, awssecurity.DescribeListeners},
	}
}

func (r ELBHTTPSOnlyRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeLoadBalancers.Service) {
		key := awssecurity.DescribeLoadBalancers.Key(region)
		lbs, ok := list[elbv2types.LoadBalancer](rep, key, "load balancers")
		if !ok {
			continue
		}
		for _, lb := range lbs {
			if lb.Type != elbv2types.LoadBalancerTypeEnumApplication {
				continue
			}
			arn := aws.ToString(lb.LoadBalancerArn)
			name := aws.ToString(lb.LoadBalancerName)
			listeners, ok := detail[[]elbv2types.Listener](rep, key.Child(awssecurity.DescribeListeners, arn), "load balancer listeners", arn)
			if !ok {
				continue
			}
			if len(listeners) == 0 {
				rep.ok(region, arn, "No listeners found for load balancer %s", name)
				continue
			}
			var plain []string
			for _, l := range listeners {
				if l.Protocol == elbv2types.ProtocolEnumHttp && !redirectsToHTTPS(l.DefaultActions) {
					plain = append(plain, fmt.Sprintf("HTTP:%d", aws.ToInt32(l.Port)))
				}
			}
			if len(plain) > 0 {
				rep.fail(region, arn, "Load balancer %s accepts unencrypted connections on %s", name, strings.Join(plain, ", "))
			} else {
				rep.ok(region, arn, "Load balancer %s is configured to only accept HTTPS connections", name)
			}
		}
	}
	return rep.findings
}

func redirectsToHTTPS(actions []elbv2types.Action) bool {
	for _, a := range actions {
		if a.Type == elbv2types.ActionTypeEnumRedirect && a.RedirectConfig != nil &&
			strings.EqualFold(aws.ToString(a.RedirectConfig.Protocol), "HTTPS") {
			return true
		}
	}
	return false
}
