package rules

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	estypes "github.com/aws/aws-sdk-go-v2/service/elasticsearchservice/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// ESPublicEndpointRule flags ElasticSearch domains reachable through a public
// endpoint. Public domains guarded by an IP condition policy may be allowed
// with allow_public_only_if_ip_condition_policy.
type ESPublicEndpointRule struct{}

func (ESPublicEndpointRule) Describe() Descriptor {
	return Descriptor{
		ID:          "esPublicEndpoint",
		Title:       "ElasticSearch Public Service Domain",
		Category:    "ES",
		Provider:    ProviderAWS,
		Description: "Ensures ElasticSearch domains are created with private VPC endpoint options",
		MoreInfo:    "ElasticSearch domains can either be created with a public endpoint or with a VPC configuration that enables internal VPC communication. Domains should be created without a public endpoint to prevent potential public access to the domain.",
		Link:        "https://docs.aws.amazon.com/elasticsearch-service/latest/developerguide/es-vpc.html",
		Remediation: "Configure the ElasticSearch domain to use a VPC endpoint for secure VPC communication.",
		APIs:        []cache.API{awssecurity.ListDomainNames, awssecurity.DescribeElasticsearchDomain},
		Settings: settings.Schema{
			"allow_public_only_if_ip_condition_policy": {
				Description: "Allow public ElasticSearch endpoints that carry an IP condition policy",
				Type:        settings.Bool,
				Default:     false,
			},
		},
	}
}

func (r ESPublicEndpointRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)
	allowIPPolicy := ctx.Settings.Bool("allow_public_only_if_ip_condition_policy")

	for _, region := range ctx.Regions.For(awssecurity.ListDomainNames.Service) {
		key := awssecurity.ListDomainNames.Key(region)
		domains, ok := list[estypes.DomainInfo](rep, key, "ES domains")
		if !ok {
			continue
		}
		for _, d := range domains {
			name := aws.ToString(d.DomainName)
			status, ok := detail[*estypes.ElasticsearchDomainStatus](rep, key.Child(awssecurity.DescribeElasticsearchDomain, name), "ES domain config", name)
			if !ok {
				continue
			}
			arn := aws.ToString(status.ARN)
			if arn == "" {
				arn = name
			}

			switch {
			case status.VPCOptions != nil && aws.ToString(status.VPCOptions.VPCId) != "":
				rep.ok(region, arn, "ES domain is configured to use a VPC endpoint")
			case allowIPPolicy && hasIPCondition(policyStatements(aws.ToString(status.AccessPolicies))):
				rep.ok(region, arn, "ES domain is configured to use a public endpoint, but contains an Ip Condition policy")
			default:
				rep.fail(region, arn, "ES domain is configured to use a public endpoint")
			}
		}
	}
	return rep.findings
}
