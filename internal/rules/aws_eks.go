package rules

import (
	"slices"
	"strings"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// EKSPrivateEndpointRule flags EKS clusters whose API server endpoint is
// reachable from the internet.
type EKSPrivateEndpointRule struct{}

func (EKSPrivateEndpointRule) Describe() Descriptor {
	return Descriptor{
		ID:          "eksPrivateEndpoint",
		Title:       "EKS Private Endpoint",
		Category:    "EKS",
		Provider:    ProviderAWS,
		Description: "Ensures the private endpoint setting is enabled for EKS clusters",
		MoreInfo:    "EKS private endpoints can be used to route all traffic between the Kubernetes worker and control plane nodes over a private VPC endpoint rather than across the public internet.",
		Link:        "https://docs.aws.amazon.com/eks/latest/userguide/cluster-endpoint.html",
		Remediation: "Enable the private endpoint setting for all EKS clusters and disable or restrict the public endpoint.",
		APIs:        []cache.API{awssecurity.ListClusters, awssecurity.DescribeCluster},
		Settings: settings.Schema{
			"allow_restricted_public_endpoint": {
				Description: "Allow public EKS endpoints whose access is limited to specific CIDR ranges",
				Type:        settings.Bool,
				Default:     false,
			},
		},
	}
}

func (r EKSPrivateEndpointRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)
	allowRestricted := ctx.Settings.Bool("allow_restricted_public_endpoint")

	for _, region := range ctx.Regions.For(awssecurity.ListClusters.Service) {
		key := awssecurity.ListClusters.Key(region)
		names, ok := list[string](rep, key, "EKS clusters")
		if !ok {
			continue
		}
		for _, name := range names {
			cl, ok := detail[awssecurity.Cluster](rep, key.Child(awssecurity.DescribeCluster, name), "EKS cluster", name)
			if !ok {
				continue
			}
			resource := cl.ARN
			if resource == "" {
				resource = name
			}

			switch {
			case !cl.EndpointPublicAccess:
				rep.ok(region, resource, "EKS cluster has public endpoint access disabled")
			case allowRestricted && len(cl.PublicAccessCidrs) > 0 && !slices.Contains(cl.PublicAccessCidrs, "0.0.0.0/0"):
				rep.ok(region, resource, "EKS cluster public endpoint is restricted to %d CIDR ranges", len(cl.PublicAccessCidrs))
			default:
				rep.fail(region, resource, "EKS cluster has public endpoint access enabled")
			}
		}
	}
	return rep.findings
}

// EKSLoggingEnabledRule flags EKS clusters that do not ship the required
// control plane log types.
type EKSLoggingEnabledRule struct{}

func (EKSLoggingEnabledRule) Describe() Descriptor {
	return Descriptor{
		ID:          "eksLoggingEnabled",
		Title:       "EKS Logging Enabled",
		Category:    "EKS",
		Provider:    ProviderAWS,
		Description: "Ensures all EKS cluster control plane logs are being sent to CloudWatch",
		MoreInfo:    "EKS supports routing of cluster event and audit logs to CloudWatch, including control plane logs. All logs should be sent to CloudWatch for security analysis.",
		Link:        "https://docs.aws.amazon.com/eks/latest/userguide/control-plane-logs.html",
		Remediation: "Enable all EKS cluster logs to be sent to CloudWatch with proper log retention limits.",
		APIs:        []cache.API{awssecurity.ListClusters, awssecurity.DescribeCluster},
		Settings: settings.Schema{
			"required_log_types": {
				Description: "Comma-separated control plane log types that must be enabled",
				Type:        settings.String,
				Regex:       `^[a-zA-Z]+(,[a-zA-Z]+)*$`,
				Default:     "api,audit,authenticator,controllerManager,scheduler",
			},
		},
	}
}

func (r EKSLoggingEnabledRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)
	required := strings.Split(ctx.Settings.String("required_log_types"), ",")

	for _, region := range ctx.Regions.For(awssecurity.ListClusters.Service) {
		key := awssecurity.ListClusters.Key(region)
		names, ok := list[string](rep, key, "EKS clusters")
		if !ok {
			continue
		}
		for _, name := range names {
			cl, ok := detail[awssecurity.Cluster](rep, key.Child(awssecurity.DescribeCluster, name), "EKS cluster", name)
			if !ok {
				continue
			}
			resource := cl.ARN
			if resource == "" {
				resource = name
			}

			if len(cl.LogTypes) == 0 {
				rep.fail(region, resource, "EKS cluster control plane logging is disabled")
				continue
			}
			var missing []string
			for _, t := range required {
				if !slices.ContainsFunc(cl.LogTypes, func(have string) bool { return strings.EqualFold(have, t) }) {
					missing = append(missing, t)
				}
			}
			if len(missing) > 0 {
				rep.fail(region, resource, "EKS cluster is missing control plane logs: %s", strings.Join(missing, ", "))
				continue
			}
			rep.ok(region, resource, "EKS cluster has all required control plane logs enabled")
		}
	}
	return rep.findings
}
