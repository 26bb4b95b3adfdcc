package engine

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/common"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/google"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/kubernetes"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
)

// Target is a provider that is ready to collect.
type Target struct {
	Provider string
	Catalog  *collector.Catalog

	// Regions are the regions regional operations run in.
	Regions []string

	AccountID string
	Profile   string

	// Metadata is merged into the report metadata.
	Metadata map[string]any
}

// ProviderSource prepares one provider for a scan: credentials, scope and
// the operation catalog.
type ProviderSource interface {
	Name() string
	Setup(ctx context.Context, opts ScanOptions) (*Target, error)
}

// AWSSource loads an AWS profile and resolves its regions.
type AWSSource struct {
	provider common.AWSClientProvider
	catalog  func(cfg aws.Config) *collector.Catalog
}

// NewAWSSource returns a source backed by provider and the awssecurity
// collector.
func NewAWSSource(provider common.AWSClientProvider) *AWSSource {
	return &AWSSource{
		provider: provider,
		catalog: func(cfg aws.Config) *collector.Catalog {
			return awssecurity.NewCollector(cfg).Catalog()
		},
	}
}

func (s *AWSSource) Name() string { return rules.ProviderAWS }

// Setup implements ProviderSource.
func (s *AWSSource) Setup(ctx context.Context, opts ScanOptions) (*Target, error) {
	profile, err := s.provider.LoadProfile(ctx, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}

	regions, err := s.provider.ResolveRegions(ctx, profile, opts.Regions)
	if err != nil {
		return nil, fmt.Errorf("resolve regions for profile %q: %w", profile.ProfileName, err)
	}

	return &Target{
		Provider:  rules.ProviderAWS,
		Catalog:   s.catalog(profile.Config),
		Regions:   regions,
		AccountID: profile.AccountID,
		Profile:   profile.ProfileName,
	}, nil
}

// GoogleSource scans one GCP project through the gcloud CLI.
type GoogleSource struct {
	newCollector func(project string) *google.Collector
}

// NewGoogleSource returns a source that shells out to gcloud.
func NewGoogleSource() *GoogleSource {
	return &GoogleSource{newCollector: google.NewCollector}
}

func (s *GoogleSource) Name() string { return rules.ProviderGoogle }

// Setup implements ProviderSource.
func (s *GoogleSource) Setup(_ context.Context, opts ScanOptions) (*Target, error) {
	c := s.newCollector(opts.Project)
	if err := c.Check(); err != nil {
		return nil, err
	}
	return &Target{
		Provider: rules.ProviderGoogle,
		Catalog:  c.Catalog(),
		Regions:  []string{google.GlobalRegion},
		Metadata: map[string]any{"gcp_project": c.Project()},
	}, nil
}

// KubernetesSource scans the cluster behind one kubeconfig context.
type KubernetesSource struct {
	provider kubernetes.KubeClientProvider
}

// NewKubernetesSource returns a source backed by provider.
func NewKubernetesSource(provider kubernetes.KubeClientProvider) *KubernetesSource {
	return &KubernetesSource{provider: provider}
}

func (s *KubernetesSource) Name() string { return rules.ProviderKubernetes }

// Setup implements ProviderSource.
func (s *KubernetesSource) Setup(_ context.Context, opts ScanOptions) (*Target, error) {
	client, info, err := s.provider.ClientsetForContext(opts.KubeContext)
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig context %q: %w", opts.KubeContext, err)
	}
	return &Target{
		Provider: rules.ProviderKubernetes,
		Catalog:  kubernetes.NewCollector(client, info).Catalog(),
		Regions:  []string{info.ContextName},
		Metadata: map[string]any{
			"kube_context": info.ContextName,
			"kube_server":  info.Server,
		},
	}, nil
}
