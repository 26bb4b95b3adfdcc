package aws_security_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
	googleprovider "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/google"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/aws_dataprotection"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/aws_security"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/google"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/kubernetes"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// All packs together must register without duplicate IDs, and each pack must
// only contain rules of its own provider.
func TestPacks_RegisterTogether(t *testing.T) {
	packs := map[string][]rules.Rule{
		rules.ProviderAWS:        append(aws_security.New(), aws_dataprotection.New()...),
		rules.ProviderGoogle:     google.New(),
		rules.ProviderKubernetes: kubernetes.New(),
	}
	reg := rules.NewDefaultRuleRegistry()
	for provider, pack := range packs {
		for _, r := range pack {
			if got := r.Describe().Provider; got != provider {
				t.Errorf("rule %s: provider %q; want %q", r.Describe().ID, got, provider)
			}
			reg.Register(r)
		}
	}
	if len(reg.All()) != 19 {
		t.Errorf("expected 19 rules, got %d", len(reg.All()))
	}
}

// A rule whose collections all failed may only report UNKNOWN.
func TestPacks_ErrorNodesOnlyYieldUnknown(t *testing.T) {
	regionFor := map[string]string{
		rules.ProviderAWS:        awssecurity.GlobalRegion,
		rules.ProviderGoogle:     googleprovider.GlobalRegion,
		rules.ProviderKubernetes: "prod-cluster",
	}
	var all []rules.Rule
	all = append(all, aws_security.New()...)
	all = append(all, aws_dataprotection.New()...)
	all = append(all, google.New()...)
	all = append(all, kubernetes.New()...)

	for _, r := range all {
		d := r.Describe()
		t.Run(d.ID, func(t *testing.T) {
			region := regionFor[d.Provider]
			c := cache.New()
			regions := make(collector.RegionSet)
			for _, api := range d.APIs {
				if err := c.Put(api.Key(region), cache.ErrNode(errors.New("AccessDenied: not authorized"))); err != nil {
					t.Fatalf("put %s: %v", api, err)
				}
				regions.Merge(collector.RegionSet{api.Service: {region}})
			}
			c.Freeze()

			findings := r.Evaluate(rules.Context{
				Cache:     c,
				Settings:  settings.Resolve(d.Settings, nil),
				Regions:   regions,
				Now:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				AccountID: "123456789012",
			})
			if len(findings) == 0 {
				t.Fatal("expected at least one finding for failed collections")
			}
			for _, f := range findings {
				if f.Status != models.StatusUnknown {
					t.Errorf("region %s resource %q: status %s (%s); want UNKNOWN", f.Region, f.Resource, f.Status, f.Message)
				}
			}
		})
	}
}
