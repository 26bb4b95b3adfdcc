package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

func eksFixture(t *testing.T, clusters ...awssecurity.Cluster) *fixture {
	t.Helper()
	key := awssecurity.ListClusters.Key("eu-west-1")
	names := make([]string, 0, len(clusters))
	f := newFixture(t)
	for _, cl := range clusters {
		names = append(names, cl.Name)
		f.data(key.Child(awssecurity.DescribeCluster, cl.Name), cl)
	}
	return f.data(key, names)
}

func TestEKSPrivateEndpoint(t *testing.T) {
	clusters := []awssecurity.Cluster{
		{Name: "private", ARN: "arn:eks/private"},
		{Name: "open", ARN: "arn:eks/open", EndpointPublicAccess: true, PublicAccessCidrs: []string{"0.0.0.0/0"}},
		{Name: "office", ARN: "arn:eks/office", EndpointPublicAccess: true, PublicAccessCidrs: []string{"203.0.113.0/24"}},
	}

	got := statuses(eksFixture(t, clusters...).eval(EKSPrivateEndpointRule{}, nil))
	if got[models.StatusOK] != 1 || got[models.StatusFail] != 2 {
		t.Errorf("default settings: %v", got)
	}

	got = statuses(eksFixture(t, clusters...).eval(EKSPrivateEndpointRule{}, map[string]any{"allow_restricted_public_endpoint": true}))
	if got[models.StatusOK] != 2 || got[models.StatusFail] != 1 {
		t.Errorf("restricted allowed: %v", got)
	}
}

func TestEKSPrivateEndpoint_NoClusters(t *testing.T) {
	f := expectOne(t, eksFixture(t).eval(EKSPrivateEndpointRule{}, nil), models.StatusOK)
	if f.Message != "No EKS clusters found" {
		t.Errorf("Message = %q", f.Message)
	}
}

func TestEKSPrivateEndpoint_DescribeErrorIsUnknown(t *testing.T) {
	key := awssecurity.ListClusters.Key("eu-west-1")
	findings := newFixture(t).
		data(key, []string{"prod"}).
		fail(key.Child(awssecurity.DescribeCluster, "prod"), "AccessDeniedException").
		eval(EKSPrivateEndpointRule{}, nil)
	f := expectOne(t, findings, models.StatusUnknown)
	if f.Resource != "prod" {
		t.Errorf("Resource = %q", f.Resource)
	}
}

func TestEKSLoggingEnabled(t *testing.T) {
	all := []string{"api", "audit", "authenticator", "controllerManager", "scheduler"}
	findings := eksFixture(t,
		awssecurity.Cluster{Name: "full", LogTypes: all},
		awssecurity.Cluster{Name: "partial", LogTypes: []string{"api", "audit"}},
		awssecurity.Cluster{Name: "none"},
	).eval(EKSLoggingEnabledRule{}, nil)

	want := map[string]models.Status{"full": models.StatusOK, "partial": models.StatusFail, "none": models.StatusFail}
	if len(findings) != len(want) {
		t.Fatalf("expected %d findings, got %+v", len(want), findings)
	}
	for _, f := range findings {
		if f.Status != want[f.Resource] {
			t.Errorf("%s: status %s (%s)", f.Resource, f.Status, f.Message)
		}
		if f.Resource == "partial" && f.Message != "EKS cluster is missing control plane logs: authenticator, controllerManager, scheduler" {
			t.Errorf("partial message = %q", f.Message)
		}
	}
}

func TestEKSLoggingEnabled_RequiredTypesOverride(t *testing.T) {
	findings := eksFixture(t, awssecurity.Cluster{Name: "partial", LogTypes: []string{"api", "audit"}}).
		eval(EKSLoggingEnabledRule{}, map[string]any{"required_log_types": "API,audit"})
	expectOne(t, findings, models.StatusOK)
}
