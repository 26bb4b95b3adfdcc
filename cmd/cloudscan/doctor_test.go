package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	k8sclient "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/common"
	kube "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/kubernetes"
)

// ── AWS mock ──────────────────────────────────────────────────────────────────

type mockAWSProvider struct {
	profileResult *common.ProfileConfig
	profileErr    error
	regionsResult []string
	regionsErr    error
	lastProfile   string // records the profile name passed to LoadProfile
}

func (m *mockAWSProvider) LoadProfile(_ context.Context, profile string) (*common.ProfileConfig, error) {
	m.lastProfile = profile
	return m.profileResult, m.profileErr
}

func (m *mockAWSProvider) ProfileNames() ([]string, error) {
	return []string{"default", "staging"}, nil
}

func (m *mockAWSProvider) GetActiveRegions(_ context.Context, _ *common.ProfileConfig) ([]string, error) {
	return m.regionsResult, m.regionsErr
}

func (m *mockAWSProvider) ResolveRegions(_ context.Context, _ *common.ProfileConfig, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	return m.regionsResult, m.regionsErr
}

// ── Kubernetes and gcloud mocks ───────────────────────────────────────────────

type failKubeProvider struct{}

func (p *failKubeProvider) ClientsetForContext(_ string) (k8sclient.Interface, kube.ClusterInfo, error) {
	return nil, kube.ClusterInfo{}, errors.New("kubeconfig not found")
}

type mockGcloud struct {
	missing bool
}

func (m mockGcloud) Run(context.Context, string, ...string) ([]byte, error) {
	return []byte("[]"), nil
}

func (m mockGcloud) LookPath(file string) (string, error) {
	if m.missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + file, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func goodMockAWS() *mockAWSProvider {
	return &mockAWSProvider{
		profileResult: &common.ProfileConfig{AccountID: "123456789012", Region: "us-east-1"},
		regionsResult: []string{"us-east-1", "eu-west-1"},
	}
}

func goodMockKube() *testKubeProvider {
	return &testKubeProvider{
		clientset: fake.NewSimpleClientset(),
		info:      kube.ClusterInfo{ContextName: "prod-eks"},
	}
}

func goodDeps() doctorDeps {
	return doctorDeps{aws: goodMockAWS(), kube: goodMockKube(), gcloud: mockGcloud{}}
}

// runDoctorInTmp runs runDoctor from a fresh temp directory with a config
// file that sets the GCP project, and returns the output and result.
func runDoctorInTmp(t *testing.T, deps doctorDeps, opts doctorOptions) (string, DoctorResult) {
	t.Helper()
	tmp := inTempDir(t)

	if opts.configPath == "" {
		opts.configPath = filepath.Join(tmp, "config.yaml")
		if err := os.WriteFile(opts.configPath, []byte("gcp:\n  project: acme\naws:\n  profile: staging\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if opts.policyPath == "" {
		opts.policyPath = defaultPolicyPath
	}

	var buf bytes.Buffer
	result, err := runDoctor(context.Background(), deps, &buf, opts)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	return buf.String(), result
}

// ── table format tests ────────────────────────────────────────────────────────

func TestDoctorAllOK(t *testing.T) {
	out, result := runDoctorInTmp(t, goodDeps(), doctorOptions{})
	if !result.OverallHealthy {
		t.Error("expected OverallHealthy=true")
	}
	for _, want := range []string{
		"Config file: OK",
		"Profiles: OK (2 configured)",
		"Credentials: OK",
		"STS Identity: OK (Account: 123456789012)",
		"Regions API: OK",
		"gcloud: OK (Project: acme)",
		"Kubeconfig: OK",
		"Current Context: OK (prod-eks)",
		"API Reachable: OK",
		"Not found (optional)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q;\ngot:\n%s", want, out)
		}
	}
}

func TestDoctorProfileFromConfig(t *testing.T) {
	awsP := goodMockAWS()
	_, result := runDoctorInTmp(t, doctorDeps{aws: awsP, kube: goodMockKube(), gcloud: mockGcloud{}}, doctorOptions{})
	if awsP.lastProfile != "staging" {
		t.Errorf("expected profile from config, got %q", awsP.lastProfile)
	}
	if result.AWS.Profile != "staging" {
		t.Errorf("expected result profile staging, got %q", result.AWS.Profile)
	}
}

func TestDoctorProfileFlagWins(t *testing.T) {
	awsP := goodMockAWS()
	runDoctorInTmp(t, doctorDeps{aws: awsP, kube: goodMockKube(), gcloud: mockGcloud{}}, doctorOptions{profile: "prod"})
	if awsP.lastProfile != "prod" {
		t.Errorf("expected --profile to win, got %q", awsP.lastProfile)
	}
}

func TestDoctorOneProviderIsEnough(t *testing.T) {
	deps := doctorDeps{
		aws:    &mockAWSProvider{profileErr: errors.New("no credentials configured")},
		kube:   &failKubeProvider{},
		gcloud: mockGcloud{},
	}
	out, result := runDoctorInTmp(t, deps, doctorOptions{})
	if !result.OverallHealthy {
		t.Errorf("gcloud alone should be healthy;\ngot:\n%s", out)
	}
	if !strings.Contains(out, "Credentials: FAIL (no credentials configured)") {
		t.Errorf("expected credentials failure line;\ngot:\n%s", out)
	}
	if !strings.Contains(out, "Kubeconfig: FAIL (kubeconfig not found)") {
		t.Errorf("expected kubeconfig failure line;\ngot:\n%s", out)
	}
}

func TestDoctorNoProviderIsUnhealthy(t *testing.T) {
	deps := doctorDeps{
		aws: &mockAWSProvider{
			profileResult: &common.ProfileConfig{AccountID: "111111111111"},
			regionsErr:    errors.New("EC2 API error"),
		},
		kube:   &failKubeProvider{},
		gcloud: mockGcloud{missing: true},
	}
	out, result := runDoctorInTmp(t, deps, doctorOptions{})
	if result.OverallHealthy {
		t.Error("expected OverallHealthy=false")
	}
	if !strings.Contains(out, "Regions API: FAIL (EC2 API error)") {
		t.Errorf("expected regions failure line;\ngot:\n%s", out)
	}
	if !strings.Contains(out, "gcloud: FAIL") {
		t.Errorf("expected gcloud failure line;\ngot:\n%s", out)
	}
}

func TestDoctorMissingProject(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "empty.yaml")
	if err := os.WriteFile(cfgPath, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, result := runDoctorInTmp(t, goodDeps(), doctorOptions{configPath: cfgPath})
	if result.Google.GcloudOK {
		t.Error("expected gcloud check to fail without a project")
	}
	if !result.OverallHealthy {
		t.Error("aws and kubernetes are still ready")
	}
}

func TestDoctorInvalidConfig(t *testing.T) {
	_, result := runDoctorInTmp(t, goodDeps(), doctorOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if result.Config.Valid {
		t.Error("expected invalid config for a missing explicit path")
	}
	if result.OverallHealthy {
		t.Error("expected OverallHealthy=false")
	}
}

func TestDoctorPolicyValid(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "policy.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nrules:\n  openSSH:\n    enabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, result := runDoctorInTmp(t, goodDeps(), doctorOptions{policyPath: path})
	if !result.Policy.Present || !result.Policy.Valid {
		t.Errorf("expected valid policy, got %+v", result.Policy)
	}
	if !strings.Contains(out, "Policy valid: OK") {
		t.Errorf("expected policy OK line;\ngot:\n%s", out)
	}
}

func TestDoctorPolicyInvalid(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "policy.yaml")
	content := "version: 1\nrules:\n  cloudformationStackFailedStatus:\n    settings:\n      failed_hours_limit: lots\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out, result := runDoctorInTmp(t, goodDeps(), doctorOptions{policyPath: path})
	if result.Policy.Valid {
		t.Error("expected invalid policy")
	}
	if result.OverallHealthy {
		t.Error("expected OverallHealthy=false")
	}
	if !strings.Contains(out, "failed_hours_limit") {
		t.Errorf("expected setting name in output;\ngot:\n%s", out)
	}
}

// ── JSON format ───────────────────────────────────────────────────────────────

func TestDoctorJSON(t *testing.T) {
	out, _ := runDoctorInTmp(t, goodDeps(), doctorOptions{format: "json"})

	var decoded DoctorResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !decoded.OverallHealthy {
		t.Error("expected overall_healthy=true")
	}
	if decoded.AWS.AccountID != "123456789012" {
		t.Errorf("expected account id in JSON, got %q", decoded.AWS.AccountID)
	}
	if decoded.Kubernetes.Context != "prod-eks" {
		t.Errorf("expected context in JSON, got %q", decoded.Kubernetes.Context)
	}
}
