package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/output"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func renderToString(findings []models.Finding, opts output.TableOptions) string {
	var buf bytes.Buffer
	output.RenderTable(&buf, findings, opts)
	return buf.String()
}

func oneFinding(overrides ...func(*models.Finding)) models.Finding {
	f := models.Finding{
		ID:       "openSSH-us-east-1-sg-0123456789abcdef0",
		RuleID:   "openSSH",
		Provider: "aws",
		Resource: "sg-0123456789abcdef0",
		Region:   "us-east-1",
		Profile:  "prod",
		Status:   models.StatusFail,
		Message:  "Security group sg-0123456789abcdef0 allows SSH from 0.0.0.0/0",
	}
	for _, fn := range overrides {
		fn(&f)
	}
	return f
}

// ── optional columns ──────────────────────────────────────────────────────────

func TestRenderTable_ProfileColumn_WhenEnabled(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{IncludeProfile: true})
	if !strings.Contains(out, "PROFILE") {
		t.Errorf("expected PROFILE column header in output\ngot:\n%s", out)
	}
	if !strings.Contains(out, "prod") {
		t.Errorf("expected profile value 'prod' in output\ngot:\n%s", out)
	}
}

func TestRenderTable_ProfileColumn_WhenDisabled(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{})
	if strings.Contains(out, "PROFILE") {
		t.Errorf("PROFILE column must not appear when IncludeProfile=false\ngot:\n%s", out)
	}
}

func TestRenderTable_ProviderColumn(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{IncludeProvider: true})
	if !strings.Contains(out, "PROVIDER") {
		t.Errorf("expected PROVIDER column header\ngot:\n%s", out)
	}
}

// ── cells ─────────────────────────────────────────────────────────────────────

func TestRenderTable_RegionLevelFindingShowsRegionAsResource(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding(func(f *models.Finding) {
		f.Resource = ""
		f.RuleID = "guarddutyEnabled"
	})}, output.TableOptions{})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[2], "us-east-1") {
		t.Errorf("expected region in resource column, got %q", lines[2])
	}
}

func TestRenderTable_MessageIsTruncatedWhenTooLong(t *testing.T) {
	long := strings.Repeat("x", 200)
	out := renderToString([]models.Finding{oneFinding(func(f *models.Finding) { f.Message = long })}, output.TableOptions{})
	if strings.Contains(out, long) {
		t.Errorf("expected long message to be truncated")
	}
	if !strings.Contains(out, "...") {
		t.Errorf("expected ellipsis in truncated message\ngot:\n%s", out)
	}
}

func TestRenderTable_LongResourceTruncatedWithEllipsis(t *testing.T) {
	arn := "arn:aws:s3:::" + strings.Repeat("b", 60)
	out := renderToString([]models.Finding{oneFinding(func(f *models.Finding) { f.Resource = arn })}, output.TableOptions{})
	if !strings.Contains(out, "…") {
		t.Errorf("expected resource to be truncated\ngot:\n%s", out)
	}
}

func TestRenderTable_EmptyFindings_PrintsNoFindings(t *testing.T) {
	out := renderToString(nil, output.TableOptions{})
	if strings.TrimSpace(out) != "No findings." {
		t.Errorf("expected 'No findings.', got %q", out)
	}
}

func TestRenderTable_ColoredFalse_NoAnsiCodes(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{Colored: false})
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI codes when Colored=false\ngot:\n%q", out)
	}
}

func TestRenderTable_ColoredTrue_HasAnsiCodes(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{Colored: true})
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected ANSI codes when Colored=true\ngot:\n%q", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL label in colored output")
	}
}

func TestRenderTable_LocationLabel(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{})
	if !strings.Contains(out, "REGION") {
		t.Errorf("expected default REGION header")
	}
	out = renderToString([]models.Finding{oneFinding()}, output.TableOptions{LocationLabel: "CONTEXT"})
	if !strings.Contains(out, "CONTEXT") || strings.Contains(out, "REGION") {
		t.Errorf("expected CONTEXT header only\ngot:\n%s", out)
	}
}

// ── ShortenMessage ────────────────────────────────────────────────────────────

func TestShortenMessage(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 1, "a..."},
	}
	for _, c := range cases {
		if got := output.ShortenMessage(c.in, c.max); got != c.want {
			t.Errorf("ShortenMessage(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

// ── summary ───────────────────────────────────────────────────────────────────

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	output.RenderSummary(&buf, models.ScanSummary{
		TotalFindings:  3,
		OKFindings:     1,
		FailFindings:   2,
		RulesEvaluated: 2,
		CrashedRules:   []string{"openSSH"},
	}, false)

	out := buf.String()
	if !strings.Contains(out, "3 findings from 2 rules") {
		t.Errorf("unexpected summary line\ngot:\n%s", out)
	}
	if !strings.Contains(out, "FAIL 2") {
		t.Errorf("expected FAIL count\ngot:\n%s", out)
	}
	if !strings.Contains(out, "crashed rules: openSSH") {
		t.Errorf("expected crashed rules line\ngot:\n%s", out)
	}
}

// ── JSON and rule catalog ─────────────────────────────────────────────────────

func TestRenderJSON_StatusByName(t *testing.T) {
	var buf bytes.Buffer
	if err := output.RenderJSON(&buf, oneFinding()); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["status"] != "FAIL" {
		t.Errorf("expected status FAIL, got %v", decoded["status"])
	}
}

func TestDescribeRules_AndTable(t *testing.T) {
	infos := output.DescribeRules([]rules.Descriptor{{
		ID:       "cloudformationStackFailedStatus",
		Title:    "Stack Failed Status",
		Category: "CloudFormation",
		Provider: "aws",
		APIs:     []cache.API{{Service: "cloudformation", Operation: "listStacks"}},
		Settings: settings.Schema{
			"failed_hours_limit": {Type: settings.Int, Default: 0},
		},
	}})

	if len(infos) != 1 || len(infos[0].Settings) != 1 {
		t.Fatalf("unexpected infos %+v", infos)
	}
	if infos[0].APIs[0] != "cloudformation:listStacks" {
		t.Errorf("unexpected API string %q", infos[0].APIs[0])
	}

	var buf bytes.Buffer
	output.RenderRuleTable(&buf, infos)
	out := buf.String()
	if !strings.Contains(out, "cloudformationStackFailedStatus") || !strings.Contains(out, "failed_hours_limit") {
		t.Errorf("expected rule and setting in table\ngot:\n%s", out)
	}
}
