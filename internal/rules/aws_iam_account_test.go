package rules

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/errors"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

var policyKey = awssecurity.GetAccountPasswordPolicy.Key(awssecurity.GlobalRegion)

func TestPasswordRequiresSymbols(t *testing.T) {
	cases := []struct {
		name   string
		policy awssecurity.PasswordPolicy
		want   models.Status
	}{
		{"required", awssecurity.PasswordPolicy{Policy: &iamtypes.PasswordPolicy{RequireSymbols: true}}, models.StatusOK},
		{"not required", awssecurity.PasswordPolicy{Policy: &iamtypes.PasswordPolicy{RequireSymbols: false}}, models.StatusWarn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			findings := newFixture(t).data(policyKey, tc.policy).eval(PasswordRequiresSymbolsRule{}, nil)
			expectOne(t, findings, tc.want)
		})
	}
}

func TestPasswordRequiresSymbols_NoPolicy(t *testing.T) {
	findings := newFixture(t).data(policyKey, awssecurity.PasswordPolicy{Missing: true}).eval(PasswordRequiresSymbolsRule{}, nil)
	f := expectOne(t, findings, models.StatusFail)
	if f.Message != "Account does not have a password policy" {
		t.Errorf("unexpected message %q", f.Message)
	}
}

// Any error node is UNKNOWN, including the NoSuchEntity code IAM uses for a
// missing policy.
func TestPasswordRequiresSymbols_ErrorIsUnknown(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "NoSuchEntity", Message: "The Password Policy with domain name 123456789012 cannot be found."}
	errs := []error{
		errors.Wrap(errors.ErrCodeNotFound, "iam:getAccountPasswordPolicy", fmt.Errorf("get account password policy: %w", apiErr)),
		stderrors.New("AccessDenied"),
	}
	for _, err := range errs {
		findings := newFixture(t).failWith(policyKey, err).eval(PasswordRequiresSymbolsRule{}, nil)
		f := expectOne(t, findings, models.StatusUnknown)
		if !strings.HasPrefix(f.Message, "Unable to query for password policy status: ") {
			t.Errorf("unexpected message %q", f.Message)
		}
	}
}

func TestPasswordRequiresSymbols_NotCollected(t *testing.T) {
	if findings := newFixture(t).eval(PasswordRequiresSymbolsRule{}, nil); len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
}

func TestRootMFAEnabled(t *testing.T) {
	key := awssecurity.GetAccountSummary.Key(awssecurity.GlobalRegion)

	f := expectOne(t, newFixture(t).data(key, map[string]int32{"AccountMFAEnabled": 1}).eval(RootMFAEnabledRule{}, nil), models.StatusOK)
	if f.AccountID != "123456789012" || f.Region != awssecurity.GlobalRegion {
		t.Errorf("unexpected finding %+v", f)
	}
	expectOne(t, newFixture(t).data(key, map[string]int32{"Users": 4}).eval(RootMFAEnabledRule{}, nil), models.StatusFail)
	expectOne(t, newFixture(t).fail(key, "Throttling").eval(RootMFAEnabledRule{}, nil), models.StatusUnknown)
}
