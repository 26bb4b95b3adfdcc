package rules

import (
	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// PasswordRequiresSymbolsRule warns when the account password policy does not
// require symbols. An account without a password policy fails.
type PasswordRequiresSymbolsRule struct{}

func (PasswordRequiresSymbolsRule) Describe() Descriptor {
	return Descriptor{
		ID:          "passwordRequiresSymbols",
		Title:       "Password Requires Symbols",
		Category:    "IAM",
		Provider:    ProviderAWS,
		Description: "Ensures password policy requires the use of symbols",
		MoreInfo:    "A strong password policy enforces minimum length, expirations, reuse, and symbol usage",
		Link:        "http://docs.aws.amazon.com/IAM/latest/UserGuide/Using_ManagingPasswordPolicies.html",
		Remediation: "Update the password policy to require the use of symbols",
		APIs:        []cache.API{awssecurity.GetAccountPasswordPolicy},
	}
}

func (r PasswordRequiresSymbolsRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.GetAccountPasswordPolicy.Service) {
		node, present := ctx.Cache.Get(awssecurity.GetAccountPasswordPolicy.Key(region))
		if !present {
			continue
		}
		pol, ok := cache.As[awssecurity.PasswordPolicy](node)
		if !ok {
			rep.unknown(region, "", "Unable to query for password policy status: %s", node.ErrorMessage())
			continue
		}
		switch {
		case pol.Missing || pol.Policy == nil:
			rep.fail(region, "", "Account does not have a password policy")
		case !pol.Policy.RequireSymbols:
			rep.warn(region, "", "Password policy does not require symbols")
		default:
			rep.ok(region, "", "Password policy requires symbols")
		}
	}
	return rep.findings
}

// RootMFAEnabledRule flags accounts whose root user has no MFA device.
type RootMFAEnabledRule struct{}

func (RootMFAEnabledRule) Describe() Descriptor {
	return Descriptor{
		ID:          "rootMFAEnabled",
		Title:       "Root MFA Enabled",
		Category:    "IAM",
		Provider:    ProviderAWS,
		Description: "Ensures a multi-factor authentication device is enabled for the root account",
		MoreInfo:    "The root account should have an MFA device setup to enable two-factor authentication.",
		Link:        "http://docs.aws.amazon.com/IAM/latest/UserGuide/id_credentials_mfa.html",
		Remediation: "Enable an MFA device for the root account and then use an IAM user for managing services",
		APIs:        []cache.API{awssecurity.GetAccountSummary},
	}
}

func (r RootMFAEnabledRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.GetAccountSummary.Service) {
		node, present := ctx.Cache.Get(awssecurity.GetAccountSummary.Key(region))
		if !present {
			continue
		}
		summary, ok := cache.As[map[string]int32](node)
		if !ok {
			rep.unknown(region, "", "Unable to query for account summary: %s", node.ErrorMessage())
			continue
		}
		if summary["AccountMFAEnabled"] == 1 {
			rep.ok(region, "", "An MFA device was found for the root account")
		} else {
			rep.fail(region, "", "An MFA device was not found for the root account")
		}
	}
	return rep.findings
}
