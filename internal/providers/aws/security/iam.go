package awssecurity

import (
	"context"
	"fmt"

	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/errors"
)

// errCodeNoPasswordPolicy is returned by GetAccountPasswordPolicy for accounts
// that never set a password policy.
const errCodeNoPasswordPolicy = "NoSuchEntity"

// getAccountPasswordPolicy returns the account password policy. An account
// without one is a successful result with Missing set, not an error.
func (c *Collector) getAccountPasswordPolicy(ctx context.Context, region string, _ []string) (any, error) {
	out, err := c.clientsFor(region).IAM.GetAccountPasswordPolicy(ctx, &iamsvc.GetAccountPasswordPolicyInput{})
	if errors.IsAPIErrorCode(err, errCodeNoPasswordPolicy) {
		return PasswordPolicy{Missing: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account password policy: %w", err)
	}
	if out.PasswordPolicy == nil {
		return nil, fmt.Errorf("get account password policy: empty response")
	}
	return PasswordPolicy{Policy: out.PasswordPolicy}, nil
}

// getAccountSummary returns the IAM account summary map (e.g. AccountMFAEnabled,
// AccountAccessKeysPresent).
func (c *Collector) getAccountSummary(ctx context.Context, region string, _ []string) (any, error) {
	out, err := c.clientsFor(region).IAM.GetAccountSummary(ctx, &iamsvc.GetAccountSummaryInput{})
	if err != nil {
		return nil, fmt.Errorf("get account summary: %w", err)
	}
	summary := make(map[string]int32, len(out.SummaryMap))
	for k, v := range out.SummaryMap {
		summary[k] = v
	}
	return summary, nil
}
