// Package common loads AWS credentials, resolves the account behind them and
// decides which regions a scan covers. Service collection lives in awssecurity.
package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS profile: its SDK configuration, the account
// it authenticates as and the clients used for account-level lookups.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	ProfileName string

	// AccountID is the resolved AWS account ID for this profile (via STS).
	AccountID string

	// Region is the home region for this profile configuration.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration. awssecurity
	// derives its region-scoped clients from it.
	Config aws.Config

	// Clients holds the identity and region discovery clients.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configurations and resolves scan regions.
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named profile.
	// Pass an empty string to load the default profile.
	LoadProfile(ctx context.Context, profile string) (*ProfileConfig, error)

	// ProfileNames lists every profile found in ~/.aws/credentials and
	// ~/.aws/config without loading any of them.
	ProfileNames() ([]string, error)

	// GetActiveRegions returns all regions that are enabled for the account
	// associated with cfg.
	GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error)

	// ResolveRegions returns the regions to scan: the enabled regions when
	// requested is empty, otherwise requested filtered to enabled regions.
	ResolveRegions(ctx context.Context, cfg *ProfileConfig, requested []string) ([]string, error)
}
