package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSTS struct {
	account *string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: f.account}, nil
}

type fakeRegions struct {
	regions []string
	err     error
}

func (f *fakeRegions) DescribeRegions(_ context.Context, _ *ec2.DescribeRegionsInput, _ ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &ec2.DescribeRegionsOutput{}
	for _, r := range f.regions {
		out.Regions = append(out.Regions, ec2types.Region{RegionName: aws.String(r)})
	}
	out.Regions = append(out.Regions, ec2types.Region{})
	return out, nil
}

func profileWith(regions ...string) *ProfileConfig {
	return &ProfileConfig{
		ProfileName: "test",
		Clients:     &ClientSet{STS: &fakeSTS{}, EC2: &fakeRegions{regions: regions}},
	}
}

func TestResolveAccountID(t *testing.T) {
	id, err := resolveAccountID(context.Background(), &fakeSTS{account: aws.String("123456789012")})
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id)

	_, err = resolveAccountID(context.Background(), &fakeSTS{})
	assert.Error(t, err)

	_, err = resolveAccountID(context.Background(), &fakeSTS{err: errors.New("expired token")})
	assert.ErrorContains(t, err, "expired token")
}

func TestGetActiveRegions_SkipsNilNames(t *testing.T) {
	p := NewDefaultAWSClientProvider()
	regions, err := p.GetActiveRegions(context.Background(), profileWith("us-east-1", "eu-west-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, regions)
}

func TestGetActiveRegions_Error(t *testing.T) {
	p := NewDefaultAWSClientProvider()
	cfg := &ProfileConfig{ProfileName: "test", Clients: &ClientSet{EC2: &fakeRegions{err: errors.New("denied")}}}
	_, err := p.GetActiveRegions(context.Background(), cfg)
	assert.ErrorContains(t, err, `profile "test"`)
}

func TestResolveRegions(t *testing.T) {
	p := NewDefaultAWSClientProvider()
	cfg := profileWith("us-west-2", "eu-west-1", "us-east-1")

	all, err := p.ResolveRegions(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"eu-west-1", "us-east-1", "us-west-2"}, all)

	some, err := p.ResolveRegions(context.Background(), cfg, []string{"us-west-2", "ap-south-9", "us-west-2", " eu-west-1 "})
	require.NoError(t, err)
	assert.Equal(t, []string{"us-west-2", "eu-west-1"}, some)

	_, err = p.ResolveRegions(context.Background(), cfg, []string{"ap-south-9"})
	assert.Error(t, err)
}

func TestParseProfilesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	content := "[default]\nregion = us-east-1\n\n[profile staging]\nregion = eu-west-1\n# comment\n[profile prod]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := parseProfilesFromFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "staging", "prod"}, got)

	raw, err := parseProfilesFromFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, "profile staging", raw[1])
}

func TestParseProfilesFromFile_Missing(t *testing.T) {
	got, err := parseProfilesFromFile(filepath.Join(t.TempDir(), "nope"), false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileDisplayName(t *testing.T) {
	assert.Equal(t, "default", profileDisplayName(""))
	assert.Equal(t, "prod", profileDisplayName("prod"))
}
