package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/errors"
)

// errCodeNoEncryption is returned by GetBucketEncryption for buckets without
// a default encryption configuration.
const errCodeNoEncryption = "ServerSideEncryptionConfigurationNotFoundError"

func (c *Collector) listBuckets(ctx context.Context, region string, _ []string) (any, error) {
	p := s3svc.NewListBucketsPaginator(c.clientsFor(region).S3, &s3svc.ListBucketsInput{})
	buckets, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]s3types.Bucket, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.Buckets, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list S3 buckets: %w", err)
	}
	return buckets, nil
}

// getBucketEncryption returns the default encryption configuration of the
// bucket named path[0]. A bucket with no configuration is a successful
// result with zero rules, not an error.
func (c *Collector) getBucketEncryption(ctx context.Context, region string, path []string) (any, error) {
	out, err := c.clientsFor(region).S3.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{
		Bucket: aws.String(path[0]),
	})
	if errors.IsAPIErrorCode(err, errCodeNoEncryption) {
		return &s3types.ServerSideEncryptionConfiguration{Rules: []s3types.ServerSideEncryptionRule{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bucket encryption for %s: %w", path[0], err)
	}
	if out.ServerSideEncryptionConfiguration == nil {
		return &s3types.ServerSideEncryptionConfiguration{Rules: []s3types.ServerSideEncryptionRule{}}, nil
	}
	return out.ServerSideEncryptionConfiguration, nil
}
