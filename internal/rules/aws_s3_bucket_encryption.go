package rules

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// BucketDefaultEncryptionRule flags S3 buckets without a default server-side
// encryption configuration.
type BucketDefaultEncryptionRule struct{}

func (BucketDefaultEncryptionRule) Describe() Descriptor {
	return Descriptor{
		ID:          "bucketDefaultEncryption",
		Title:       "S3 Bucket Default Encryption",
		Category:    "S3",
		Provider:    ProviderAWS,
		Description: "Ensures that S3 buckets have default encryption enabled",
		MoreInfo:    "AWS S3 supports default encryption for buckets, which encrypts all objects written to the bucket by default.",
		Link:        "https://docs.aws.amazon.com/AmazonS3/latest/dev/bucket-encryption.html",
		Remediation: "Enable default encryption for the S3 bucket.",
		APIs:        []cache.API{awssecurity.ListBuckets, awssecurity.GetBucketEncryption},
	}
}

func (r BucketDefaultEncryptionRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.ListBuckets.Service) {
		key := awssecurity.ListBuckets.Key(region)
		buckets, ok := list[s3types.Bucket](rep, key, "S3 buckets")
		if !ok {
			continue
		}
		for _, b := range buckets {
			name := aws.ToString(b.Name)
			resource := "arn:aws:s3:::" + name
			cfg, ok := detail[*s3types.ServerSideEncryptionConfiguration](rep, key.Child(awssecurity.GetBucketEncryption, name), "bucket encryption", resource)
			if !ok {
				continue
			}
			algorithm := defaultEncryption(cfg)
			if algorithm == "" {
				rep.fail(region, resource, "Bucket %s does not have default encryption enabled", name)
			} else {
				rep.ok(region, resource, "Bucket %s has default encryption enabled using %s", name, algorithm)
			}
		}
	}
	return rep.findings
}

func defaultEncryption(cfg *s3types.ServerSideEncryptionConfiguration) string {
	if cfg == nil {
		return ""
	}
	for _, rule := range cfg.Rules {
		if d := rule.ApplyServerSideEncryptionByDefault; d != nil && d.SSEAlgorithm != "" {
			return string(d.SSEAlgorithm)
		}
	}
	return ""
}
