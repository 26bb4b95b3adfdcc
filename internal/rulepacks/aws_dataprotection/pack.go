// Package aws_dataprotection provides the AWS data-protection rule pack.
// It groups encryption at rest and in transit checks for RDS, S3 and
// SageMaker into a single registration call.
package aws_dataprotection

import "github.com/pankaj-dahiya-devops/cloudscan/internal/rules"

// New returns the AWS data-protection rules in evaluation order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.RDSEncryptionEnabledRule{},
		rules.RDSTransportEncryptionRule{},
		rules.BucketDefaultEncryptionRule{},
		rules.NotebookDataEncryptedRule{},
	}
}
