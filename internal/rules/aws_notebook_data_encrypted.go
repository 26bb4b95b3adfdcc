package rules

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	sagemakertypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// NotebookDataEncryptedRule flags SageMaker notebook instances whose storage
// volume is not encrypted with a KMS key.
type NotebookDataEncryptedRule struct{}

func (NotebookDataEncryptedRule) Describe() Descriptor {
	return Descriptor{
		ID:          "notebookDataEncrypted",
		Title:       "Notebook Data Encrypted",
		Category:    "SageMaker",
		Provider:    ProviderAWS,
		Description: "Ensure Notebook data is encrypted",
		MoreInfo:    "An optional encryption key can be supplied during Notebook Instance creation.",
		Link:        "https://docs.aws.amazon.com/sagemaker/latest/dg/API_CreateNotebookInstance.html#API_CreateNotebookInstance_RequestSyntax",
		Remediation: "An existing KMS key should be supplied during Notebook Instance creation.",
		APIs:        []cache.API{awssecurity.ListNotebookInstances, awssecurity.DescribeNotebookInstance},
	}
}

func (r NotebookDataEncryptedRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.ListNotebookInstances.Service) {
		key := awssecurity.ListNotebookInstances.Key(region)
		notebooks, ok := list[sagemakertypes.NotebookInstanceSummary](rep, key, "Notebook Instances")
		if !ok {
			continue
		}
		for _, n := range notebooks {
			name := aws.ToString(n.NotebookInstanceName)
			arn := aws.ToString(n.NotebookInstanceArn)
			nb, ok := detail[awssecurity.NotebookInstance](rep, key.Child(awssecurity.DescribeNotebookInstance, name), "Notebook Instance", arn)
			if !ok {
				continue
			}
			if nb.KmsKeyID != "" {
				rep.ok(region, arn, "KMS key found for Notebook Instance")
			} else {
				rep.fail(region, arn, "KMS key not found for Notebook Instance")
			}
		}
	}
	return rep.findings
}
