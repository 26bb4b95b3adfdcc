package rules

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	sagemakertypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

func TestNotebookDataEncrypted(t *testing.T) {
	key := awssecurity.ListNotebookInstances.Key("us-east-1")
	findings := newFixture(t).
		data(key, []sagemakertypes.NotebookInstanceSummary{
			{NotebookInstanceName: aws.String("nb-2"), NotebookInstanceArn: aws.String("arn:nb-2")},
			{NotebookInstanceName: aws.String("nb-3"), NotebookInstanceArn: aws.String("arn:nb-3")},
			{NotebookInstanceName: aws.String("nb-4"), NotebookInstanceArn: aws.String("arn:nb-4")},
		}).
		data(key.Child(awssecurity.DescribeNotebookInstance, "nb-2"), awssecurity.NotebookInstance{Name: "nb-2", KmsKeyID: "0723d7e2-8655-4553-b4e3-20084f6bddba"}).
		data(key.Child(awssecurity.DescribeNotebookInstance, "nb-3"), awssecurity.NotebookInstance{Name: "nb-3"}).
		fail(key.Child(awssecurity.DescribeNotebookInstance, "nb-4"), "ValidationException").
		eval(NotebookDataEncryptedRule{}, nil)

	want := []models.Status{models.StatusOK, models.StatusFail, models.StatusUnknown}
	if len(findings) != len(want) {
		t.Fatalf("expected %d findings, got %d", len(want), len(findings))
	}
	for i, s := range want {
		if findings[i].Status != s {
			t.Errorf("finding %d: status %s; want %s", i, findings[i].Status, s)
		}
	}
}

func TestNotebookDataEncrypted_EmptyAndError(t *testing.T) {
	expectOne(t, newFixture(t).
		data(awssecurity.ListNotebookInstances.Key("us-east-1"), []sagemakertypes.NotebookInstanceSummary{}).
		eval(NotebookDataEncryptedRule{}, nil), models.StatusOK)
	expectOne(t, newFixture(t).
		fail(awssecurity.ListNotebookInstances.Key("us-east-1"), "Error listing notebook instances").
		eval(NotebookDataEncryptedRule{}, nil), models.StatusUnknown)
}

func TestRDSEncryptionEnabled(t *testing.T) {
	findings := newFixture(t).
		data(awssecurity.DescribeDBInstances.Key("us-east-1"), []rdstypes.DBInstance{
			{DBInstanceArn: aws.String("arn:db-1"), StorageEncrypted: aws.Bool(true)},
			{DBInstanceArn: aws.String("arn:db-2"), StorageEncrypted: aws.Bool(false)},
		}).
		eval(RDSEncryptionEnabledRule{}, nil)
	if len(findings) != 2 || findings[0].Status != models.StatusOK || findings[1].Status != models.StatusFail {
		t.Fatalf("unexpected findings %+v", findings)
	}
	if findings[1].Resource != "arn:db-2" {
		t.Errorf("Resource = %q", findings[1].Resource)
	}
}

func TestRDSTransportEncryption(t *testing.T) {
	key := awssecurity.DescribeDBParameterGroups.Key("us-east-1")
	findings := newFixture(t).
		data(key, []rdstypes.DBParameterGroup{
			{DBParameterGroupName: aws.String("pg-ssl"), DBParameterGroupFamily: aws.String("postgres15")},
			{DBParameterGroupName: aws.String("pg-plain"), DBParameterGroupFamily: aws.String("postgres15")},
			{DBParameterGroupName: aws.String("mysql"), DBParameterGroupFamily: aws.String("mysql8.0")},
			{DBParameterGroupName: aws.String("mssql"), DBParameterGroupFamily: aws.String("sqlserver-se-15.0")},
		}).
		data(key.Child(awssecurity.DescribeDBParameters, "pg-ssl"), []rdstypes.Parameter{
			{ParameterName: aws.String("rds.force_ssl"), ParameterValue: aws.String("1")},
		}).
		data(key.Child(awssecurity.DescribeDBParameters, "pg-plain"), []rdstypes.Parameter{
			{ParameterName: aws.String("rds.force_ssl"), ParameterValue: aws.String("0")},
		}).
		fail(key.Child(awssecurity.DescribeDBParameters, "mssql"), "Throttling: rate exceeded").
		eval(RDSTransportEncryptionRule{}, nil)

	want := []struct {
		resource string
		status   models.Status
	}{
		{"pg-ssl", models.StatusOK},
		{"pg-plain", models.StatusFail},
		{"mssql", models.StatusUnknown},
	}
	if len(findings) != len(want) {
		t.Fatalf("expected %d findings, got %+v", len(want), findings)
	}
	for i, w := range want {
		if findings[i].Resource != w.resource || findings[i].Status != w.status {
			t.Errorf("finding %d = %s/%s; want %s/%s", i, findings[i].Resource, findings[i].Status, w.resource, w.status)
		}
	}
}

func TestBucketDefaultEncryption(t *testing.T) {
	key := awssecurity.ListBuckets.Key(awssecurity.GlobalRegion)
	findings := newFixture(t).
		data(key, []s3types.Bucket{{Name: aws.String("logs")}, {Name: aws.String("public")}}).
		data(key.Child(awssecurity.GetBucketEncryption, "logs"), &s3types.ServerSideEncryptionConfiguration{
			Rules: []s3types.ServerSideEncryptionRule{{
				ApplyServerSideEncryptionByDefault: &s3types.ServerSideEncryptionByDefault{SSEAlgorithm: s3types.ServerSideEncryptionAwsKms},
			}},
		}).
		data(key.Child(awssecurity.GetBucketEncryption, "public"), &s3types.ServerSideEncryptionConfiguration{Rules: []s3types.ServerSideEncryptionRule{}}).
		eval(BucketDefaultEncryptionRule{}, nil)

	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if findings[0].Status != models.StatusOK || findings[0].Resource != "arn:aws:s3:::logs" {
		t.Errorf("first finding = %+v", findings[0])
	}
	if findings[1].Status != models.StatusFail {
		t.Errorf("second finding = %+v", findings[1])
	}
}
