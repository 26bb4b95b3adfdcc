package awssecurity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfnsvc "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ekssvc "github.com/aws/aws-sdk-go-v2/service/eks"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	essvc "github.com/aws/aws-sdk-go-v2/service/elasticsearchservice"
	guardduty "github.com/aws/aws-sdk-go-v2/service/guardduty"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	sagemakersvc "github.com/aws/aws-sdk-go-v2/service/sagemaker"
)

// cloudFormationAPIClient is the narrow CloudFormation interface. It embeds the
// paginator client interfaces so the SDK paginators can be used directly.
type cloudFormationAPIClient interface {
	cfnsvc.ListStacksAPIClient
	cfnsvc.DescribeStackEventsAPIClient
}

// esAPIClient is the narrow Elasticsearch Service interface. Neither call is
// paginated.
type esAPIClient interface {
	ListDomainNames(ctx context.Context, params *essvc.ListDomainNamesInput, optFns ...func(*essvc.Options)) (*essvc.ListDomainNamesOutput, error)
	DescribeElasticsearchDomain(ctx context.Context, params *essvc.DescribeElasticsearchDomainInput, optFns ...func(*essvc.Options)) (*essvc.DescribeElasticsearchDomainOutput, error)
}

// ec2APIClient is the narrow EC2 interface used for network configuration.
type ec2APIClient interface {
	ec2svc.DescribeSubnetsAPIClient
	ec2svc.DescribeRouteTablesAPIClient
	ec2svc.DescribeVpcPeeringConnectionsAPIClient
	ec2svc.DescribeSecurityGroupsAPIClient
}

// sageMakerAPIClient lists notebook instances and describes each one; only
// the describe output carries the KMS key.
type sageMakerAPIClient interface {
	sagemakersvc.ListNotebookInstancesAPIClient
	DescribeNotebookInstance(ctx context.Context, params *sagemakersvc.DescribeNotebookInstanceInput, optFns ...func(*sagemakersvc.Options)) (*sagemakersvc.DescribeNotebookInstanceOutput, error)
}

// iamAPIClient is the narrow IAM interface for account-level settings.
type iamAPIClient interface {
	GetAccountPasswordPolicy(ctx context.Context, params *iamsvc.GetAccountPasswordPolicyInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetAccountPasswordPolicyOutput, error)
	GetAccountSummary(ctx context.Context, params *iamsvc.GetAccountSummaryInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetAccountSummaryOutput, error)
}

// rdsAPIClient covers DB instances and the parameter group hierarchy.
type rdsAPIClient interface {
	rdssvc.DescribeDBInstancesAPIClient
	rdssvc.DescribeDBParameterGroupsAPIClient
	rdssvc.DescribeDBParametersAPIClient
}

// s3APIClient covers bucket listing and default encryption lookups.
type s3APIClient interface {
	s3svc.ListBucketsAPIClient
	GetBucketEncryption(ctx context.Context, params *s3svc.GetBucketEncryptionInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error)
}

// cloudTrailAPIClient is the narrow CloudTrail interface for checking trail
// configuration. DescribeTrails returns all trails visible from the region.
type cloudTrailAPIClient interface {
	DescribeTrails(ctx context.Context, params *cloudtrailsvc.DescribeTrailsInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.DescribeTrailsOutput, error)
}

// guardDutyAPIClient is the narrow GuardDuty interface for checking detector
// status. ListDetectors returns detector IDs; GetDetector returns the status.
type guardDutyAPIClient interface {
	guardduty.ListDetectorsAPIClient
	GetDetector(ctx context.Context, params *guardduty.GetDetectorInput, optFns ...func(*guardduty.Options)) (*guardduty.GetDetectorOutput, error)
}

// awsConfigAPIClient is the narrow AWS Config interface for checking recorder
// status. DescribeConfigurationRecorderStatus returns recording state per recorder.
type awsConfigAPIClient interface {
	DescribeConfigurationRecorderStatus(ctx context.Context, params *configsvc.DescribeConfigurationRecorderStatusInput, optFns ...func(*configsvc.Options)) (*configsvc.DescribeConfigurationRecorderStatusOutput, error)
}

// eksAPIClient lists clusters and describes each one for endpoint and
// control plane logging settings.
type eksAPIClient interface {
	ekssvc.ListClustersAPIClient
	DescribeCluster(ctx context.Context, params *ekssvc.DescribeClusterInput, optFns ...func(*ekssvc.Options)) (*ekssvc.DescribeClusterOutput, error)
}

type cloudWatchAPIClient interface {
	cloudwatchsvc.DescribeAlarmsAPIClient
}

// elbv2APIClient covers load balancers and their listeners.
type elbv2APIClient interface {
	elbv2svc.DescribeLoadBalancersAPIClient
	elbv2svc.DescribeListenersAPIClient
}

// clients bundles the AWS service clients for one region.
type clients struct {
	CloudFormation cloudFormationAPIClient
	ES             esAPIClient
	EC2            ec2APIClient
	SageMaker      sageMakerAPIClient
	IAM            iamAPIClient
	RDS            rdsAPIClient
	S3             s3APIClient
	CloudTrail     cloudTrailAPIClient
	GuardDuty      guardDutyAPIClient
	Config         awsConfigAPIClient
	EKS            eksAPIClient
	CloudWatch     cloudWatchAPIClient
	ELBv2          elbv2APIClient
}

// clientFactory creates clients from a region-scoped AWS config.
// Injection point: tests replace this with a function returning fake clients.
type clientFactory func(cfg aws.Config) *clients

// newDefaultClients creates production AWS SDK clients from the given config.
func newDefaultClients(cfg aws.Config) *clients {
	return &clients{
		CloudFormation: cfnsvc.NewFromConfig(cfg),
		ES:             essvc.NewFromConfig(cfg),
		EC2:            ec2svc.NewFromConfig(cfg),
		SageMaker:      sagemakersvc.NewFromConfig(cfg),
		IAM:            iamsvc.NewFromConfig(cfg),
		RDS:            rdssvc.NewFromConfig(cfg),
		S3:             s3svc.NewFromConfig(cfg),
		CloudTrail:     cloudtrailsvc.NewFromConfig(cfg),
		GuardDuty:      guardduty.NewFromConfig(cfg),
		Config:         configsvc.NewFromConfig(cfg),
		EKS:            ekssvc.NewFromConfig(cfg),
		CloudWatch:     cloudwatchsvc.NewFromConfig(cfg),
		ELBv2:          elbv2svc.NewFromConfig(cfg),
	}
}
