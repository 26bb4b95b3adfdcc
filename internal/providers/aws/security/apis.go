// Package awssecurity collects AWS configuration state into the source cache.
// Each exported API names one cache entry; Collector.Catalog wires every API
// to a fetch against region-scoped SDK clients.
//
// Cached data is the SDK's own response types (for example []rdstypes.DBInstance)
// unless noted otherwise on the API.
package awssecurity

import "github.com/pankaj-dahiya-devops/cloudscan/internal/cache"

// GlobalRegion is the region account-wide services are recorded under.
const GlobalRegion = "us-east-1"

var (
	// ListStacks holds []cftypes.StackSummary, excluding deleted stacks.
	ListStacks = cache.API{Service: "cloudformation", Operation: "listStacks"}
	// DescribeStackEvents holds []cftypes.StackEvent per stack name, newest first.
	DescribeStackEvents = cache.API{Service: "cloudformation", Operation: "describeStackEvents"}

	// ListDomainNames holds []estypes.DomainInfo.
	ListDomainNames = cache.API{Service: "es", Operation: "listDomainNames"}
	// DescribeElasticsearchDomain holds *estypes.ElasticsearchDomainStatus per domain name.
	DescribeElasticsearchDomain = cache.API{Service: "es", Operation: "describeElasticsearchDomain"}

	DescribeSubnets               = cache.API{Service: "ec2", Operation: "describeSubnets"}
	DescribeRouteTables           = cache.API{Service: "ec2", Operation: "describeRouteTables"}
	DescribeVpcPeeringConnections = cache.API{Service: "ec2", Operation: "describeVpcPeeringConnections"}
	DescribeSecurityGroups        = cache.API{Service: "ec2", Operation: "describeSecurityGroups"}

	// ListNotebookInstances holds []sagemakertypes.NotebookInstanceSummary.
	ListNotebookInstances = cache.API{Service: "sagemaker", Operation: "listNotebookInstances"}
	// DescribeNotebookInstance holds NotebookInstance per notebook name.
	DescribeNotebookInstance = cache.API{Service: "sagemaker", Operation: "describeNotebookInstance"}

	// GetAccountPasswordPolicy holds PasswordPolicy. An account with no
	// policy is recorded as data with Missing set.
	GetAccountPasswordPolicy = cache.API{Service: "iam", Operation: "getAccountPasswordPolicy"}
	// GetAccountSummary holds map[string]int32.
	GetAccountSummary = cache.API{Service: "iam", Operation: "getAccountSummary"}

	DescribeDBInstances       = cache.API{Service: "rds", Operation: "describeDBInstances"}
	DescribeDBParameterGroups = cache.API{Service: "rds", Operation: "describeDBParameterGroups"}
	// DescribeDBParameters holds []rdstypes.Parameter per parameter group name.
	DescribeDBParameters = cache.API{Service: "rds", Operation: "describeDBParameters"}

	// ListBuckets holds []s3types.Bucket.
	ListBuckets = cache.API{Service: "s3", Operation: "listBuckets"}
	// GetBucketEncryption holds *s3types.ServerSideEncryptionConfiguration per
	// bucket name. A bucket without default encryption has zero rules.
	GetBucketEncryption = cache.API{Service: "s3", Operation: "getBucketEncryption"}

	// DescribeTrails holds []cloudtrailtypes.Trail.
	DescribeTrails = cache.API{Service: "cloudtrail", Operation: "describeTrails"}

	// ListDetectors holds []string detector IDs.
	ListDetectors = cache.API{Service: "guardduty", Operation: "listDetectors"}
	// GetDetector holds Detector per detector ID.
	GetDetector = cache.API{Service: "guardduty", Operation: "getDetector"}

	// DescribeConfigurationRecorderStatus holds []configtypes.ConfigurationRecorderStatus.
	DescribeConfigurationRecorderStatus = cache.API{Service: "configservice", Operation: "describeConfigurationRecorderStatus"}

	// ListClusters holds []string EKS cluster names.
	ListClusters = cache.API{Service: "eks", Operation: "listClusters"}
	// DescribeCluster holds Cluster per cluster name.
	DescribeCluster = cache.API{Service: "eks", Operation: "describeCluster"}

	// DescribeAlarms holds []cwtypes.MetricAlarm.
	DescribeAlarms = cache.API{Service: "cloudwatch", Operation: "describeAlarms"}

	// DescribeLoadBalancers holds []elbv2types.LoadBalancer.
	DescribeLoadBalancers = cache.API{Service: "elbv2", Operation: "describeLoadBalancers"}
	// DescribeListeners holds []elbv2types.Listener per load balancer ARN.
	DescribeListeners = cache.API{Service: "elbv2", Operation: "describeListeners"}
)
