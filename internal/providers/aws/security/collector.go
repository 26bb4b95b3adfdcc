package awssecurity

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	estypes "github.com/aws/aws-sdk-go-v2/service/elasticsearchservice/types"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	sagemakertypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

// Collector owns region-scoped SDK clients for one AWS profile and exposes
// them as collector operations.
type Collector struct {
	base    aws.Config
	factory clientFactory

	mu       sync.Mutex
	regional map[string]*clients
}

// NewCollector returns a Collector wired to production AWS SDK clients.
func NewCollector(cfg aws.Config) *Collector {
	return newCollectorWithFactory(cfg, newDefaultClients)
}

// newCollectorWithFactory returns a Collector that uses f to build clients,
// allowing tests to inject fakes.
func newCollectorWithFactory(cfg aws.Config, f clientFactory) *Collector {
	return &Collector{base: cfg, factory: f, regional: make(map[string]*clients)}
}

// clientsFor returns the clients for region, creating them on first use.
func (c *Collector) clientsFor(region string) *clients {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.regional[region]; ok {
		return cl
	}
	cfg := c.base.Copy()
	cfg.Region = region
	cl := c.factory(cfg)
	c.regional[region] = cl
	return cl
}

// Catalog returns every AWS operation this collector can run.
func (c *Collector) Catalog() *collector.Catalog {
	return collector.NewCatalog(
		collector.Operation{API: ListStacks, Fetch: c.listStacks},
		collector.Operation{
			API:       DescribeStackEvents,
			Parent:    &ListStacks,
			ParentIDs: collector.IDs(func(s cftypes.StackSummary) string { return aws.ToString(s.StackName) }),
			Fetch:     c.describeStackEvents,
		},

		collector.Operation{API: ListDomainNames, Fetch: c.listDomainNames},
		collector.Operation{
			API:       DescribeElasticsearchDomain,
			Parent:    &ListDomainNames,
			ParentIDs: collector.IDs(func(d estypes.DomainInfo) string { return aws.ToString(d.DomainName) }),
			Fetch:     c.describeElasticsearchDomain,
		},

		collector.Operation{API: DescribeSubnets, Fetch: c.describeSubnets},
		collector.Operation{API: DescribeRouteTables, Fetch: c.describeRouteTables},
		collector.Operation{API: DescribeVpcPeeringConnections, Fetch: c.describeVpcPeeringConnections},
		collector.Operation{API: DescribeSecurityGroups, Fetch: c.describeSecurityGroups},

		collector.Operation{API: ListNotebookInstances, Fetch: c.listNotebookInstances},
		collector.Operation{
			API:    DescribeNotebookInstance,
			Parent: &ListNotebookInstances,
			ParentIDs: collector.IDs(func(n sagemakertypes.NotebookInstanceSummary) string {
				return aws.ToString(n.NotebookInstanceName)
			}),
			Fetch: c.describeNotebookInstance,
		},

		collector.Operation{API: GetAccountPasswordPolicy, Region: GlobalRegion, Fetch: c.getAccountPasswordPolicy},
		collector.Operation{API: GetAccountSummary, Region: GlobalRegion, Fetch: c.getAccountSummary},

		collector.Operation{API: DescribeDBInstances, Fetch: c.describeDBInstances},
		collector.Operation{API: DescribeDBParameterGroups, Fetch: c.describeDBParameterGroups},
		collector.Operation{
			API:    DescribeDBParameters,
			Parent: &DescribeDBParameterGroups,
			ParentIDs: collector.IDs(func(g rdstypes.DBParameterGroup) string {
				return aws.ToString(g.DBParameterGroupName)
			}),
			Fetch: c.describeDBParameters,
		},

		collector.Operation{API: ListBuckets, Region: GlobalRegion, Fetch: c.listBuckets},
		collector.Operation{
			API:       GetBucketEncryption,
			Parent:    &ListBuckets,
			ParentIDs: collector.IDs(func(b s3types.Bucket) string { return aws.ToString(b.Name) }),
			Fetch:     c.getBucketEncryption,
		},

		collector.Operation{API: DescribeTrails, Fetch: c.describeTrails},

		collector.Operation{API: ListDetectors, Fetch: c.listDetectors},
		collector.Operation{
			API:       GetDetector,
			Parent:    &ListDetectors,
			ParentIDs: collector.IDs(func(id string) string { return id }),
			Fetch:     c.getDetector,
		},

		collector.Operation{API: DescribeConfigurationRecorderStatus, Fetch: c.describeConfigurationRecorderStatus},

		collector.Operation{API: ListClusters, Fetch: c.listClusters},
		collector.Operation{
			API:       DescribeCluster,
			Parent:    &ListClusters,
			ParentIDs: collector.IDs(func(name string) string { return name }),
			Fetch:     c.describeCluster,
		},

		collector.Operation{API: DescribeAlarms, Fetch: c.describeAlarms},

		collector.Operation{API: DescribeLoadBalancers, Fetch: c.describeLoadBalancers},
		collector.Operation{
			API:    DescribeListeners,
			Parent: &DescribeLoadBalancers,
			ParentIDs: collector.IDs(func(lb elbv2types.LoadBalancer) string {
				return aws.ToString(lb.LoadBalancerArn)
			}),
			Fetch: c.describeListeners,
		},
	)
}
