package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ekssvc "github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

func (c *Collector) listClusters(ctx context.Context, region string, _ []string) (any, error) {
	p := ekssvc.NewListClustersPaginator(c.clientsFor(region).EKS, &ekssvc.ListClustersInput{})
	names, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]string, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.Clusters, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list EKS clusters: %w", err)
	}
	return names, nil
}

func (c *Collector) describeCluster(ctx context.Context, region string, path []string) (any, error) {
	out, err := c.clientsFor(region).EKS.DescribeCluster(ctx, &ekssvc.DescribeClusterInput{
		Name: aws.String(path[0]),
	})
	if err != nil {
		return nil, fmt.Errorf("describe EKS cluster %s: %w", path[0], err)
	}
	if out.Cluster == nil {
		return nil, fmt.Errorf("describe EKS cluster %s: empty response", path[0])
	}

	cl := out.Cluster
	data := Cluster{
		Name:    path[0],
		ARN:     aws.ToString(cl.Arn),
		Version: aws.ToString(cl.Version),
	}
	if vpc := cl.ResourcesVpcConfig; vpc != nil {
		data.EndpointPublicAccess = vpc.EndpointPublicAccess
		data.EndpointPrivateAccess = vpc.EndpointPrivateAccess
		data.PublicAccessCidrs = vpc.PublicAccessCidrs
	}
	if cl.Logging != nil {
		for _, setup := range cl.Logging.ClusterLogging {
			if !aws.ToBool(setup.Enabled) {
				continue
			}
			for _, t := range setup.Types {
				data.LogTypes = append(data.LogTypes, string(t))
			}
		}
	}
	if cl.Identity != nil && cl.Identity.Oidc != nil {
		data.OIDCIssuer = aws.ToString(cl.Identity.Oidc.Issuer)
	}
	return data, nil
}
