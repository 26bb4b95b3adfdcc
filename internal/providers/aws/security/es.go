package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	essvc "github.com/aws/aws-sdk-go-v2/service/elasticsearchservice"
	estypes "github.com/aws/aws-sdk-go-v2/service/elasticsearchservice/types"
)

func (c *Collector) listDomainNames(ctx context.Context, region string, _ []string) (any, error) {
	out, err := c.clientsFor(region).ES.ListDomainNames(ctx, &essvc.ListDomainNamesInput{})
	if err != nil {
		return nil, fmt.Errorf("list ES domains: %w", err)
	}
	domains := make([]estypes.DomainInfo, 0, len(out.DomainNames))
	return append(domains, out.DomainNames...), nil
}

func (c *Collector) describeElasticsearchDomain(ctx context.Context, region string, path []string) (any, error) {
	out, err := c.clientsFor(region).ES.DescribeElasticsearchDomain(ctx, &essvc.DescribeElasticsearchDomainInput{
		DomainName: aws.String(path[0]),
	})
	if err != nil {
		return nil, fmt.Errorf("describe ES domain %s: %w", path[0], err)
	}
	if out.DomainStatus == nil {
		return nil, fmt.Errorf("describe ES domain %s: empty domain status", path[0])
	}
	return out.DomainStatus, nil
}
