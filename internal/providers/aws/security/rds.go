package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

func (c *Collector) describeDBInstances(ctx context.Context, region string, _ []string) (any, error) {
	p := rdssvc.NewDescribeDBInstancesPaginator(c.clientsFor(region).RDS, &rdssvc.DescribeDBInstancesInput{})
	instances, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]rdstypes.DBInstance, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.DBInstances, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe DB instances: %w", err)
	}
	return instances, nil
}

func (c *Collector) describeDBParameterGroups(ctx context.Context, region string, _ []string) (any, error) {
	p := rdssvc.NewDescribeDBParameterGroupsPaginator(c.clientsFor(region).RDS, &rdssvc.DescribeDBParameterGroupsInput{})
	groups, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]rdstypes.DBParameterGroup, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.DBParameterGroups, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe DB parameter groups: %w", err)
	}
	return groups, nil
}

// describeDBParameters returns every parameter of the group named path[0].
// A page error discards the parameters gathered so far.
func (c *Collector) describeDBParameters(ctx context.Context, region string, path []string) (any, error) {
	p := rdssvc.NewDescribeDBParametersPaginator(c.clientsFor(region).RDS, &rdssvc.DescribeDBParametersInput{
		DBParameterGroupName: aws.String(path[0]),
	})
	params, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]rdstypes.Parameter, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.Parameters, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe DB parameters for %s: %w", path[0], err)
	}
	return params, nil
}
