package awssecurity

import (
	"context"
	"fmt"

	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

func (c *Collector) describeSubnets(ctx context.Context, region string, _ []string) (any, error) {
	p := ec2svc.NewDescribeSubnetsPaginator(c.clientsFor(region).EC2, &ec2svc.DescribeSubnetsInput{})
	subnets, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]ec2types.Subnet, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.Subnets, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe subnets: %w", err)
	}
	return subnets, nil
}

func (c *Collector) describeRouteTables(ctx context.Context, region string, _ []string) (any, error) {
	p := ec2svc.NewDescribeRouteTablesPaginator(c.clientsFor(region).EC2, &ec2svc.DescribeRouteTablesInput{})
	tables, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]ec2types.RouteTable, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.RouteTables, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe route tables: %w", err)
	}
	return tables, nil
}

func (c *Collector) describeVpcPeeringConnections(ctx context.Context, region string, _ []string) (any, error) {
	p := ec2svc.NewDescribeVpcPeeringConnectionsPaginator(c.clientsFor(region).EC2, &ec2svc.DescribeVpcPeeringConnectionsInput{})
	conns, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]ec2types.VpcPeeringConnection, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.VpcPeeringConnections, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe VPC peering connections: %w", err)
	}
	return conns, nil
}

func (c *Collector) describeSecurityGroups(ctx context.Context, region string, _ []string) (any, error) {
	p := ec2svc.NewDescribeSecurityGroupsPaginator(c.clientsFor(region).EC2, &ec2svc.DescribeSecurityGroupsInput{})
	groups, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]ec2types.SecurityGroup, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.SecurityGroups, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe security groups: %w", err)
	}
	return groups, nil
}
