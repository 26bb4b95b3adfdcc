package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

func (c *Collector) describeLoadBalancers(ctx context.Context, region string, _ []string) (any, error) {
	p := elbv2svc.NewDescribeLoadBalancersPaginator(c.clientsFor(region).ELBv2, &elbv2svc.DescribeLoadBalancersInput{})
	lbs, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]elbv2types.LoadBalancer, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.LoadBalancers, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe load balancers: %w", err)
	}
	return lbs, nil
}

// describeListeners returns the listeners of the load balancer whose ARN is
// path[0].
func (c *Collector) describeListeners(ctx context.Context, region string, path []string) (any, error) {
	p := elbv2svc.NewDescribeListenersPaginator(c.clientsFor(region).ELBv2, &elbv2svc.DescribeListenersInput{
		LoadBalancerArn: aws.String(path[0]),
	})
	listeners, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]elbv2types.Listener, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.Listeners, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe listeners for %s: %w", path[0], err)
	}
	return listeners, nil
}
