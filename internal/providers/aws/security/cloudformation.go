package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfnsvc "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

// listStacks returns every stack summary except deleted stacks, which
// ListStacks keeps reporting for 90 days.
func (c *Collector) listStacks(ctx context.Context, region string, _ []string) (any, error) {
	p := cfnsvc.NewListStacksPaginator(c.clientsFor(region).CloudFormation, &cfnsvc.ListStacksInput{})
	stacks, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]cftypes.StackSummary, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.StackSummaries, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list stacks: %w", err)
	}
	live := stacks[:0]
	for _, s := range stacks {
		if s.StackStatus != cftypes.StackStatusDeleteComplete {
			live = append(live, s)
		}
	}
	return live, nil
}

// describeStackEvents returns the events of the stack named path[0], newest
// first as returned by the API.
func (c *Collector) describeStackEvents(ctx context.Context, region string, path []string) (any, error) {
	p := cfnsvc.NewDescribeStackEventsPaginator(c.clientsFor(region).CloudFormation, &cfnsvc.DescribeStackEventsInput{
		StackName: aws.String(path[0]),
	})
	events, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]cftypes.StackEvent, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.StackEvents, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe stack events for %s: %w", path[0], err)
	}
	return events, nil
}
