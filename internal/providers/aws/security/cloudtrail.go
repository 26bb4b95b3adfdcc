package awssecurity

import (
	"context"
	"fmt"

	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudtrailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
)

// describeTrails returns every trail visible from region, including
// multi-region trails created elsewhere (shadow trails).
func (c *Collector) describeTrails(ctx context.Context, region string, _ []string) (any, error) {
	out, err := c.clientsFor(region).CloudTrail.DescribeTrails(ctx, &cloudtrailsvc.DescribeTrailsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe trails: %w", err)
	}
	trails := make([]cloudtrailtypes.Trail, 0, len(out.TrailList))
	return append(trails, out.TrailList...), nil
}
