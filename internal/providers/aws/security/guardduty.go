package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	guardduty "github.com/aws/aws-sdk-go-v2/service/guardduty"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

func (c *Collector) listDetectors(ctx context.Context, region string, _ []string) (any, error) {
	p := guardduty.NewListDetectorsPaginator(c.clientsFor(region).GuardDuty, &guardduty.ListDetectorsInput{})
	ids, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]string, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.DetectorIds, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list GuardDuty detectors: %w", err)
	}
	return ids, nil
}

func (c *Collector) getDetector(ctx context.Context, region string, path []string) (any, error) {
	out, err := c.clientsFor(region).GuardDuty.GetDetector(ctx, &guardduty.GetDetectorInput{
		DetectorId: aws.String(path[0]),
	})
	if err != nil {
		return nil, fmt.Errorf("get GuardDuty detector %s: %w", path[0], err)
	}
	return Detector{
		ID:                         path[0],
		Status:                     string(out.Status),
		FindingPublishingFrequency: string(out.FindingPublishingFrequency),
		UpdatedAt:                  aws.ToString(out.UpdatedAt),
	}, nil
}
