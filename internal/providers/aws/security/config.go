package awssecurity

import (
	"context"
	"fmt"

	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"
)

func (c *Collector) describeConfigurationRecorderStatus(ctx context.Context, region string, _ []string) (any, error) {
	out, err := c.clientsFor(region).Config.DescribeConfigurationRecorderStatus(ctx, &configsvc.DescribeConfigurationRecorderStatusInput{})
	if err != nil {
		return nil, fmt.Errorf("describe configuration recorder status: %w", err)
	}
	statuses := make([]configtypes.ConfigurationRecorderStatus, 0, len(out.ConfigurationRecordersStatus))
	return append(statuses, out.ConfigurationRecordersStatus...), nil
}
