package awssecurity

import (
	"context"
	"fmt"

	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

// describeAlarms returns metric alarms only; composite alarms are not cached.
func (c *Collector) describeAlarms(ctx context.Context, region string, _ []string) (any, error) {
	p := cloudwatchsvc.NewDescribeAlarmsPaginator(c.clientsFor(region).CloudWatch, &cloudwatchsvc.DescribeAlarmsInput{
		AlarmTypes: []cwtypes.AlarmType{cwtypes.AlarmTypeMetricAlarm},
	})
	alarms, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]cwtypes.MetricAlarm, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.MetricAlarms, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe CloudWatch alarms: %w", err)
	}
	return alarms, nil
}
