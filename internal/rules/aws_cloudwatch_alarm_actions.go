package rules

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// CloudWatchAlarmActionsRule flags metric alarms that cannot notify anyone.
type CloudWatchAlarmActionsRule struct{}

func (CloudWatchAlarmActionsRule) Describe() Descriptor {
	return Descriptor{
		ID:          "cloudwatchAlarmActionsEnabled",
		Title:       "CloudWatch Alarm Actions Enabled",
		Category:    "CloudWatch",
		Provider:    ProviderAWS,
		Description: "Ensures CloudWatch metric alarms have actions enabled and configured",
		MoreInfo:    "An alarm with disabled or missing actions changes state silently, so the condition it watches goes unnoticed.",
		Link:        "https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/AlarmThatSendsEmail.html",
		Remediation: "Enable alarm actions and attach at least one SNS topic or automation action to each alarm.",
		APIs:        []cache.API{awssecurity.DescribeAlarms},
	}
}

func (r CloudWatchAlarmActionsRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeAlarms.Service) {
		alarms, ok := list[cwtypes.MetricAlarm](rep, awssecurity.DescribeAlarms.Key(region), "CloudWatch alarms")
		if !ok {
			continue
		}
		for _, a := range alarms {
			resource := aws.ToString(a.AlarmArn)
			if resource == "" {
				resource = aws.ToString(a.AlarmName)
			}
			switch {
			case !aws.ToBool(a.ActionsEnabled):
				rep.warn(region, resource, "CloudWatch alarm actions are disabled")
			case len(a.AlarmActions) == 0:
				rep.warn(region, resource, "CloudWatch alarm has no alarm actions configured")
			default:
				rep.ok(region, resource, "CloudWatch alarm has %d alarm actions", len(a.AlarmActions))
			}
		}
	}
	return rep.findings
}
