package rules

import (
	"math"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// failedStackStatuses are the terminal failure states a stack can be left in.
var failedStackStatuses = map[string]bool{
	"CREATE_FAILED":          true,
	"DELETE_FAILED":          true,
	"ROLLBACK_FAILED":        true,
	"UPDATE_ROLLBACK_FAILED": true,
}

// CloudFormationStackFailedStatusRule flags stacks left in a failed state.
// Every failed stack fails; the message says whether it has been failed for
// longer than failed_hours_limit, measured from its most recent event.
type CloudFormationStackFailedStatusRule struct{}

func (CloudFormationStackFailedStatusRule) Describe() Descriptor {
	return Descriptor{
		ID:          "cloudformationStackFailedStatus",
		Title:       "CloudFormation Stack Failed Status",
		Category:    "CloudFormation",
		Provider:    ProviderAWS,
		Description: "Ensures that AWS CloudFormation stacks are not in Failed mode for more than the maximum failure limit hours.",
		MoreInfo:    "AWS CloudFormation stacks should not be in failed mode to avoid application downtime.",
		Link:        "https://docs.aws.amazon.com/AWSCloudFormation/latest/UserGuide/cfn-console-view-stack-data-resources.html",
		Remediation: "Remove or redeploy the CloudFormation failed stack.",
		APIs:        []cache.API{awssecurity.ListStacks, awssecurity.DescribeStackEvents},
		Settings: settings.Schema{
			"failed_hours_limit": {
				Description: "Maximum number of hours a CloudFormation stack can stay in a failed state",
				Type:        settings.Int,
				Regex:       `^[0-9]{1,4}$`,
				Default:     0,
			},
		},
	}
}

func (r CloudFormationStackFailedStatusRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)
	limit := float64(ctx.Settings.Int("failed_hours_limit"))

	for _, region := range ctx.Regions.For(awssecurity.ListStacks.Service) {
		key := awssecurity.ListStacks.Key(region)
		stacks, ok := list[cftypes.StackSummary](rep, key, "CloudFormation stacks")
		if !ok {
			continue
		}
		for _, stack := range stacks {
			id, name := aws.ToString(stack.StackId), aws.ToString(stack.StackName)
			if id == "" || name == "" {
				continue
			}
			if !failedStackStatuses[strings.ToUpper(string(stack.StackStatus))] {
				rep.ok(region, id, "CloudFormation stack %q is not in failed state", name)
				continue
			}

			events, ok := detail[[]cftypes.StackEvent](rep, key.Child(awssecurity.DescribeStackEvents, name), "CloudFormation stack events", id)
			if !ok {
				continue
			}
			if len(events) == 0 || events[0].Timestamp == nil {
				rep.unknown(region, id, "Unable to query for CloudFormation stack events: no events returned")
				continue
			}

			// TODO: report WARN for stacks still inside the limit once policy
			// files stop relying on both branches being FAIL.
			hours := math.Abs(ctx.Now.Sub(*events[0].Timestamp).Hours())
			if hours > limit {
				rep.fail(region, id, "CloudFormation stack %q is in failed state for more than the failed hours limit", name)
			} else {
				rep.fail(region, id, "CloudFormation stack %q is in failed state for less than the failed hours limit", name)
			}
		}
	}
	return rep.findings
}
