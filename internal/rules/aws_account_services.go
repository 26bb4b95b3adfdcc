package rules

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// CloudTrailEnabledRule flags regions not covered by a multi-region trail.
type CloudTrailEnabledRule struct{}

func (CloudTrailEnabledRule) Describe() Descriptor {
	return Descriptor{
		ID:          "cloudtrailEnabled",
		Title:       "CloudTrail Enabled",
		Category:    "CloudTrail",
		Provider:    ProviderAWS,
		Description: "Ensures CloudTrail is enabled for all regions within an account",
		MoreInfo:    "CloudTrail should be enabled for all regions in order to detect suspicious activity in regions that are not typically used.",
		Link:        "http://docs.aws.amazon.com/awscloudtrail/latest/userguide/cloudtrail-getting-started.html",
		Remediation: "Enable CloudTrail for all regions and ensure that at least one region monitors global service events",
		APIs:        []cache.API{awssecurity.DescribeTrails},
	}
}

func (r CloudTrailEnabledRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeTrails.Service) {
		trails, ok := read[cloudtrailtypes.Trail](rep, awssecurity.DescribeTrails.Key(region), "CloudTrail trails")
		if !ok {
			continue
		}
		var covering string
		for _, t := range trails {
			if aws.ToBool(t.IsMultiRegionTrail) {
				covering = aws.ToString(t.TrailARN)
				break
			}
		}
		switch {
		case covering != "":
			rep.ok(region, covering, "CloudTrail is enabled with a multi-region trail")
		case len(trails) > 0:
			rep.fail(region, "", "CloudTrail is enabled but no trail covers all regions")
		default:
			rep.fail(region, "", "CloudTrail is not enabled")
		}
	}
	return rep.findings
}

// GuardDutyEnabledRule flags regions without an enabled GuardDuty detector.
type GuardDutyEnabledRule struct{}

func (GuardDutyEnabledRule) Describe() Descriptor {
	return Descriptor{
		ID:          "guarddutyEnabled",
		Title:       "GuardDuty is Enabled",
		Category:    "GuardDuty",
		Provider:    ProviderAWS,
		Description: "Ensures GuardDuty is enabled",
		MoreInfo:    "GuardDuty provides threat intelligence by analyzing several AWS data sources for security risks and should be enabled in all accounts.",
		Link:        "https://docs.aws.amazon.com/guardduty/latest/ug/guardduty_settingup.html",
		Remediation: "Enable GuardDuty for all AWS accounts.",
		APIs:        []cache.API{awssecurity.ListDetectors, awssecurity.GetDetector},
	}
}

func (r GuardDutyEnabledRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.ListDetectors.Service) {
		key := awssecurity.ListDetectors.Key(region)
		ids, ok := read[string](rep, key, "GuardDuty detectors")
		if !ok {
			continue
		}
		if len(ids) == 0 {
			rep.fail(region, "", "GuardDuty is not enabled")
			continue
		}
		var enabled, evaluated bool
		for _, id := range ids {
			d, ok := detail[awssecurity.Detector](rep, key.Child(awssecurity.GetDetector, id), "GuardDuty detector", id)
			if !ok {
				continue
			}
			evaluated = true
			if strings.EqualFold(d.Status, "ENABLED") {
				enabled = true
				rep.ok(region, id, "GuardDuty is enabled")
			}
		}
		if evaluated && !enabled {
			rep.fail(region, "", "GuardDuty detector is not enabled")
		}
	}
	return rep.findings
}

// ConfigServiceEnabledRule flags regions where no AWS Config recorder is
// recording.
type ConfigServiceEnabledRule struct{}

func (ConfigServiceEnabledRule) Describe() Descriptor {
	return Descriptor{
		ID:          "configServiceEnabled",
		Title:       "Config Service Enabled",
		Category:    "ConfigService",
		Provider:    ProviderAWS,
		Description: "Ensures the AWS Config Service is enabled to detect changes to account resources",
		MoreInfo:    "The AWS Config Service tracks changes to a number of resources in an AWS account and is invaluable in determining how account changes affect other resources and in recovery in the event of an account intrusion or accidental configuration change.",
		Link:        "https://aws.amazon.com/config/details/",
		Remediation: "Enable the AWS Config Service for all regions and resources in an account. Ensure that it is properly recording and delivering logs.",
		APIs:        []cache.API{awssecurity.DescribeConfigurationRecorderStatus},
	}
}

func (r ConfigServiceEnabledRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeConfigurationRecorderStatus.Service) {
		statuses, ok := read[configtypes.ConfigurationRecorderStatus](rep, awssecurity.DescribeConfigurationRecorderStatus.Key(region), "Config Service status")
		if !ok {
			continue
		}
		if len(statuses) == 0 {
			rep.fail(region, "", "Config Service is not enabled")
			continue
		}
		var recording string
		for _, s := range statuses {
			if s.Recording {
				recording = aws.ToString(s.Name)
				break
			}
		}
		if recording != "" {
			rep.ok(region, "", "Config Service is enabled and recording with %s", recording)
		} else {
			rep.fail(region, "", "Config Service is enabled but not recording")
		}
	}
	return rep.findings
}
