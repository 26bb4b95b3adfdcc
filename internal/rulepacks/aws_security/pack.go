// Package aws_security provides the AWS security configuration rule pack.
// It groups account, network, cluster and monitoring checks into a single
// New() function that the engine registers into a DefaultRuleRegistry.
//
// Convention: every rule pack lives in internal/rulepacks/<domain>/pack.go
// and exposes a single New() func returning []rules.Rule.
package aws_security

import "github.com/pankaj-dahiya-devops/cloudscan/internal/rules"

// New returns the AWS security rules in evaluation order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.RootMFAEnabledRule{},                  // iam: root account MFA
		rules.PasswordRequiresSymbolsRule{},         // iam: password policy symbols
		rules.CloudTrailEnabledRule{},               // cloudtrail: multi-region trail
		rules.GuardDutyEnabledRule{},                // guardduty: enabled detector
		rules.ConfigServiceEnabledRule{},            // configservice: recording
		rules.OpenSSHRule{},                         // ec2: SSH/RDP open to the internet
		rules.CrossVPCPublicPrivateRule{},           // ec2: peering routed from public subnets
		rules.ESPublicEndpointRule{},                // es: public domain endpoint
		rules.ELBHTTPSOnlyRule{},                    // elbv2: plain HTTP listeners
		rules.EKSPrivateEndpointRule{},              // eks: public API endpoint
		rules.EKSLoggingEnabledRule{},               // eks: control plane logs
		rules.CloudWatchAlarmActionsRule{},          // cloudwatch: silent alarms
		rules.CloudFormationStackFailedStatusRule{}, // cloudformation: failed stacks
	}
}
