package rules

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

// RDSEncryptionEnabledRule flags RDS instances without storage encryption.
type RDSEncryptionEnabledRule struct{}

func (RDSEncryptionEnabledRule) Describe() Descriptor {
	return Descriptor{
		ID:          "rdsEncryptionEnabled",
		Title:       "RDS Encryption Enabled",
		Category:    "RDS",
		Provider:    ProviderAWS,
		Description: "Ensures at-rest encryption is setup for RDS instances",
		MoreInfo:    "AWS provides at-read encryption for RDS instances which should be enabled to ensure the integrity of data stored within the databases.",
		Link:        "http://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/Overview.Encryption.html",
		Remediation: "RDS does not currently allow modifications to encryption after the instance has been launched, so a new instance will need to be created with encryption enabled.",
		APIs:        []cache.API{awssecurity.DescribeDBInstances},
	}
}

func (r RDSEncryptionEnabledRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeDBInstances.Service) {
		instances, ok := list[rdstypes.DBInstance](rep, awssecurity.DescribeDBInstances.Key(region), "RDS instances")
		if !ok {
			continue
		}
		for _, db := range instances {
			arn := aws.ToString(db.DBInstanceArn)
			if aws.ToBool(db.StorageEncrypted) {
				rep.ok(region, arn, "Encryption at rest is enabled")
			} else {
				rep.fail(region, arn, "Encryption at rest is not enabled")
			}
		}
	}
	return rep.findings
}

// RDSTransportEncryptionRule flags PostgreSQL and SQL Server parameter groups
// that do not force SSL connections. Groups of other engine families are not
// evaluated.
type RDSTransportEncryptionRule struct{}

func (RDSTransportEncryptionRule) Describe() Descriptor {
	return Descriptor{
		ID:          "rdsTransportEncryption",
		Title:       "RDS Transport Encryption Enabled",
		Category:    "RDS",
		Provider:    ProviderAWS,
		Description: "Ensures RDS SQL Server and PostgreSQL instances have Transport Encryption enabled.",
		MoreInfo:    "Parameter group associated with the RDS instance should have transport encryption enabled to handle encryption and decryption",
		Link:        "https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/SQLServer.Concepts.General.SSL.Using.html",
		Remediation: "Update associated parameter group to have rds.force_ssl set to true",
		APIs:        []cache.API{awssecurity.DescribeDBParameterGroups, awssecurity.DescribeDBParameters},
	}
}

func (r RDSTransportEncryptionRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)

	for _, region := range ctx.Regions.For(awssecurity.DescribeDBParameterGroups.Service) {
		key := awssecurity.DescribeDBParameterGroups.Key(region)
		groups, ok := list[rdstypes.DBParameterGroup](rep, key, "RDS parameter groups")
		if !ok {
			continue
		}
		for _, g := range groups {
			if !forcesSSLFamily(aws.ToString(g.DBParameterGroupFamily)) {
				continue
			}
			name := aws.ToString(g.DBParameterGroupName)
			arn := aws.ToString(g.DBParameterGroupArn)
			if arn == "" {
				arn = name
			}
			params, ok := detail[[]rdstypes.Parameter](rep, key.Child(awssecurity.DescribeDBParameters, name), "parameter group parameters", arn)
			if !ok {
				continue
			}
			if forceSSL(params) {
				rep.ok(region, arn, "Parameter group %s has transport encryption enabled", name)
			} else {
				rep.fail(region, arn, "Parameter group %s does not have transport encryption enabled", name)
			}
		}
	}
	return rep.findings
}

// forcesSSLFamily reports whether the family supports the rds.force_ssl parameter.
func forcesSSLFamily(family string) bool {
	family = strings.ToLower(family)
	return strings.HasPrefix(family, "postgres") || strings.HasPrefix(family, "sqlserver")
}

func forceSSL(params []rdstypes.Parameter) bool {
	for _, p := range params {
		if aws.ToString(p.ParameterName) == "rds.force_ssl" {
			v := strings.ToLower(aws.ToString(p.ParameterValue))
			return v == "1" || v == "true"
		}
	}
	return false
}
