package awssecurity

import iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

// Detector is the cached form of a GuardDuty GetDetector response.
type Detector struct {
	ID                         string `json:"id"`
	Status                     string `json:"status"`
	FindingPublishingFrequency string `json:"finding_publishing_frequency,omitempty"`
	UpdatedAt                  string `json:"updated_at,omitempty"`
}

// NotebookInstance is the cached form of a SageMaker DescribeNotebookInstance
// response.
type NotebookInstance struct {
	Name                 string `json:"name"`
	ARN                  string `json:"arn"`
	Status               string `json:"status,omitempty"`
	KmsKeyID             string `json:"kms_key_id,omitempty"`
	DirectInternetAccess string `json:"direct_internet_access,omitempty"`
	RootAccess           string `json:"root_access,omitempty"`
}

// Cluster is the cached form of an EKS DescribeCluster response.
type Cluster struct {
	Name                  string   `json:"name"`
	ARN                   string   `json:"arn"`
	Version               string   `json:"version,omitempty"`
	EndpointPublicAccess  bool     `json:"endpoint_public_access"`
	EndpointPrivateAccess bool     `json:"endpoint_private_access"`
	PublicAccessCidrs     []string `json:"public_access_cidrs,omitempty"`
	// LogTypes lists the control plane log types with logging enabled.
	LogTypes   []string `json:"log_types,omitempty"`
	OIDCIssuer string   `json:"oidc_issuer,omitempty"`
}

// PasswordPolicy is the cached form of a GetAccountPasswordPolicy response.
type PasswordPolicy struct {
	// Missing is set when the account has no password policy.
	Missing bool                     `json:"missing"`
	Policy  *iamtypes.PasswordPolicy `json:"policy,omitempty"`
}
