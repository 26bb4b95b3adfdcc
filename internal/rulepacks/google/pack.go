// Package google provides the Google Cloud rule pack.
package google

import "github.com/pankaj-dahiya-devops/cloudscan/internal/rules"

// New returns the Google Cloud rules in evaluation order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.OpenAllPortsRule{},
	}
}
