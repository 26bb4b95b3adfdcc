// Package kubernetes provides the Kubernetes workload rule pack.
package kubernetes

import "github.com/pankaj-dahiya-devops/cloudscan/internal/rules"

// New returns the Kubernetes rules in evaluation order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.PrivilegedContainersRule{},
	}
}
