package rules

import (
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/kubernetes"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

const defaultAllowedNamespaces = "^kube-system$"

// PrivilegedContainersRule flags pods running a privileged container outside
// the namespaces matched by allowed_namespaces.
type PrivilegedContainersRule struct{}

func (PrivilegedContainersRule) Describe() Descriptor {
	return Descriptor{
		ID:          "privilegedContainers",
		Title:       "Privileged Containers",
		Category:    "Kubernetes",
		Provider:    ProviderKubernetes,
		Description: "Ensures pods do not run privileged containers",
		MoreInfo:    "A privileged container has every capability of the host and can escape to the node. Only trusted system workloads should run privileged.",
		Link:        "https://kubernetes.io/docs/concepts/security/pod-security-standards/",
		Remediation: "Remove securityContext.privileged from the container or move the workload to an allowed system namespace.",
		APIs:        []cache.API{kubernetes.ListNamespaces, kubernetes.ListPods},
		Settings: settings.Schema{
			"allowed_namespaces": {
				Description: "Regular expression of namespaces allowed to run privileged containers",
				Type:        settings.String,
				Pattern:     true,
				Default:     defaultAllowedNamespaces,
			},
		},
	}
}

func (r PrivilegedContainersRule) Evaluate(ctx Context) []models.Finding {
	rep := newReport(r.Describe(), ctx)
	// Resolve only admits patterns that compile.
	allowed := regexp.MustCompile(ctx.Settings.String("allowed_namespaces"))

	for _, cluster := range ctx.Regions.For(kubernetes.Service) {
		key := kubernetes.ListNamespaces.Key(cluster)
		namespaces, ok := list[kubernetes.Namespace](rep, key, "namespaces")
		if !ok {
			continue
		}
		var evaluated int
		var incomplete bool
		for _, ns := range namespaces {
			if allowed.MatchString(ns.Name) {
				continue
			}
			pods, ok := detail[[]kubernetes.Pod](rep, key.Child(kubernetes.ListPods, ns.Name), "pods", ns.Name)
			if !ok {
				incomplete = true
				continue
			}
			for _, pod := range pods {
				evaluated++
				var privileged []string
				for _, c := range pod.Containers {
					if c.Privileged {
						privileged = append(privileged, c.Name)
					}
				}
				if len(privileged) > 0 {
					rep.fail(cluster, pod.Resource(), "Pod %s runs privileged containers: %s", pod.Resource(), strings.Join(privileged, ", "))
				} else {
					rep.ok(cluster, pod.Resource(), "Pod %s does not run privileged containers", pod.Resource())
				}
			}
		}
		if evaluated == 0 && !incomplete {
			rep.ok(cluster, "", "No pods found outside allowed namespaces")
		}
	}
	return rep.findings
}
