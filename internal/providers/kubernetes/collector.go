package kubernetes

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sclient "k8s.io/client-go/kubernetes"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

// pageSize bounds each List call; the API server returns a Continue token
// for the next page.
const pageSize = 500

// Collector lists cluster objects for one kubeconfig context.
// The clientset is an interface so tests can inject a fake clientset.
type Collector struct {
	client k8sclient.Interface
	info   ClusterInfo
}

// NewCollector returns a Collector for the cluster behind client.
func NewCollector(client k8sclient.Interface, info ClusterInfo) *Collector {
	return &Collector{client: client, info: info}
}

// Cluster returns the cluster this collector targets.
func (c *Collector) Cluster() ClusterInfo {
	return c.info
}

// Catalog returns every Kubernetes operation, pinned to the context name.
func (c *Collector) Catalog() *collector.Catalog {
	return collector.NewCatalog(
		collector.Operation{API: ListNamespaces, Region: c.info.ContextName, Fetch: c.listNamespaces},
		collector.Operation{
			API:       ListPods,
			Parent:    &ListNamespaces,
			ParentIDs: collector.IDs(func(ns Namespace) string { return ns.Name }),
			Fetch:     c.listPods,
		},
	)
}

func (c *Collector) listNamespaces(ctx context.Context, _ string, _ []string) (any, error) {
	items, err := collector.Tokens(ctx, func(ctx context.Context, token string) ([]corev1.Namespace, string, error) {
		list, err := c.client.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: pageSize, Continue: token})
		if err != nil {
			return nil, "", err
		}
		return list.Items, list.Continue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}

	namespaces := make([]Namespace, 0, len(items))
	for _, ns := range items {
		namespaces = append(namespaces, Namespace{
			Name:   ns.Name,
			Phase:  string(ns.Status.Phase),
			Labels: copyLabels(ns.Labels),
		})
	}
	return namespaces, nil
}

func (c *Collector) listPods(ctx context.Context, _ string, path []string) (any, error) {
	namespace := path[0]
	items, err := collector.Tokens(ctx, func(ctx context.Context, token string) ([]corev1.Pod, string, error) {
		list, err := c.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{Limit: pageSize, Continue: token})
		if err != nil {
			return nil, "", err
		}
		return list.Items, list.Continue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list pods in namespace %q: %w", namespace, err)
	}

	pods := make([]Pod, 0, len(items))
	for _, p := range items {
		pods = append(pods, podFrom(p))
	}
	return pods, nil
}

// podFrom flattens the security-relevant parts of a pod spec. Init containers
// are included since they run with the same privileges.
func podFrom(p corev1.Pod) Pod {
	pod := Pod{
		Name:               p.Name,
		Namespace:          p.Namespace,
		ServiceAccountName: p.Spec.ServiceAccountName,
		HostNetwork:        p.Spec.HostNetwork,
		HostPID:            p.Spec.HostPID,
		HostIPC:            p.Spec.HostIPC,
		Containers:         []Container{},
	}
	var podNonRoot *bool
	if p.Spec.SecurityContext != nil {
		podNonRoot = p.Spec.SecurityContext.RunAsNonRoot
	}
	add := func(c corev1.Container, init bool) {
		out := Container{Name: c.Name, Image: c.Image, Init: init, RunAsNonRoot: podNonRoot}
		if sc := c.SecurityContext; sc != nil {
			out.Privileged = sc.Privileged != nil && *sc.Privileged
			out.AllowPrivilegeEscalation = sc.AllowPrivilegeEscalation
			if sc.RunAsNonRoot != nil {
				out.RunAsNonRoot = sc.RunAsNonRoot
			}
			if sc.Capabilities != nil {
				for _, capability := range sc.Capabilities.Add {
					out.AddedCapabilities = append(out.AddedCapabilities, string(capability))
				}
			}
		}
		pod.Containers = append(pod.Containers, out)
	}
	for _, c := range p.Spec.InitContainers {
		add(c, true)
	}
	for _, c := range p.Spec.Containers {
		add(c, false)
	}
	return pod
}

func copyLabels(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
