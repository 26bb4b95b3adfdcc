// Package kubernetes collects cluster configuration through client-go. Each
// cluster is addressed by its kubeconfig context, which cache keys use as
// their region.
package kubernetes

import "github.com/pankaj-dahiya-devops/cloudscan/internal/cache"

// Service is the cache service name shared by every Kubernetes API.
const Service = "kubernetes"

var (
	// ListNamespaces holds []Namespace.
	ListNamespaces = cache.API{Service: Service, Operation: "namespaces.list"}
	// ListPods holds []Pod per namespace name.
	ListPods = cache.API{Service: Service, Operation: "pods.list"}
)
