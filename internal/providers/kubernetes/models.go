package kubernetes

// ClusterInfo identifies a Kubernetes cluster and the kubeconfig context used
// to connect to it.
type ClusterInfo struct {
	// ContextName is the kubeconfig context name used to connect. Cache keys
	// for the cluster use it as their region.
	ContextName string

	// Server is the Kubernetes API server URL resolved from the kubeconfig.
	Server string
}

// Namespace is the cached form of a corev1.Namespace.
type Namespace struct {
	Name   string            `json:"name"`
	Phase  string            `json:"phase,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Container holds the security-relevant fields of one container spec.
type Container struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`

	// Init is true for entries from spec.initContainers.
	Init bool `json:"init,omitempty"`

	// Privileged is true when securityContext.privileged == true.
	Privileged bool `json:"privileged"`

	// AllowPrivilegeEscalation is nil when not configured.
	AllowPrivilegeEscalation *bool `json:"allow_privilege_escalation,omitempty"`

	// RunAsNonRoot is the effective flag (container-level overrides pod-level).
	// Nil means not configured.
	RunAsNonRoot *bool `json:"run_as_non_root,omitempty"`

	AddedCapabilities []string `json:"added_capabilities,omitempty"`
}

// Pod is the cached form of a corev1.Pod.
type Pod struct {
	Name               string      `json:"name"`
	Namespace          string      `json:"namespace"`
	ServiceAccountName string      `json:"service_account_name,omitempty"`
	HostNetwork        bool        `json:"host_network,omitempty"`
	HostPID            bool        `json:"host_pid,omitempty"`
	HostIPC            bool        `json:"host_ipc,omitempty"`
	Containers         []Container `json:"containers"`
}

// Resource returns the "namespace/name" form used in findings.
func (p Pod) Resource() string {
	return p.Namespace + "/" + p.Name
}
