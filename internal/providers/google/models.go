package google

// Firewall is one VPC firewall rule as printed by
// `gcloud compute firewall-rules list --format=json`.
type Firewall struct {
	Name              string         `json:"name"`
	Network           string         `json:"network,omitempty"`
	Direction         string         `json:"direction,omitempty"`
	Disabled          bool           `json:"disabled,omitempty"`
	Priority          int            `json:"priority,omitempty"`
	SourceRanges      []string       `json:"sourceRanges,omitempty"`
	TargetTags        []string       `json:"targetTags,omitempty"`
	Allowed           []FirewallRule `json:"allowed,omitempty"`
	Denied            []FirewallRule `json:"denied,omitempty"`
	SelfLink          string         `json:"selfLink,omitempty"`
	CreationTimestamp string         `json:"creationTimestamp,omitempty"`
}

// FirewallRule is one protocol entry of an allowed or denied list.
type FirewallRule struct {
	IPProtocol string   `json:"IPProtocol"`
	Ports      []string `json:"ports,omitempty"`
}

// Ingress reports whether the firewall applies to inbound traffic. gcloud
// omits direction on legacy rules, which are ingress.
func (f Firewall) Ingress() bool {
	return f.Direction == "" || f.Direction == "INGRESS"
}
