package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// RuleInfo is the JSON shape of one rule in `cloudscan rules --format json`.
type RuleInfo struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Category    string        `json:"category"`
	Provider    string        `json:"provider"`
	Description string        `json:"description,omitempty"`
	Remediation string        `json:"remediation,omitempty"`
	Link        string        `json:"link,omitempty"`
	APIs        []string      `json:"apis"`
	Settings    []SettingInfo `json:"settings,omitempty"`
}

// SettingInfo describes one tunable of a rule.
type SettingInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default"`
	Regex       string `json:"regex,omitempty"`
}

// DescribeRules converts descriptors into their rendered form, in order.
func DescribeRules(descs []rules.Descriptor) []RuleInfo {
	out := make([]RuleInfo, 0, len(descs))
	for _, d := range descs {
		info := RuleInfo{
			ID:          d.ID,
			Title:       d.Title,
			Category:    d.Category,
			Provider:    d.Provider,
			Description: d.Description,
			Remediation: d.Remediation,
			Link:        d.Link,
			APIs:        make([]string, 0, len(d.APIs)),
		}
		for _, api := range d.APIs {
			info.APIs = append(info.APIs, api.String())
		}
		info.Settings = describeSettings(d.Settings)
		out = append(out, info)
	}
	return out
}

func describeSettings(s settings.Schema) []SettingInfo {
	var out []SettingInfo
	for _, name := range s.Names() {
		opt := s[name]
		out = append(out, SettingInfo{
			Name:        name,
			Type:        string(opt.Type),
			Description: opt.Description,
			Default:     opt.Default,
			Regex:       opt.Regex,
		})
	}
	return out
}

// RenderRuleTable writes one row per rule with its APIs and settings.
func RenderRuleTable(w io.Writer, infos []RuleInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No rules.")
		return
	}

	const (
		wID       = 32
		wProvider = 10
		wCategory = 14
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  APIS", wID, "RULE", wProvider, "PROVIDER", wCategory, "CATEGORY")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+40))

	for _, info := range infos {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n",
			wID, truncateField(info.ID, wID),
			wProvider, info.Provider,
			wCategory, truncateField(info.Category, wCategory),
			strings.Join(info.APIs, ", "),
		)
		for _, s := range info.Settings {
			fmt.Fprintf(w, "%-*s  setting %s (%s, default %v)\n", wID, "", s.Name, s.Type, s.Default)
		}
	}
}
