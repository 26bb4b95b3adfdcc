package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/output"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
)

func newRulesCmd() *cobra.Command {
	var (
		format   string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules, the APIs they read and their settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := newRegistry()
			all := registry.All()
			if provider != "" {
				all = registry.Provider(provider)
			}

			descs := make([]rules.Descriptor, 0, len(all))
			for _, r := range all {
				descs = append(descs, r.Describe())
			}
			infos := output.DescribeRules(descs)

			switch format {
			case "json":
				return output.RenderJSON(cmd.OutOrStdout(), infos)
			case "table":
				output.RenderRuleTable(cmd.OutOrStdout(), infos)
				return nil
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", `Output format: "table" or "json"`)
	cmd.Flags().StringVar(&provider, "provider", "", "Only list rules for this provider")
	return cmd
}
