package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/logging"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
	dppack "github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/aws_dataprotection"
	secpack "github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/aws_security"
	googlepack "github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/google"
	k8spack "github.com/pankaj-dahiya-devops/cloudscan/internal/rulepacks/kubernetes"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/version"
)

// errPolicyFailed is returned by scan when enforcement fails. main exits 1
// without printing it; the report already explains why.
var errPolicyFailed = errors.New("policy enforcement failed")

// errUnhealthy is returned by doctor when a check failed.
var errUnhealthy = errors.New("environment is not healthy")

// defaultPolicyPath is loaded when --policy is not given and the file exists.
const defaultPolicyPath = "cloudscan.yaml"

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "cloudscan",
		Short:         "Cloud configuration compliance scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logLevel
			if level == "" {
				level = os.Getenv(logging.EnvLogLevel)
			}
			logging.SetDefaultStructuredLoggerWithLevel("cloudscan", version.Version, level)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $LOG_LEVEL or info)")

	root.AddCommand(newScanCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// newRegistry returns a registry holding every built-in rule pack.
func newRegistry() *rules.DefaultRuleRegistry {
	registry := rules.NewDefaultRuleRegistry()
	for _, pack := range [][]rules.Rule{secpack.New(), dppack.New(), googlepack.New(), k8spack.New()} {
		for _, r := range pack {
			registry.Register(r)
		}
	}
	return registry
}
