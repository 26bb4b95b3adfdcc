package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/config"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/policy"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/google"
	kube "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/kubernetes"
)

// DoctorResult is the structured output of cloudscan doctor. It can be
// serialised to JSON via --format=json or rendered as a table (default).
type DoctorResult struct {
	AWS struct {
		Profile     string   `json:"profile,omitempty"`
		Profiles    []string `json:"profiles,omitempty"`
		Credentials bool     `json:"credentials_ok"`
		AccountID   string   `json:"account_id,omitempty"`
		RegionsOK   bool     `json:"regions_ok"`
		Error       string   `json:"error,omitempty"`
	} `json:"aws"`

	Google struct {
		Project  string `json:"project,omitempty"`
		GcloudOK bool   `json:"gcloud_ok"`
		Error    string `json:"error,omitempty"`
	} `json:"google"`

	Kubernetes struct {
		KubeconfigOK bool   `json:"kubeconfig_ok"`
		Context      string `json:"context,omitempty"`
		APIReachable bool   `json:"api_reachable"`
		Error        string `json:"error,omitempty"`
	} `json:"kubernetes"`

	Config struct {
		Path  string `json:"path"`
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	} `json:"config"`

	Policy struct {
		Path    string   `json:"path"`
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorDeps are the external systems doctor probes.
type doctorDeps struct {
	aws    common.AWSClientProvider
	kube   kube.KubeClientProvider
	gcloud google.Runner
}

type doctorOptions struct {
	format      string
	profile     string
	project     string
	kubeContext string
	configPath  string
	policyPath  string
}

func newDoctorCmd() *cobra.Command {
	var opts doctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := config.FileLoader{Path: opts.configPath}.Load()
			kubeconfig := ""
			if cfg != nil {
				kubeconfig = cfg.Kubernetes.Kubeconfig
			}
			deps := doctorDeps{
				aws:    common.NewDefaultAWSClientProvider(),
				kube:   &kube.DefaultKubeClientProvider{Path: kubeconfig},
				gcloud: google.OSRunner{},
			}
			result, err := runDoctor(cmd.Context(), deps, cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "table", `Output format: "table" or "json"`)
	cmd.Flags().StringVar(&opts.profile, "profile", "", "AWS profile to use (default: config file, then the credential chain)")
	cmd.Flags().StringVar(&opts.project, "project", "", "GCP project ID (default: config file)")
	cmd.Flags().StringVar(&opts.kubeContext, "kube-context", "", "Kubeconfig context (default: config file, then current-context)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default: ~/.config/cloudscan/config.yaml)")
	cmd.Flags().StringVar(&opts.policyPath, "policy", defaultPolicyPath, "Policy file to validate")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures; callers inspect
// result.OverallHealthy to decide the exit code.
func runDoctor(ctx context.Context, deps doctorDeps, w io.Writer, opts doctorOptions) (DoctorResult, error) {
	result := collectDoctorResult(ctx, deps, opts)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// The environment is healthy when the config and policy are valid and at
// least one provider is ready to scan.
func collectDoctorResult(ctx context.Context, deps doctorDeps, opts doctorOptions) DoctorResult {
	var result DoctorResult

	// Config first: it supplies defaults for the provider checks.
	loader := config.FileLoader{Path: opts.configPath}
	result.Config.Path = loader.ConfigPath()
	cfg, err := loader.Load()
	if err != nil {
		result.Config.Error = err.Error()
		cfg = config.Default()
	} else {
		result.Config.Valid = true
	}

	profile := firstNonEmpty(opts.profile, cfg.AWS.Profile)
	project := firstNonEmpty(opts.project, cfg.GCP.Project)
	kubeContext := firstNonEmpty(opts.kubeContext, cfg.Kubernetes.Context)

	// AWS: profiles → credentials → STS account ID → region discovery.
	result.AWS.Profile = profile
	if names, err := deps.aws.ProfileNames(); err == nil {
		result.AWS.Profiles = names
	}
	profileCfg, err := deps.aws.LoadProfile(ctx, profile)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID
		if _, err := deps.aws.GetActiveRegions(ctx, profileCfg); err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.RegionsOK = true
		}
	}

	// Google: project configured and gcloud on PATH.
	result.Google.Project = project
	if err := google.NewCollectorWithRunner(project, deps.gcloud).Check(); err != nil {
		result.Google.Error = err.Error()
	} else {
		result.Google.GcloudOK = true
	}

	// Kubernetes: kubeconfig load → context → API reachability probe.
	clientset, info, err := deps.kube.ClientsetForContext(kubeContext)
	if err != nil {
		result.Kubernetes.Error = err.Error()
	} else {
		result.Kubernetes.KubeconfigOK = true
		result.Kubernetes.Context = info.ContextName
		if _, err := clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: 1}); err != nil {
			result.Kubernetes.Error = err.Error()
		} else {
			result.Kubernetes.APIReachable = true
		}
	}

	// Policy: stat → load → validate (file is optional).
	result.Policy.Path = opts.policyPath
	if opts.policyPath != "" {
		_, statErr := os.Stat(opts.policyPath)
		switch {
		case statErr == nil:
			result.Policy.Present = true
			pol, loadErr := policy.LoadPolicy(opts.policyPath)
			if loadErr != nil {
				result.Policy.Errors = []string{loadErr.Error()}
				break
			}
			errs := policy.Validate(pol, newRegistry().All())
			if len(errs) == 0 {
				result.Policy.Valid = true
			}
			for _, e := range errs {
				result.Policy.Errors = append(result.Policy.Errors, e.Error())
			}
		case !errors.Is(statErr, fs.ErrNotExist):
			// Present but unreadable.
			result.Policy.Present = true
			result.Policy.Errors = []string{statErr.Error()}
		}
	}

	awsReady := result.AWS.Credentials && result.AWS.RegionsOK
	kubeReady := result.Kubernetes.KubeconfigOK && result.Kubernetes.APIReachable
	result.OverallHealthy = result.Config.Valid &&
		(awsReady || result.Google.GcloudOK || kubeReady) &&
		(!result.Policy.Present || result.Policy.Valid)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nConfig:")
	if result.Config.Valid {
		doctorPrint(w, "Config file", "OK", result.Config.Path)
	} else {
		doctorPrint(w, "Config file", "FAIL", result.Config.Error)
	}

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if len(result.AWS.Profiles) > 0 {
		doctorPrint(w, "Profiles", "OK", fmt.Sprintf("%d configured", len(result.AWS.Profiles)))
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		doctorPrint(w, "Regions API", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.AWS.RegionsOK {
			doctorPrint(w, "Regions API", "OK", "")
		} else {
			doctorPrint(w, "Regions API", "FAIL", result.AWS.Error)
		}
	}

	fmt.Fprintln(w, "\nGoogle:")
	if result.Google.GcloudOK {
		doctorPrint(w, "gcloud", "OK", "Project: "+result.Google.Project)
	} else {
		doctorPrint(w, "gcloud", "FAIL", result.Google.Error)
	}

	fmt.Fprintln(w, "\nKubernetes:")
	if !result.Kubernetes.KubeconfigOK {
		doctorPrint(w, "Kubeconfig", "FAIL", result.Kubernetes.Error)
		doctorPrint(w, "Current Context", "FAIL", "skipped")
		doctorPrint(w, "API Reachable", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Kubeconfig", "OK", "")
		doctorPrint(w, "Current Context", "OK", result.Kubernetes.Context)
		if result.Kubernetes.APIReachable {
			doctorPrint(w, "API Reachable", "OK", "")
		} else {
			doctorPrint(w, "API Reachable", "FAIL", result.Kubernetes.Error)
		}
	}

	fmt.Fprintln(w, "\nPolicy:")
	if !result.Policy.Present {
		doctorPrint(w, result.Policy.Path+" present", "Not found (optional)", "")
	} else {
		doctorPrint(w, result.Policy.Path+" present", "YES", "")
		if result.Policy.Valid {
			doctorPrint(w, "Policy valid", "OK", "")
		} else {
			for _, e := range result.Policy.Errors {
				doctorPrint(w, "Policy valid", "FAIL", e)
			}
		}
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
