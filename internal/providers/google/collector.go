package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

// ErrNoProject is returned when no project is configured.
var ErrNoProject = errors.New("no gcloud project configured")

// Collector runs gcloud for one project.
type Collector struct {
	project string
	runner  Runner
}

// NewCollector returns a Collector for project backed by the local gcloud
// binary.
func NewCollector(project string) *Collector {
	return NewCollectorWithRunner(project, OSRunner{})
}

// NewCollectorWithRunner returns a Collector that executes commands through r.
func NewCollectorWithRunner(project string, r Runner) *Collector {
	return &Collector{project: project, runner: r}
}

// Project returns the configured project ID.
func (c *Collector) Project() string {
	return c.project
}

// Check verifies that gcloud is installed and a project is configured.
func (c *Collector) Check() error {
	if c.project == "" {
		return ErrNoProject
	}
	if _, err := c.runner.LookPath("gcloud"); err != nil {
		return fmt.Errorf("gcloud not found in PATH: %w", err)
	}
	return nil
}

// Catalog returns every Google operation this collector can run.
func (c *Collector) Catalog() *collector.Catalog {
	return collector.NewCatalog(
		collector.Operation{API: ListFirewalls, Region: GlobalRegion, Fetch: c.listFirewalls},
	)
}

func (c *Collector) listFirewalls(ctx context.Context, _ string, _ []string) (any, error) {
	var firewalls []Firewall
	if err := c.gcloudJSON(ctx, &firewalls, "compute", "firewall-rules", "list", "--project", c.project); err != nil {
		return nil, fmt.Errorf("list firewall rules: %w", err)
	}
	if firewalls == nil {
		firewalls = []Firewall{}
	}
	return firewalls, nil
}

// gcloudJSON runs gcloud with --format=json and decodes stdout into v.
func (c *Collector) gcloudJSON(ctx context.Context, v any, args ...string) error {
	full := append(args, "--format=json")
	out, err := c.runner.Run(ctx, "gcloud", full...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("invalid gcloud json output: %w", err)
	}
	return nil
}
