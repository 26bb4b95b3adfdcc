package google

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath(file string) (string, error)
}

// OSRunner runs commands on the local host.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%s %v failed: %w: %s", name, args, err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, fmt.Errorf("%s %v failed: %w", name, args, err)
	}
	return stdout.Bytes(), nil
}

func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
