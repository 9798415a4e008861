// Package docker drives the container engine through the docker CLI, exactly
// the way the demo scripts do by hand.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// CLIRuntime implements ContainerRuntime by shelling out to docker.
type CLIRuntime struct {
	bin    string
	logger ports.Logger
}

// NewCLIRuntime builds a runtime using the docker binary on PATH.
func NewCLIRuntime(log ports.Logger) *CLIRuntime {
	return &CLIRuntime{bin: "docker", logger: log}
}

// Available reports whether the docker daemon answers.
func (r *CLIRuntime) Available(ctx context.Context) bool {
	_, _, err := r.run(ctx, "version")
	return err == nil
}

// Build builds the target image from contextDir.
func (r *CLIRuntime) Build(ctx context.Context, image, contextDir string) error {
	stdout, stderr, err := r.run(ctx, "build", "-t", image, contextDir)
	if err != nil {
		return fmt.Errorf("docker build %s: %w\n%s%s", image, err, stdout, stderr)
	}
	return nil
}

// Exists reports whether a container with the given name exists (running or
// stopped).
func (r *CLIRuntime) Exists(ctx context.Context, name string) (bool, error) {
	stdout, _, err := r.run(ctx, "ps", "-a", "--format", "{{.Names}}")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// Run starts a container from the given spec.
func (r *CLIRuntime) Run(ctx context.Context, spec domain.ContainerSpec) error {
	args := []string{"run"}
	if spec.Detach {
		args = append(args, "-d")
	}
	if spec.AutoRemove {
		args = append(args, "--rm")
	}
	args = append(args, "--name", spec.Name)
	if spec.HostPort > 0 {
		containerPort := spec.ContainerPort
		if containerPort == 0 {
			containerPort = domain.DefaultTargetPort
		}
		args = append(args, "-p", fmt.Sprintf("%d:%d", spec.HostPort, containerPort))
	}
	for key, value := range spec.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", key, value))
	}
	args = append(args, spec.Image)

	stdout, stderr, err := r.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("docker run %s: %w\n%s%s", spec.Name, err, stdout, stderr)
	}
	if r.logger != nil {
		r.logger.Info("container started", map[string]interface{}{"name": spec.Name, "image": spec.Image})
	}
	return nil
}

// Remove force-removes a container; missing containers are not an error.
func (r *CLIRuntime) Remove(ctx context.Context, name string) error {
	_, _, err := r.run(ctx, "rm", "-f", name)
	if err != nil {
		if exists, existsErr := r.Exists(ctx, name); existsErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("docker rm %s: %w", name, err)
	}
	return nil
}

// Exec runs a shell command inside the container and returns combined output.
func (r *CLIRuntime) Exec(ctx context.Context, name string, command string) (string, error) {
	stdout, stderr, err := r.run(ctx, "exec", name, "sh", "-lc", command)
	if err != nil {
		return stdout + stderr, fmt.Errorf("docker exec %s: %w", name, err)
	}
	return stdout, nil
}

func (r *CLIRuntime) run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if r.logger != nil {
		r.logger.Debug("docker "+strings.Join(args, " "), map[string]interface{}{"err": err})
	}
	return stdout.String(), stderr.String(), err
}

var _ ports.ContainerRuntime = (*CLIRuntime)(nil)
