// Package toolchain invokes the container build toolchain.
//
// monopack only supplies the two inputs the toolchain needs: a
// materialized build context (rendered Dockerfile plus staged files)
// and the desired tag. Building and pushing images is the Docker CLI's
// job; its output is captured and attached to failures.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

var ErrToolchain = errors.New("container toolchain failed")

// Builds and pushes container images.
type ImageBuilder interface {
	Build(ctx context.Context, contextDir, tag string) error
	Push(ctx context.Context, tag string) error
}

// Image builder backed by the docker CLI.
type DockerCLI struct {
	// Path to the docker binary. Empty uses "docker" from PATH.
	Binary string
}

// Builds the image from a materialized context directory and tags it.
func (d *DockerCLI) Build(ctx context.Context, contextDir, tag string) error {
	slog.Info("building image", "tag", tag, "context", contextDir)
	return d.run(ctx, contextDir, "build", "-t", tag, ".")
}

// Pushes the tagged image to its registry.
func (d *DockerCLI) Push(ctx context.Context, tag string) error {
	slog.Info("pushing image", "tag", tag)
	return d.run(ctx, "", "push", tag)
}

func (d *DockerCLI) run(ctx context.Context, dir string, args ...string) error {
	bin := d.Binary
	if bin == "" {
		bin = "docker"
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: docker %s: %v: %s", ErrToolchain, args[0], err, strings.TrimSpace(output.String()))
	}

	slog.Debug("docker command finished", "args", args)

	return nil
}
