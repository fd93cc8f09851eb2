// Package runtimetag discovers the runtime release tag by querying the installed runtime.
package runtimetag

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"go.trai.ch/pac/internal/adapters/shell"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
)

// DefaultTimeout bounds the version query.
const DefaultTimeout = 30 * time.Second

var _ ports.RuntimeDetector = (*Detector)(nil)

// Detector implements ports.RuntimeDetector by running a version query command.
type Detector struct {
	executor *shell.Executor
	logger   ports.Logger
	command  []string
	timeout  time.Duration
}

// NewDetector creates a Detector running command. An empty command uses the default query.
func NewDetector(executor *shell.Executor, logger ports.Logger, command []string) *Detector {
	if len(command) == 0 {
		command = domain.DefaultRuntimeCommand
	}
	return &Detector{
		executor: executor,
		logger:   logger,
		command:  command,
		timeout:  DefaultTimeout,
	}
}

// DetectRuntimeTag runs the query. A failing command or empty output yields an unknown tag.
func (d *Detector) DetectRuntimeTag(ctx context.Context) (domain.RuntimeTag, bool) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var out bytes.Buffer
	err := d.executor.Run(ctx, shell.Command{
		Args:   d.command,
		Stdout: &out,
		Stderr: io.Discard,
	})
	if err != nil {
		d.logger.Warn("cannot determine runtime release, cached artifacts are unavailable: " + err.Error())
		return domain.UnknownRuntime, false
	}

	tag := parseTag(out.String())
	if tag == "" {
		d.logger.Warn("runtime release query returned no output, cached artifacts are unavailable")
		return domain.UnknownRuntime, false
	}
	return domain.RuntimeTag(tag), true
}

// parseTag takes the first line of the output with quotes stripped.
func parseTag(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	line = strings.ReplaceAll(strings.TrimSpace(line), `"`, "")
	if strings.ContainsAny(line, "/ \t") {
		return ""
	}
	return line
}
