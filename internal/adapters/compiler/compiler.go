// Package compiler invokes the external build tool for a package.
package compiler

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/pac/internal/adapters/archive"
	"go.trai.ch/pac/internal/adapters/shell"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

// Environment passed to prebuild steps and the build command.
const (
	EnvBuildVars = "PAC_BUILD_VARS"
	EnvDepsDir   = "PAC_DEPS_DIR"
	EnvPackage   = "PAC_PACKAGE"
	EnvVersion   = "PAC_VERSION"
)

// outputTail is the number of output bytes attached to a failed build.
const outputTail = 4096

var _ ports.Compiler = (*Compiler)(nil)

// Compiler implements ports.Compiler by running a configured command.
type Compiler struct {
	executor *shell.Executor
	command  []string
}

// New creates a Compiler running command in the package directory.
func New(executor *shell.Executor, command []string) *Compiler {
	return &Compiler{executor: executor, command: command}
}

// Compile runs the prebuild steps, then the build command. Output goes to the vertex in ctx.
func (c *Compiler) Compile(ctx context.Context, pkg *domain.Package) error {
	env := []string{
		EnvBuildVars + "=" + strings.Join(pkg.BuildVars(), " "),
		EnvDepsDir + "=" + filepath.Join(pkg.Path, archive.DepsDir),
		EnvPackage + "=" + pkg.Name,
		EnvVersion + "=" + pkg.Version,
	}

	var steps [][]string
	if pkg.Config != nil {
		for _, step := range pkg.Config.Prebuild {
			steps = append(steps, step.Command)
		}
	}
	steps = append(steps, c.command)

	for _, args := range steps {
		cmd := shell.Command{Args: args, Dir: pkg.Path, Env: env}
		tail := &tailBuffer{max: outputTail}
		if v, ok := ports.VertexFromContext(ctx); ok {
			cmd.Stdout = io.MultiWriter(v.Stdout(), tail)
			cmd.Stderr = io.MultiWriter(v.Stderr(), tail)
		}
		if err := c.executor.Run(ctx, cmd); err != nil {
			if out := tail.String(); out != "" {
				err = zerr.With(err, "output", out)
			}
			return zerr.With(err, "package", pkg.Ref())
		}
	}
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
