// Package shell runs external commands: the compiler, prebuild steps, the runtime
// version query and source checkouts.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

// Command describes one process invocation.
type Command struct {
	Args []string
	Dir  string
	// Env holds KEY=VALUE overrides applied on top of the process environment.
	Env []string
	// Stdout and Stderr receive the output. When unset, output goes to the vertex carried
	// by the context, or line by line to the logger.
	Stdout io.Writer
	Stderr io.Writer
}

// Executor runs commands using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Run executes cmd and waits for it to finish. An empty command is a no-op.
func (e *Executor) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Args) == 0 {
		return nil
	}

	name := cmd.Args[0]
	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := name
	if !filepath.IsAbs(name) && !strings.Contains(name, string(filepath.Separator)) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // configured command
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env

	stdout, stderr := cmd.Stdout, cmd.Stderr
	var flush []*logWriter
	if stdout == nil || stderr == nil {
		if v, ok := ports.VertexFromContext(ctx); ok {
			stdout = cmp(stdout, v.Stdout())
			stderr = cmp(stderr, v.Stderr())
		} else {
			if stdout == nil {
				w := &logWriter{log: e.logger.Info}
				flush = append(flush, w)
				stdout = w
			}
			if stderr == nil {
				w := &logWriter{log: e.logger.Warn}
				flush = append(flush, w)
				stderr = w
			}
		}
	}
	c.Stdout = stdout
	c.Stderr = stderr

	err := c.Run()
	for _, w := range flush {
		w.Flush()
	}
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err = zerr.With(zerr.Wrap(err, "command failed"), "command", strings.Join(cmd.Args, " "))
		return zerr.With(err, "exit_code", exitCode)
	}
	return nil
}

func cmp(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

// logWriter forwards complete lines to a log function.
type logWriter struct {
	log func(string)
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Keep the incomplete line for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.log(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}

// Flush logs a trailing line without newline.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.log(w.buf.String())
		w.buf.Reset()
	}
}

// resolveEnvironment applies overrides on top of the system environment.
func resolveEnvironment(sysEnv, overrides []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, list := range [][]string{sysEnv, overrides} {
		for _, entry := range list {
			if k, v, ok := strings.Cut(entry, "="); ok {
				envMap[k] = v
			}
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
