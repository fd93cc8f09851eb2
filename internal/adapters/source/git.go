// Package source checks out package sources from version control.
package source

import (
	"context"
	"regexp"

	"go.trai.ch/pac/internal/adapters/shell"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

var revisionPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

var _ ports.SourceFetcher = (*Git)(nil)

// Git implements ports.SourceFetcher with the git command line.
type Git struct {
	executor *shell.Executor
	binary   string
}

// NewGit creates a Git fetcher running the git binary found in PATH.
func NewGit(executor *shell.Executor) *Git {
	return &Git{executor: executor, binary: "git"}
}

// Checkout clones dep.URL into dir at dep.Version. Tags and branches are cloned shallow;
// revisions are checked out after a full clone.
func (g *Git) Checkout(ctx context.Context, dep domain.Dependency, dir string) error {
	if dep.URL == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "dependency has no source url"), "dependency", dep.Ref())
	}

	if revisionPattern.MatchString(dep.Version) {
		if err := g.git(ctx, "", "clone", "--quiet", dep.URL, dir); err != nil {
			return g.checkoutErr(err, dep)
		}
		if err := g.git(ctx, dir, "checkout", "--quiet", dep.Version); err != nil {
			return g.checkoutErr(err, dep)
		}
		return nil
	}

	if err := g.git(ctx, "", "clone", "--quiet", "--depth", "1", "--branch", dep.Version, dep.URL, dir); err != nil {
		return g.checkoutErr(err, dep)
	}
	return nil
}

func (g *Git) git(ctx context.Context, dir string, args ...string) error {
	return g.executor.Run(ctx, shell.Command{
		Args: append([]string{g.binary}, args...),
		Dir:  dir,
		Env:  []string{"GIT_TERMINAL_PROMPT=0"},
	})
}

func (g *Git) checkoutErr(err error, dep domain.Dependency) error {
	err = zerr.With(zerr.Wrap(err, "failed to check out sources"), "dependency", dep.Ref())
	return zerr.With(err, "url", dep.URL)
}
