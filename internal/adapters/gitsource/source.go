// Package gitsource keeps the template source directory in sync with a git repository.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	ncplog "github.com/nextcloud/ncp-activation/internal/log"
)

// Source clones a template repository into the config source directory.
type Source struct {
	URL string
	// Ref is a branch name. Empty means the remote HEAD.
	Ref string
	// Depth limits the clone history. 0 clones everything.
	Depth int

	Progress io.Writer
	logger   *slog.Logger
}

// New creates a source that shallow-clones url.
func New(url, ref string, logger *slog.Logger) *Source {
	return &Source{URL: url, Ref: ref, Depth: 1, logger: ncplog.Component(logger, "templates")}
}

// Sync clones the repository into dir, or fast-forwards an existing checkout.
func (s *Source) Sync(ctx context.Context, dir string) error {
	if s.URL == "" {
		return errors.New("template repository url is empty")
	}
	if s.logger == nil {
		s.logger = ncplog.Component(nil, "templates")
	}

	repo, err := git.PlainOpen(dir)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		return s.clone(ctx, dir)
	case err != nil:
		return fmt.Errorf("failed to open template repo %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	opts := &git.PullOptions{RemoteName: "origin", Depth: s.Depth, Progress: s.Progress}
	if s.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Ref)
	}
	err = wt.PullContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		s.logger.Debug("templates up to date", ncplog.PathKey, dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pull templates: %w", err)
	}
	s.logger.Info("templates updated", ncplog.PathKey, dir, "url", s.URL)
	return nil
}

func (s *Source) clone(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create template dir: %w", err)
	}
	opts := &git.CloneOptions{
		URL:      s.URL,
		Progress: s.Progress,
		Depth:    s.Depth,
	}
	if s.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Ref)
		opts.SingleBranch = true
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return fmt.Errorf("failed to clone templates from %s: %w", s.URL, err)
	}
	s.logger.Info("templates cloned", ncplog.PathKey, dir, "url", s.URL)
	return nil
}
