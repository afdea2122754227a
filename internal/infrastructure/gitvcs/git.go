// Package gitvcs commits published content with the git command line.
package gitvcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"IdeaScout/internal/ports"
)

// Config points at a working tree and the identity used for commits.
type Config struct {
	RepoDir     string
	ContentPath string
	Remote      string
	Branch      string
	AuthorName  string
	AuthorEmail string
	Push        bool
}

// Repository stages the content path, commits and pushes.
type Repository struct {
	cfg Config
	git string
}

var _ ports.VersionControl = (*Repository)(nil)

// New resolves the git binary and fills defaults.
func New(cfg Config) (*Repository, error) {
	path, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git binary: %w", err)
	}
	if cfg.RepoDir == "" {
		cfg.RepoDir = "."
	}
	if cfg.ContentPath == "" {
		cfg.ContentPath = "."
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.AuthorName == "" {
		cfg.AuthorName = "IdeaScout Bot"
	}
	if cfg.AuthorEmail == "" {
		cfg.AuthorEmail = "bot@ideascout.local"
	}
	return &Repository{cfg: cfg, git: path}, nil
}

// CommitAndPush returns ports.ErrNothingToCommit when the index is clean after staging.
func (r *Repository) CommitAndPush(ctx context.Context, message string) error {
	if _, err := r.run(ctx, "add", "--", r.cfg.ContentPath); err != nil {
		return err
	}

	_, err := r.run(ctx, "diff", "--cached", "--quiet")
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return ports.ErrNothingToCommit
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
	default:
		return err
	}

	if _, err := r.run(ctx,
		"-c", "user.name="+r.cfg.AuthorName,
		"-c", "user.email="+r.cfg.AuthorEmail,
		"commit", "-m", message,
	); err != nil {
		return err
	}

	if !r.cfg.Push {
		return nil
	}
	args := []string{"push", r.cfg.Remote}
	if r.cfg.Branch != "" {
		args = append(args, "HEAD:"+r.cfg.Branch)
	}
	_, err = r.run(ctx, args...)
	return err
}

func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.git, args...)
	cmd.Dir = r.cfg.RepoDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &commandError{args: args, stderr: strings.TrimSpace(stderr.String()), err: err}
	}
	return stdout.String(), nil
}

type commandError struct {
	args   []string
	stderr string
	err    error
}

func (e *commandError) Error() string {
	if e.stderr == "" {
		return fmt.Sprintf("git %s: %v", e.args[0], e.err)
	}
	return fmt.Sprintf("git %s: %v: %s", e.args[0], e.err, e.stderr)
}

func (e *commandError) Unwrap() error {
	return e.err
}
