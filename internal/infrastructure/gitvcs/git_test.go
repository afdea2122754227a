package gitvcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"IdeaScout/internal/ports"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q", dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init: %v %s", err, out)
	}
	return dir
}

func TestCommitAndPushCommitsContent(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	content := filepath.Join(dir, "content")
	if err := os.MkdirAll(content, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(content, "idea.mdx"), []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	repo, err := New(Config{RepoDir: dir, ContentPath: "content"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := repo.CommitAndPush(context.Background(), "Add automation idea: idea"); err != nil {
		t.Fatalf("CommitAndPush: %v", err)
	}

	out, err := repo.run(context.Background(), "log", "-1", "--format=%s|%an")
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if strings.TrimSpace(out) != "Add automation idea: idea|IdeaScout Bot" {
		t.Fatalf("unexpected commit: %q", out)
	}

	if err := repo.CommitAndPush(context.Background(), "again"); !errors.Is(err, ports.ErrNothingToCommit) {
		t.Fatalf("expected ErrNothingToCommit, got %v", err)
	}
}

func TestCommitAndPushReportsPushFailure(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "idea.mdx"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	repo, err := New(Config{RepoDir: dir, Push: true, Remote: "missing"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = repo.CommitAndPush(context.Background(), "msg")
	if err == nil || !strings.Contains(err.Error(), "git push") {
		t.Fatalf("expected push error, got %v", err)
	}
}
