// Package storage persists published ideas as MDX files or database rows.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"IdeaScout/internal/document"
	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const mdxExt = ".mdx"

// MDXStore keeps one <slug>.mdx file per idea inside a content directory.
type MDXStore struct {
	dir string
}

var (
	_ ports.ContentStore  = (*MDXStore)(nil)
	_ ports.ContentLister = (*MDXStore)(nil)
)

// NewMDXStore creates the content directory when it is missing.
func NewMDXStore(dir string) (*MDXStore, error) {
	if dir == "" {
		return nil, errors.New("mdx store: empty content directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	return &MDXStore{dir: dir}, nil
}

// Dir is the content directory.
func (s *MDXStore) Dir() string {
	return s.dir
}

func (s *MDXStore) path(slug string) (string, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		return "", fmt.Errorf("invalid slug %q", slug)
	}
	return filepath.Join(s.dir, slug+mdxExt), nil
}

// Exists reports whether <slug>.mdx is present.
func (s *MDXStore) Exists(_ context.Context, slug string) (bool, error) {
	p, err := s.path(slug)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
}

// ListTitles returns the title of every readable document.
func (s *MDXStore) ListTitles(ctx context.Context) ([]string, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(records))
	for _, r := range records {
		if r.Title != "" {
			titles = append(titles, r.Title)
		}
	}
	return titles, nil
}

// Get reads and parses a single document.
func (s *MDXStore) Get(_ context.Context, slug string) (domain.ContentRecord, error) {
	p, err := s.path(slug)
	if err != nil {
		return domain.ContentRecord{}, err
	}
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ContentRecord{}, fmt.Errorf("%s: %w", slug, ports.ErrNotFound)
	}
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("read %s: %w", p, err)
	}
	return toRecord(slug, string(raw))
}

// Save renders the record and replaces the file atomically.
func (s *MDXStore) Save(_ context.Context, record domain.ContentRecord) error {
	p, err := s.path(record.Slug)
	if err != nil {
		return err
	}
	raw, err := document.Render(record.Frontmatter, record.Body)
	if err != nil {
		return fmt.Errorf("render %s: %w", record.Slug, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+record.Slug+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", record.Slug, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", record.Slug, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace %s: %w", p, err)
	}
	return nil
}

// List parses every document in the directory, ordered by slug. Files that fail to parse are skipped.
func (s *MDXStore) List(ctx context.Context) ([]domain.ContentRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var records []domain.ContentRecord
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, mdxExt) || strings.HasPrefix(name, ".") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		record, err := toRecord(strings.TrimSuffix(name, mdxExt), string(raw))
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Slug < records[j].Slug })
	return records, nil
}

func toRecord(slug, raw string) (domain.ContentRecord, error) {
	fm, body, err := document.Parse(raw)
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("parse %s: %w", slug, err)
	}
	if fm.Slug == "" {
		fm.Slug = slug
	}

	record := domain.ContentRecord{
		Frontmatter: fm,
		Body:        body,
		Metadata:    domain.RecordMetadata{ContentMDX: raw},
	}
	if t, err := time.Parse(time.RFC3339, fm.PublishedDate); err == nil {
		record.PublishedAt = t
		record.UpdatedAt = t
	} else if t, err := time.Parse("2006-01-02", fm.PublishedDate); err == nil {
		record.PublishedAt = t
		record.UpdatedAt = t
	}
	return record, nil
}
