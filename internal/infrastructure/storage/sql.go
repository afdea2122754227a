package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"IdeaScout/internal/domain"
	"IdeaScout/internal/ports"
)

const ideasTable = "automation_ideas"

// Dialect names a supported SQL backend; the value doubles as the driver name.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

var ideaColumns = []string{
	"slug", "title", "industry", "difficulty", "difficulty_score", "roi_score",
	"time_saved", "cost_savings", "payback_period", "productivity_gain", "tools",
	"source_url", "source_domain", "body", "published_at", "updated_at", "metadata",
}

const schema = `CREATE TABLE IF NOT EXISTS automation_ideas (
	slug              TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	industry          TEXT NOT NULL,
	difficulty        TEXT NOT NULL,
	difficulty_score  INTEGER NOT NULL,
	roi_score         INTEGER NOT NULL,
	time_saved        TEXT NOT NULL DEFAULT '',
	cost_savings      TEXT NOT NULL DEFAULT '',
	payback_period    TEXT NOT NULL DEFAULT '',
	productivity_gain TEXT NOT NULL DEFAULT '',
	tools             TEXT NOT NULL DEFAULT '[]',
	source_url        TEXT NOT NULL DEFAULT '',
	source_domain     TEXT NOT NULL DEFAULT '',
	body              TEXT NOT NULL,
	published_at      TEXT NOT NULL,
	updated_at        TEXT NOT NULL,
	metadata          TEXT NOT NULL DEFAULT '{}'
)`

// SQLStore persists ideas in a relational table keyed by slug.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var (
	_ ports.ContentStore  = (*SQLStore)(nil)
	_ ports.ContentLister = (*SQLStore)(nil)
)

// OpenSQLStore opens the database for the dialect and ensures the table exists.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("sql store: empty dsn")
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	store, err := NewSQLStore(db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wires an existing sql.DB implementation.
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	var format sq.PlaceholderFormat
	switch dialect {
	case DialectPostgres:
		format = sq.Dollar
	case DialectSQLite:
		format = sq.Question
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	return &SQLStore{db: db, builder: sq.StatementBuilder.PlaceholderFormat(format)}, nil
}

// EnsureSchema creates the ideas table when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create %s: %w", ideasTable, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Exists reports whether a row with the slug exists.
func (s *SQLStore) Exists(ctx context.Context, slug string) (bool, error) {
	query, args, err := s.builder.Select("1").From(ideasTable).Where(sq.Eq{"slug": slug}).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// ListTitles returns every stored title, oldest first.
func (s *SQLStore) ListTitles(ctx context.Context) ([]string, error) {
	query, args, err := s.builder.Select("title").From(ideasTable).OrderBy("published_at", "slug").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build titles query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return titles, nil
}

// Get loads one row by slug.
func (s *SQLStore) Get(ctx context.Context, slug string) (domain.ContentRecord, error) {
	query, args, err := s.builder.Select(ideaColumns...).From(ideasTable).Where(sq.Eq{"slug": slug}).ToSql()
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("build get query: %w", err)
	}

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContentRecord{}, fmt.Errorf("%s: %w", slug, ports.ErrNotFound)
	}
	return record, err
}

// List loads every row ordered by slug.
func (s *SQLStore) List(ctx context.Context) ([]domain.ContentRecord, error) {
	query, args, err := s.builder.Select(ideaColumns...).From(ideasTable).OrderBy("slug").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ideas: %w", err)
	}
	defer rows.Close()

	var records []domain.ContentRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// Save upserts the record by slug; published_at keeps its first value.
func (s *SQLStore) Save(ctx context.Context, record domain.ContentRecord) error {
	tools, err := json.Marshal(nonNil(record.Tools))
	if err != nil {
		return fmt.Errorf("encode tools: %w", err)
	}
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	published := record.PublishedAt
	if published.IsZero() {
		published = time.Now()
	}
	updated := record.UpdatedAt
	if updated.IsZero() {
		updated = published
	}

	query, args, err := s.builder.Insert(ideasTable).Columns(ideaColumns...).Values(
		record.Slug, record.Title, record.Industry, record.Difficulty, record.DifficultyScore, record.ROIScore,
		record.TimeSaved, record.CostSavings, record.PaybackPeriod, record.ProductivityGain, string(tools),
		record.SourceURL, record.SourceDomain, record.Body,
		published.UTC().Format(time.RFC3339), updated.UTC().Format(time.RFC3339), string(metadata),
	).Suffix(`ON CONFLICT (slug) DO UPDATE SET
		title = EXCLUDED.title,
		industry = EXCLUDED.industry,
		difficulty = EXCLUDED.difficulty,
		difficulty_score = EXCLUDED.difficulty_score,
		roi_score = EXCLUDED.roi_score,
		time_saved = EXCLUDED.time_saved,
		cost_savings = EXCLUDED.cost_savings,
		payback_period = EXCLUDED.payback_period,
		productivity_gain = EXCLUDED.productivity_gain,
		tools = EXCLUDED.tools,
		source_url = EXCLUDED.source_url,
		source_domain = EXCLUDED.source_domain,
		body = EXCLUDED.body,
		updated_at = EXCLUDED.updated_at,
		metadata = EXCLUDED.metadata`).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", record.Slug, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.ContentRecord, error) {
	var (
		r                      domain.ContentRecord
		tools, metadata        string
		publishedAt, updatedAt string
	)
	err := row.Scan(
		&r.Slug, &r.Title, &r.Industry, &r.Difficulty, &r.DifficultyScore, &r.ROIScore,
		&r.TimeSaved, &r.CostSavings, &r.PaybackPeriod, &r.ProductivityGain, &tools,
		&r.SourceURL, &r.SourceDomain, &r.Body, &publishedAt, &updatedAt, &metadata,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan idea: %w", err)
	}

	if err := json.Unmarshal([]byte(tools), &r.Tools); err != nil {
		return r, fmt.Errorf("decode tools for %s: %w", r.Slug, err)
	}
	if err := json.Unmarshal([]byte(metadata), &r.Metadata); err != nil {
		return r, fmt.Errorf("decode metadata for %s: %w", r.Slug, err)
	}
	r.PublishedAt, _ = time.Parse(time.RFC3339, publishedAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	r.PublishedDate = r.PublishedAt.UTC().Format(time.RFC3339)
	return r, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
