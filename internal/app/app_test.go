package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"IdeaScout/internal/config"
	"IdeaScout/internal/domain"
	"IdeaScout/internal/infrastructure/notify"
	"IdeaScout/internal/infrastructure/storage"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("IDEASCOUT_CONFIG", "")

	dir := t.TempDir()
	cfg := config.Load()
	cfg.Search.Providers = []string{"perplexity"}
	cfg.Search.Perplexity.APIKey = "pplx-test"
	cfg.Search.MaxSearchesPerRun = 1
	cfg.Search.SearchDelay = 0
	cfg.LLM.Provider = config.LLMOpenAI
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.ExtractionDelay = 0
	cfg.Content.Store = config.StoreMDX
	cfg.Content.Dir = filepath.Join(dir, "ideas")
	cfg.Git.Enabled = false
	cfg.Lock.Path = filepath.Join(dir, "run.lock")
	cfg.Lock.ValkeyAddress = ""
	cfg.Notifications.Slack.WebhookURL = ""
	cfg.Notifications.Telegram = config.TelegramConfig{}
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunWithoutSourcesNotifies(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Nothing relevant this week."}}],"citations":[]}`)
	}))
	defer search.Close()

	var (
		mu       sync.Mutex
		messages []string
	)
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		mu.Lock()
		messages = append(messages, r.PostForm.Get("chat_id")+"|"+r.PostForm.Get("text"))
		mu.Unlock()
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer bot.Close()

	cfg := testConfig(t)
	cfg.Search.Perplexity.Endpoint = search.URL
	cfg.Notifications.Telegram = config.TelegramConfig{BaseURL: bot.URL, BotToken: "token", ChatID: "42"}

	var logs bytes.Buffer
	application, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Close()

	if err := application.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(logs.String(), "component=discovery") {
		t.Fatalf("stage logs missing component: %s", logs.String())
	}
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Count(line, "component=") > 1 {
			t.Fatalf("component tagged twice: %s", line)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(messages) != 1 || !strings.HasPrefix(messages[0], "42|") || len(messages[0]) <= len("42|") {
		t.Fatalf("unexpected notifications: %q", messages)
	}
	if _, err := os.Stat(cfg.Lock.Path); !os.IsNotExist(err) {
		t.Fatalf("run lock should be released, stat err = %v", err)
	}
}

func TestNewRejectsUnknownProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Providers = []string{"bing"}
	if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatalf("expected unknown provider error")
	}

	cfg = testConfig(t)
	cfg.LLM.Provider = "claude"
	if _, err := New(context.Background(), cfg, discardLogger()); err == nil || !strings.Contains(err.Error(), "claude") {
		t.Fatalf("expected unknown llm error, got %v", err)
	}
}

func TestBuildNotifierFallsBackToLog(t *testing.T) {
	cfg := testConfig(t)
	if _, ok := buildNotifier(cfg, discardLogger()).(*notify.LogNotifier); !ok {
		t.Fatalf("expected log notifier without channels")
	}

	cfg.Notifications.Slack.WebhookURL = "https://hooks.example/slack"
	cfg.Notifications.Telegram = config.TelegramConfig{BotToken: "t", ChatID: "c"}
	multi, ok := buildNotifier(cfg, discardLogger()).(notify.Multi)
	if !ok || len(multi) != 2 {
		t.Fatalf("expected slack and telegram channels, got %#v", multi)
	}
}

func TestMigrateRequiresDatabaseTarget(t *testing.T) {
	cfg := testConfig(t)
	if _, err := Migrate(context.Background(), cfg, "", discardLogger()); err == nil {
		t.Fatalf("expected error for file target")
	}
}

func TestMigrateRequiresExistingSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Store = config.StoreSQLite
	cfg.Content.DSN = filepath.Join(t.TempDir(), "ideas.db")
	missing := filepath.Join(t.TempDir(), "typo")

	if _, err := Migrate(context.Background(), cfg, missing, discardLogger()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing source error, got %v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatalf("migration must not create the source directory")
	}
}

func TestMigrateMDXIntoSQLite(t *testing.T) {
	cfg := testConfig(t)
	source, err := storage.NewMDXStore(cfg.Content.Dir)
	if err != nil {
		t.Fatalf("NewMDXStore: %v", err)
	}
	published := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	record := domain.ContentRecord{
		Frontmatter: domain.Frontmatter{
			Title:         "Invoice Matching at Acme",
			Slug:          "invoice-matching-at-acme",
			Industry:      "Finance",
			ROIScore:      8,
			PublishedDate: published.Format(time.RFC3339),
			SourceURL:     "https://www.gartner.com/acme",
			SourceDomain:  "gartner.com",
		},
		Body:        "# Invoice Matching at Acme\n\nSaved 30%.",
		PublishedAt: published,
		UpdatedAt:   published,
	}
	if err := source.Save(context.Background(), record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg.Content.Store = config.StoreSQLite
	cfg.Content.DSN = filepath.Join(t.TempDir(), "ideas.db")
	result, err := Migrate(context.Background(), cfg, source.Dir(), discardLogger())
	if err != nil {
		if strings.Contains(err.Error(), "CGO") {
			t.Skipf("sqlite unavailable: %v", err)
		}
		t.Fatalf("Migrate: %v", err)
	}
	if result.Migrated != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	target, err := storage.OpenSQLStore(context.Background(), storage.DialectSQLite, cfg.Content.DSN)
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	defer target.Close()
	got, err := target.Get(context.Background(), record.Slug)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != record.Title || got.Metadata.MigratedAt == "" {
		t.Fatalf("unexpected migrated record: %+v", got)
	}
}
