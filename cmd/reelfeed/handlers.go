package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/mpetrov/reelfeed/internal/config"
	"github.com/mpetrov/reelfeed/internal/scheduler"
	"github.com/mpetrov/reelfeed/internal/seed"
	"github.com/mpetrov/reelfeed/internal/store"
	"github.com/mpetrov/reelfeed/pkg/feed"
	"github.com/mpetrov/reelfeed/pkg/ingest"
	"github.com/mpetrov/reelfeed/pkg/notify"
	"github.com/mpetrov/reelfeed/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func buildImporters(cfg *config.Config) []ingest.Importer {
	if !cfg.Import.Enabled || len(cfg.Import.Feeds) == 0 {
		return nil
	}

	feeds := make([]ingest.Feed, len(cfg.Import.Feeds))
	for i, f := range cfg.Import.Feeds {
		feeds[i] = ingest.Feed{Name: f.Name, URL: f.URL}
	}
	filter := ingest.NewGenreFilter(cfg.Import.ExtraGenres, cfg.Import.ExcludeKeywords)

	return []ingest.Importer{ingest.NewRSS(feeds, filter)}
}

func buildNotifyManager(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notify.Webhook.URL, cfg.Notify.Webhook.Secret))
	}

	return notify.NewManager(notifiers)
}

func runServe(port int, seedPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger()

	if port == 0 {
		port = cfg.Server.Port
	}
	if seedPath == "" {
		seedPath = cfg.Seed.Path
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Seed before the listener starts so the first request sees the data.
	if seedPath != "" {
		summary, err := seed.Load(ctx, db, seedPath)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info().
			Int("movies", summary.Movies).
			Int("preferences", summary.Preferences).
			Int("related_users", summary.RelatedUsers).
			Msg("seeded")
	}

	scorer := feed.NewScorer(db, cfg.Feed.Limit)
	srv := server.New(db, scorer, log, port)
	return srv.ListenAndServe(ctx)
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger()

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Seed.Path != "" {
		summary, err := seed.Load(ctx, db, cfg.Seed.Path)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info().
			Int("movies", summary.Movies).
			Int("preferences", summary.Preferences).
			Int("related_users", summary.RelatedUsers).
			Msg("seeded")
	}

	if importers := buildImporters(cfg); len(importers) > 0 {
		sched := scheduler.New(db, importers, buildNotifyManager(cfg), cfg.Import.ParseInterval(), log)
		go func() {
			if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("scheduler error")
			}
		}()
	}

	scorer := feed.NewScorer(db, cfg.Feed.Limit)
	srv := server.New(db, scorer, log, port)
	return srv.ListenAndServe(ctx)
}

func runSeed(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	summary, err := seed.Load(context.Background(), db, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "seeded %d movies, %d preferences, %d related users\n",
		summary.Movies, summary.Preferences, summary.RelatedUsers)
	return nil
}

func runFeed(userID string, jsonOutput bool, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if limit == 0 {
		limit = cfg.Feed.Limit
	}

	scorer := feed.NewScorer(db, limit)
	items, err := scorer.Rank(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("rank %s: %w", userID, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("empty catalog (try seeding data first: reelfeed seed <file>)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tGENRES\tRELEASED")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			item.ID, item.Title,
			strings.Join(item.Genres, ","),
			item.ReleasedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runImport() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger()

	importers := buildImporters(cfg)
	if len(importers) == 0 {
		return fmt.Errorf("no import feeds configured")
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	total := 0

	for _, imp := range importers {
		items, err := imp.Import(ctx)
		if err != nil {
			log.Error().Err(err).Str("importer", imp.Name()).Msg("import failed")
			continue
		}
		if err := db.UpsertItems(ctx, items); err != nil {
			log.Error().Err(err).Str("importer", imp.Name()).Msg("store import failed")
			continue
		}
		log.Info().Str("importer", imp.Name()).Int("items", len(items)).Msg("imported")
		total += len(items)
	}

	fmt.Fprintf(os.Stderr, "total: %d items\n", total)
	return nil
}
