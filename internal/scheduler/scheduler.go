// Package scheduler runs periodic catalog imports.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpetrov/reelfeed/internal/store"
	"github.com/mpetrov/reelfeed/pkg/catalog"
	"github.com/mpetrov/reelfeed/pkg/ingest"
	"github.com/mpetrov/reelfeed/pkg/notify"
)

// Scheduler runs importers on an interval and notifies on new items.
type Scheduler struct {
	store     store.Store
	importers []ingest.Importer
	notifyMgr *notify.Manager
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a new scheduler.
func New(s store.Store, importers []ingest.Importer, notifyMgr *notify.Manager, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval == 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{
		store:     s,
		importers: importers,
		notifyMgr: notifyMgr,
		interval:  interval,
		log:       log,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start.
	s.importAll(ctx)
	s.log.Info().Dur("interval", s.interval).Msg("scheduler running")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.importAll(ctx)
		}
	}
}

func (s *Scheduler) importAll(ctx context.Context) {
	var added []catalog.Item

	for _, imp := range s.importers {
		items, err := imp.Import(ctx)
		if err != nil {
			s.log.Error().Err(err).Str("importer", imp.Name()).Msg("import failed")
			continue
		}

		if err := s.store.UpsertItems(ctx, items); err != nil {
			s.log.Error().Err(err).Str("importer", imp.Name()).Msg("store import failed")
			continue
		}

		s.log.Info().Str("importer", imp.Name()).Int("items", len(items)).Msg("imported")
		added = append(added, items...)
	}

	if len(added) == 0 || !s.notifyMgr.HasNotifiers() {
		return
	}

	n := &notify.Notification{
		Title: "catalog import",
		Body:  fmt.Sprintf("%d items imported", len(added)),
		Items: added,
	}
	if err := s.notifyMgr.Broadcast(ctx, n); err != nil {
		s.log.Error().Err(err).Msg("notify failed")
	}
}
