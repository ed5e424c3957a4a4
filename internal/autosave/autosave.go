// Package autosave periodically saves an edited template when it changed
// since the last save.
package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mithrel/folio/pkg/api"
)

const DefaultInterval = 30 * time.Second

// SaveFunc persists t and returns the stored copy.
type SaveFunc func(ctx context.Context, t *api.Template) (*api.Template, error)

// Saver runs a save on a fixed interval. Snapshot returns the document being
// edited; Saved, when set, receives the stored copy after each save so the
// editor can pick up the new id and version.
type Saver struct {
	Snapshot func() *api.Template
	Save     SaveFunc
	Saved    func(*api.Template)
	Timeout  time.Duration

	cron     *cron.Cron
	log      *zap.SugaredLogger
	interval time.Duration

	mu       sync.Mutex
	lastHash string
}

func New(interval time.Duration, snapshot func() *api.Template, save SaveFunc, log *zap.SugaredLogger) *Saver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Saver{
		Snapshot: snapshot,
		Save:     save,
		Timeout:  time.Minute,
		cron:     cron.New(),
		log:      log,
		interval: interval,
	}
}

// MarkSaved records t as the last saved state.
func (s *Saver) MarkSaved(t *api.Template) {
	s.mu.Lock()
	s.lastHash = t.Hash()
	s.mu.Unlock()
}

// Dirty reports whether t differs from the last saved state.
func (s *Saver) Dirty(t *api.Template) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Hash() != s.lastHash
}

// Tick saves the current snapshot when it is dirty. It reports whether a
// save happened.
func (s *Saver) Tick(ctx context.Context) (bool, error) {
	t := s.Snapshot()
	if t == nil || !s.Dirty(t) {
		return false, nil
	}
	saved, err := s.Save(ctx, t)
	if err != nil {
		return false, fmt.Errorf("autosave: %w", err)
	}
	if s.Saved != nil {
		s.Saved(saved)
	}
	// Mark what was sent, under the id the store gave it. Edits made while
	// the save ran stay dirty.
	sent := t.Clone()
	sent.ID, sent.CreatedBy = saved.ID, saved.CreatedBy
	s.MarkSaved(sent)
	s.log.Debugw("autosaved", "id", saved.ID, "version", saved.Version)
	return true, nil
}

func (s *Saver) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	if _, err := s.Tick(ctx); err != nil {
		s.log.Warnw("autosave failed", "error", err)
	}
}

// Start schedules saves every interval.
func (s *Saver) Start() error {
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), s.run); err != nil {
		return fmt.Errorf("schedule autosave: %w", err)
	}
	s.cron.Start()
	s.log.Infow("autosave started", "interval", s.interval)
	return nil
}

// Stop halts the schedule and waits for a running save to finish.
func (s *Saver) Stop() {
	<-s.cron.Stop().Done()
}
