// Package refresh keeps the latest published snapshot and re-runs the
// pipeline on a cron cadence.
package refresh

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"ChipPulse/internal/model"
	"ChipPulse/internal/pipeline"
)

// Service holds the last published snapshot plus the parameters that
// produced it, and re-runs those parameters on a schedule. Publication is
// last-write-wins: every run takes a sequence number before it starts, and
// a run that was superseded while in flight gets dropped instead of
// displayed.
type Service struct {
	Cron   *cron.Cron
	Runner *pipeline.Runner
	Ctx    context.Context

	mu        sync.RWMutex
	nextSeq   uint64
	published uint64
	snap      *model.Snapshot
	params    pipeline.Request
}

// NewService creates a refresh service. defaults is the request the
// scheduled task runs until a user-triggered run replaces it.
func NewService(ctx context.Context, runner *pipeline.Runner, defaults pipeline.Request) *Service {
	return &Service{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Ctx:    ctx,
		params: defaults,
	}
}

// Begin hands out the sequence number for a run about to start.
func (s *Service) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// Publish stores a finished run's snapshot unless a newer run already
// published. Reports whether the snapshot was accepted.
func (s *Service) Publish(seq uint64, snap *model.Snapshot, req pipeline.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.published {
		log.Printf("[WARN] dropping stale snapshot (run %d, current %d)", seq, s.published)
		return false
	}
	s.published = seq
	s.snap = snap
	s.params = req
	return true
}

// Latest returns the last published snapshot, or nil when none exists yet.
func (s *Service) Latest() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Params returns the parameters of the last published run.
func (s *Service) Params() pipeline.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Register schedules the periodic refresh task.
func (s *Service) Register(cronExpr string) error {
	if _, err := s.Cron.AddFunc(cronExpr, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Service) Start() {
	s.Cron.Start()
	log.Println("[INFO] refresh scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Service) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] refresh scheduler stopped")
}

// RunNow executes one refresh immediately (for warm-up at boot).
func (s *Service) RunNow() {
	s.refreshTask()
}

func (s *Service) refreshTask() {
	req := s.Params()
	log.Printf("[INFO] running refresh: period=%s interval=%dd tickers=%d",
		req.Period, req.IntervalDays, len(req.Tickers))

	seq := s.Begin()
	snap, err := s.Runner.Run(s.Ctx, req)
	if err != nil {
		log.Printf("[ERROR] refresh run: %v", err)
		return
	}
	s.Publish(seq, snap, req)
}
