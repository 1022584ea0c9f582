package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"notaria/internal/domain"
	"notaria/internal/port"
)

// StaleStageConfig holds settings for the stale stage worker.
type StaleStageConfig struct {
	PollInterval time.Duration
	StaleAfter   time.Duration
	BatchSize    int
}

// StaleStageWorker moves cases that stayed in EXTRACTING or GENERATING
// longer than StaleAfter to ERROR. It never re-runs a stage.
type StaleStageWorker struct {
	caseRepo port.CaseRepository
	cases    CaseService
	cfg      StaleStageConfig
	now      func() time.Time
}

// NewStaleStageWorker creates a new StaleStageWorker.
func NewStaleStageWorker(caseRepo port.CaseRepository, cases CaseService, cfg StaleStageConfig) *StaleStageWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 15 * time.Minute
	}
	return &StaleStageWorker{caseRepo: caseRepo, cases: cases, cfg: cfg, now: time.Now}
}

// Start runs the polling loop until ctx is canceled. A sweep in progress
// finishes before Start returns.
func (w *StaleStageWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	log.Printf("staleStageWorker: started (poll=%s, staleAfter=%s, batch=%d)",
		w.cfg.PollInterval, w.cfg.StaleAfter, w.cfg.BatchSize)

	for {
		select {
		case <-ctx.Done():
			log.Printf("staleStageWorker: shutdown complete")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep fails one batch of stale cases and returns how many were moved.
func (w *StaleStageWorker) Sweep(ctx context.Context) int {
	cutoff := w.now().Add(-w.cfg.StaleAfter)
	stale, err := w.caseRepo.ListStale(ctx,
		[]domain.CaseStatus{domain.CaseStatusExtracting, domain.CaseStatusGenerating}, cutoff, w.cfg.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("staleStageWorker: ListStale error: %v", err)
		}
		return 0
	}

	moved := 0
	for i := range stale {
		c := stale[i]
		msg := fmt.Sprintf("%s did not finish within %s; the stage was interrupted", c.Status, w.cfg.StaleAfter)
		if err := w.cases.FailStage(ctx, &c, msg); err != nil {
			if !errors.Is(err, domain.ErrConcurrentTransition) {
				log.Printf("staleStageWorker: failing case %s: %v", c.ID, err)
			}
			continue
		}
		log.Printf("staleStageWorker: case %s moved to ERROR after stalling in %s", c.ID, stale[i].Status)
		moved++
	}
	return moved
}
