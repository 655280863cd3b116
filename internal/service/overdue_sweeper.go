package service

import (
	"context"
	"fmt"
	"time"

	"github.com/citysafe/inspection-backend/pkg/logger"
)

// OverdueMarker moves open orders past their deadline to OVERDUE
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

// OverdueSweeper runs the deadline check, both on a schedule and before reads
type OverdueSweeper struct {
	repo  OverdueMarker
	clock Clock
}

// NewOverdueSweeper creates a new OverdueSweeper
func NewOverdueSweeper(repo OverdueMarker, clock Clock) *OverdueSweeper {
	return &OverdueSweeper{repo: repo, clock: clock}
}

// Sweep applies the check once; running it again without a date change is a no-op
func (s *OverdueSweeper) Sweep(ctx context.Context) (int64, error) {
	today := s.clock.Today()
	n, err := s.repo.MarkOverdue(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("overdue sweep: %w", err)
	}
	if n > 0 {
		overdueSwept.Add(float64(n))
		logger.GetLogger().Info().
			Int64("count", n).
			Str("today", today.Format("2006-01-02")).
			Msg("work orders marked overdue")
	}
	return n, nil
}

// Run is the scheduled entry point
func (s *OverdueSweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}
