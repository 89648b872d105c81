package ledger

import (
	"context"
	"errors"
	"time"
)

// RunReconciler runs a reconciliation pass immediately and then every
// interval until ctx is cancelled. A failed pass is logged and the loop keeps
// going; the next tick retries from scratch.
func (s *Service) RunReconciler(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("reconcile interval must be positive")
	}
	s.logger.Info().Dur("interval", interval).Msg("reconciler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.reconcileTick(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) reconcileTick(ctx context.Context) {
	start := s.now()
	reports, err := s.Reconcile(ctx, SystemActor)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("reconciliation pass failed")
		}
		return
	}
	corrected := 0
	for _, r := range reports {
		if r.Corrected {
			corrected++
		}
	}
	s.logger.Info().
		Int("pools", len(reports)).
		Int("corrected", corrected).
		Dur("took", s.now().Sub(start)).
		Msg("reconciliation pass finished")
}
