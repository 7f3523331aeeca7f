package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360chat/c360chat/internal/observability"
)

// Sweeper periodically expires idle sessions and publishes the live session
// count.
type Sweeper struct {
	Sessions *Sessions
	IdleTTL  time.Duration
	Interval time.Duration
	Logger   *slog.Logger
}

// Run sweeps until ctx is cancelled. A non-positive IdleTTL disables expiry
// and Run returns immediately.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.Sessions == nil || s.IdleTTL <= 0 {
		return nil
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) []string {
	expired := s.Sessions.SweepIdle(s.IdleTTL)
	remaining := s.Sessions.Len()
	observability.SetActiveSessions(remaining)
	if len(expired) > 0 && s.Logger != nil {
		s.Logger.InfoContext(ctx, "expired idle sessions", slog.Int("expired", len(expired)), slog.Int("active", remaining))
	}
	return expired
}
