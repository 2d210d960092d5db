package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shiftsense/timeclock-backend-go/internal/pkg/metrics"
)

// archiveCompletedSessions moves completed sessions older than the retention
// window into the archive store and removes them from active queries.
func (o *Orchestrator) archiveCompletedSessions(ctx context.Context) error {
	cutoff := o.now().Add(-o.cfg.ArchiveRetention)

	sessions, err := o.sessionRepo.ListCompletedBefore(ctx, cutoff, o.cfg.ArchiveBatchSize)
	if err != nil {
		return fmt.Errorf("list archivable sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	archived, err := o.sessionRepo.Archive(ctx, ids)
	if err != nil {
		return fmt.Errorf("archive sessions: %w", err)
	}

	metrics.SessionsArchivedTotal.Add(float64(archived))
	slog.Info("Archived completed sessions", "count", archived, "cutoff", cutoff)
	return nil
}
