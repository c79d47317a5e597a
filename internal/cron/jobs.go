package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SummaryExpirer is the subset of store.SummaryStore needed by the
// retention job. Defined here to avoid a dependency on the store package.
type SummaryExpirer interface {
	ExpireSummaries(ctx context.Context, cutoff time.Time) (int, error)
}

// SummaryRetentionJob removes context summaries whose covered period ended
// more than RetentionDays ago. RetentionDays <= 0 disables the sweep.
type SummaryRetentionJob struct {
	Store         SummaryExpirer
	RetentionDays int
	Logger        *slog.Logger
	ScheduleExpr  string           // empty = default "0 4 * * *"
	Now           func() time.Time // nil = time.Now
}

// Compile-time interface check.
var _ Job = (*SummaryRetentionJob)(nil)

// Name implements Job.
func (j *SummaryRetentionJob) Name() string { return "summary_retention" }

// Schedule implements Job.
func (j *SummaryRetentionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 4 * * *"
}

// Run sweeps summaries older than the retention window.
func (j *SummaryRetentionJob) Run(ctx context.Context) error {
	if j.RetentionDays <= 0 {
		return nil
	}

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	cutoff := now().UTC().AddDate(0, 0, -j.RetentionDays)

	deleted, err := j.Store.ExpireSummaries(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cron: summary retention sweep: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("cron: expired old summaries",
			"count", deleted,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return nil
}
