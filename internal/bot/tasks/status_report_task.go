package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/edgard/tg2site/internal/config"
)

// newStatusReportTask creates the task that logs the mirror loop statistics.
func newStatusReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.StatusReportTask)

	return func(ctx context.Context) error {
		if deps.Stats == nil {
			return errors.New("no statistics source")
		}
		st := deps.Stats.Stats()

		attrs := []any{
			"cursor", st.Cursor,
			"polls", st.Polls,
			"updates_seen", st.UpdatesSeen,
			"messages_persisted", st.MessagesPersisted,
			"syncs", st.Syncs,
			"uptime", time.Since(st.StartedAt).Round(time.Second).String(),
		}
		if deps.Config != nil {
			attrs = append(attrs, "channel_id", deps.Config.ChannelID, "branch", deps.Config.PublishBranch)
		}
		if st.LastSync.IsZero() {
			attrs = append(attrs, "last_sync", "never")
		} else {
			attrs = append(attrs, "last_sync", st.LastSync.UTC().Format(time.RFC3339))
		}

		log.InfoContext(ctx, "Mirror status", attrs...)
		return nil
	}
}
