package config

import "time"

// Default values for the optional configuration keys.
const (
	DefaultMessagesDir    = ".tg2site-messages"
	DefaultCommitMessage  = "Sync updates"
	DefaultCommitter      = "bot@tg2site"
	DefaultAPIURL         = "https://api.telegram.org"
	DefaultPollTimeout    = 25 * time.Second
	DefaultRequestTimeout = 30 * time.Second

	// StatusReportTask is the name of the periodic statistics task.
	StatusReportTask        = "status_report"
	DefaultStatusReportCron = "0 */30 * * * *"
)

var defaults = map[string]any{
	"messages_dir":    DefaultMessagesDir,
	"commit_message":  DefaultCommitMessage,
	"committer_name":  DefaultCommitter,
	"committer_email": DefaultCommitter,
	"api_url":         DefaultAPIURL,
	"poll_timeout":    DefaultPollTimeout,
	"request_timeout": DefaultRequestTimeout,

	"scheduler.tasks." + StatusReportTask + ".enabled":  true,
	"scheduler.tasks." + StatusReportTask + ".schedule": DefaultStatusReportCron,
}
