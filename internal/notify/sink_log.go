package notify

import (
	"context"
	"log/slog"
)

// LogSink writes events to the structured log. It is the default when no
// broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, event AdminProvisioned) error {
	s.logger.InfoContext(ctx, "admin provisioned",
		"event_id", event.EventID,
		"admin_id", event.AdminID,
		"username", event.Username,
		"admin_role", event.AdminRole,
		"company_name", event.CompanyName,
		"status", event.Status,
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
