package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types.
const (
	EventRegister       = "register"
	EventLogin          = "login"
	EventLogout         = "logout"
	EventPasswordChange = "password_change"
	EventProfileUpdate  = "profile_update"
	EventAdminBootstrap = "admin_bootstrap"
)

// AuditEvent is one entry of the security audit trail.
type AuditEvent struct {
	Type          string
	UserID        string
	Username      string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes security events to a dedicated slog stream. Successful
// events are logged at info, failures at warn.
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger.With(slog.String("component", "audit")),
		now:    time.Now,
	}
}

func (al *AuditLogger) Record(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", event.Type),
		slog.Bool("success", event.Success),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}

	optional := []struct{ key, val string }{
		{"user_id", event.UserID},
		{"username", event.Username},
		{"ip_address", event.IPAddress},
		{"user_agent", event.UserAgent},
		{"failure_reason", event.FailureReason},
	}
	for _, o := range optional {
		if o.val != "" {
			attrs = append(attrs, slog.String(o.key, o.val))
		}
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
