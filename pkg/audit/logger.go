package audit

import (
	"context"
	"time"

	"github.com/taskboardhq/taskboard/pkg/contextkeys"
)

// Logger is the interface for audit logging. Implementations must be safe
// for concurrent use. A failing audit write must never abort the request
// it describes; callers log the returned error and continue.
type Logger interface {
	// Log records a fully built audit event
	Log(ctx context.Context, event *Event) error

	// LogAuthentication records a login, logout, or token event
	LogAuthentication(ctx context.Context, eventType EventType, userID, email string, status EventStatus, message string) error

	// LogAuthorization records a permission check outcome or a grant change
	LogAuthorization(ctx context.Context, eventType EventType, userID string, resourceType ResourceType, resourceID string, status EventStatus, message string) error

	// LogDataMutation records a board, column, or task mutation
	LogDataMutation(ctx context.Context, eventType EventType, userID string, resourceType ResourceType, resourceID string, metadata map[string]interface{}) error

	// LogAdminAction records a profile, team, or user administration event
	LogAdminAction(ctx context.Context, eventType EventType, adminUserID, targetID string, message string) error

	// Close flushes any buffered events
	Close() error
}

// WithLogger adds an audit logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextkeys.AuditLoggerKey, logger)
}

// FromContext retrieves the audit logger from the context, falling back to
// a no-op logger so call sites never nil-check.
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(contextkeys.AuditLoggerKey).(Logger); ok {
		return logger
	}
	return NopLogger{}
}

// buildBaseEvent fills the fields derivable from the request context
func buildBaseEvent(ctx context.Context, eventType EventType, status EventStatus) *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		RequestID: contextkeys.RequestID(ctx),
	}
}

// NopLogger discards all events. Used in tests and when auditing is
// disabled by configuration.
type NopLogger struct{}

func (NopLogger) Log(context.Context, *Event) error { return nil }

func (NopLogger) LogAuthentication(context.Context, EventType, string, string, EventStatus, string) error {
	return nil
}

func (NopLogger) LogAuthorization(context.Context, EventType, string, ResourceType, string, EventStatus, string) error {
	return nil
}

func (NopLogger) LogDataMutation(context.Context, EventType, string, ResourceType, string, map[string]interface{}) error {
	return nil
}

func (NopLogger) LogAdminAction(context.Context, EventType, string, string, string) error {
	return nil
}

func (NopLogger) Close() error { return nil }
