package audit

import (
	"context"
	"errors"
)

// MultiLogger fans events out to several loggers. Every logger sees every
// event even when an earlier one fails; the errors are joined.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a logger that writes to all given loggers
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

func (m *MultiLogger) Log(ctx context.Context, event *Event) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Log(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiLogger) LogAuthentication(ctx context.Context, eventType EventType, userID, email string, status EventStatus, message string) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.LogAuthentication(ctx, eventType, userID, email, status, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiLogger) LogAuthorization(ctx context.Context, eventType EventType, userID string, resourceType ResourceType, resourceID string, status EventStatus, message string) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.LogAuthorization(ctx, eventType, userID, resourceType, resourceID, status, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiLogger) LogDataMutation(ctx context.Context, eventType EventType, userID string, resourceType ResourceType, resourceID string, metadata map[string]interface{}) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.LogDataMutation(ctx, eventType, userID, resourceType, resourceID, metadata); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiLogger) LogAdminAction(ctx context.Context, eventType EventType, adminUserID, targetID string, message string) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.LogAdminAction(ctx, eventType, adminUserID, targetID, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiLogger) Close() error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
