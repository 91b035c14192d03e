package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard/pkg/contextkeys"
)

func newDBLoggerFixture(t *testing.T) (*DBLogger, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS audit_logs`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	logger, err := NewDBLogger(db)
	require.NoError(t, err)
	return logger, mock
}

func TestDBLoggerInsertsEvent(t *testing.T) {
	logger, mock := newDBLoggerFixture(t)

	mock.ExpectQuery(`INSERT INTO audit_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	event := &Event{
		Timestamp: time.Now(),
		EventType: EventTypeAuthLogin,
		Status:    EventStatusSuccess,
		UserID:    "6f1f5a06-0000-4000-8000-000000000001",
		UserEmail: "ana@example.com",
		Message:   "user logged in",
	}
	require.NoError(t, logger.Log(context.Background(), event))
	assert.Equal(t, int64(7), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBLoggerNullableActor(t *testing.T) {
	logger, mock := newDBLoggerFixture(t)

	// An empty actor must insert NULL, not an empty string, into the UUID
	// column.
	mock.ExpectQuery(`INSERT INTO audit_logs`).
		WithArgs(sqlmock.AnyArg(), string(EventTypeAuthzAccessDenied), string(EventStatusDenied),
			nil, "", string(ResourceTypePermission), "DELETE /teams/t1",
			"", "", "", "", "denied", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	err := logger.LogAuthorization(context.Background(), EventTypeAuthzAccessDenied, "",
		ResourceTypePermission, "DELETE /teams/t1", EventStatusDenied, "denied")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildBaseEventCarriesRequestID(t *testing.T) {
	ctx := contextkeys.WithRequestID(context.Background(), "req-42")

	event := buildBaseEvent(ctx, EventTypeAuthLogin, EventStatusSuccess)
	assert.Equal(t, "req-42", event.RequestID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestMultiLoggerFansOut(t *testing.T) {
	first, firstMock := newDBLoggerFixture(t)
	second, secondMock := newDBLoggerFixture(t)

	firstMock.ExpectQuery(`INSERT INTO audit_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	secondMock.ExpectQuery(`INSERT INTO audit_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	multi := NewMultiLogger(first, second)
	err := multi.LogAuthentication(context.Background(), EventTypeAuthLogin, "", "ana@example.com",
		EventStatusSuccess, "user logged in")
	require.NoError(t, err)
	assert.NoError(t, firstMock.ExpectationsWereMet())
	assert.NoError(t, secondMock.ExpectationsWereMet())
}

func TestFromContextFallsBackToNop(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.NoError(t, logger.Log(context.Background(), &Event{}))
}
