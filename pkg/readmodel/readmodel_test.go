package readmodel

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard/pkg/cache"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type projectorFixture struct {
	projector *Projector
	cache     *cache.Memory
	mock      sqlmock.Sqlmock
}

func newProjectorFixture(t *testing.T) *projectorFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mem := cache.NewMemory(0, nil)
	projector := NewProjector(
		store.NewStore(db),
		mem,
		observability.NewLogger(observability.ErrorLevel, io.Discard),
	)
	return &projectorFixture{projector: projector, cache: mem, mock: mock}
}

// expectBoardComputation queues the three round-trips behind one summary
// refresh
func (f *projectorFixture) expectBoardComputation(boardID, name string, taskCounts map[string]int) {
	now := time.Now()
	f.mock.ExpectQuery(`FROM boards`).WithArgs(boardID).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "description", "owner_id", "created_at", "updated_at"}).
			AddRow(boardID, name, "", "owner-1", now, now))
	f.mock.ExpectQuery(`FROM columns`).WithArgs(boardID).WillReturnRows(
		sqlmock.NewRows([]string{"id", "board_id", "name", "position", "created_at", "updated_at"}).
			AddRow("c1", boardID, "To Do", 0, now, now).
			AddRow("c2", boardID, "Done", 1, now, now))
	countRows := sqlmock.NewRows([]string{"column_id", "count"})
	for col, n := range taskCounts {
		countRows.AddRow(col, n)
	}
	f.mock.ExpectQuery(`GROUP BY column_id`).WithArgs(boardID).WillReturnRows(countRows)
}

func (f *projectorFixture) expectTaskComputation(boardID string, titles ...string) {
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "board_id", "column_id", "title", "description", "assignee_id", "position", "status", "created_at", "updated_at"})
	for i, title := range titles {
		rows.AddRow("t"+string(rune('1'+i)), boardID, "c1", title, "", nil, i, "open", now, now)
	}
	f.mock.ExpectQuery(`FROM tasks`).WithArgs(boardID).WillReturnRows(rows)
}

func TestBoardSummaryComputesOnMissThenServesFromCache(t *testing.T) {
	f := newProjectorFixture(t)
	ctx := context.Background()

	// One store round-trip queued; the second read must come from the
	// projection.
	f.expectBoardComputation("b1", "Roadmap", map[string]int{"c1": 3})

	first, err := f.projector.BoardSummary(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", first.Board.Name)
	assert.Len(t, first.Columns, 2)
	assert.Equal(t, 3, first.TaskCounts["c1"])

	second, err := f.projector.BoardSummary(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, first.Board.ID, second.Board.ID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTasksComputesOnMiss(t *testing.T) {
	f := newProjectorFixture(t)
	ctx := context.Background()

	f.expectTaskComputation("b1", "write docs", "ship it")

	list, err := f.projector.Tasks(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", list.BoardID)
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "write docs", list.Tasks[0].Title)

	_, err = f.projector.Tasks(ctx, "b1")
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRefreshBoardReplacesStaleProjection(t *testing.T) {
	f := newProjectorFixture(t)
	ctx := context.Background()

	f.expectBoardComputation("b1", "Roadmap", nil)
	_, err := f.projector.BoardSummary(ctx, "b1")
	require.NoError(t, err)

	f.expectBoardComputation("b1", "Roadmap v2", nil)
	require.NoError(t, f.projector.RefreshBoard(ctx, "b1"))

	summary, err := f.projector.BoardSummary(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap v2", summary.Board.Name)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRefreshBoardDropsProjectionForDeletedBoard(t *testing.T) {
	f := newProjectorFixture(t)
	ctx := context.Background()

	f.expectBoardComputation("b1", "Roadmap", nil)
	_, err := f.projector.BoardSummary(ctx, "b1")
	require.NoError(t, err)

	// The board is gone; the stale projection must be evicted, not kept.
	f.mock.ExpectQuery(`FROM boards`).WithArgs("b1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "description", "owner_id", "created_at", "updated_at"}))
	require.NoError(t, f.projector.RefreshBoard(ctx, "b1"))

	var summary BoardSummary
	assert.False(t, cache.GetJSON(ctx, f.cache, "board:b1:summary", &summary))
}

func TestProjectorRefreshesOnBusEvents(t *testing.T) {
	f := newProjectorFixture(t)
	ctx := context.Background()

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	bus := events.NewBus(time.Second, logger, nil)
	f.projector.Register(bus)

	f.expectBoardComputation("b1", "Roadmap", nil)
	bus.Publish(events.Event{Type: events.TypeBoardCreated, EntityID: "b1", BoardID: "b1"})
	require.NoError(t, bus.Close(ctx))

	var summary BoardSummary
	assert.True(t, cache.GetJSON(ctx, f.cache, "board:b1:summary", &summary))
	assert.Equal(t, "Roadmap", summary.Board.Name)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProjectorDropsProjectionsOnBoardDeleted(t *testing.T) {
	f := newProjectorFixture(t)
	ctx := context.Background()

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	bus := events.NewBus(time.Second, logger, nil)
	f.projector.Register(bus)

	f.expectBoardComputation("b1", "Roadmap", nil)
	_, err := f.projector.BoardSummary(ctx, "b1")
	require.NoError(t, err)
	f.expectTaskComputation("b1", "write docs")
	_, err = f.projector.Tasks(ctx, "b1")
	require.NoError(t, err)

	bus.Publish(events.Event{Type: events.TypeBoardDeleted, EntityID: "b1", BoardID: "b1"})
	require.NoError(t, bus.Close(ctx))

	var summary BoardSummary
	assert.False(t, cache.GetJSON(ctx, f.cache, "board:b1:summary", &summary))
	var list TaskList
	assert.False(t, cache.GetJSON(ctx, f.cache, "tasks:board:b1", &list))
}
