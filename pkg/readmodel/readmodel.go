package readmodel

import (
	"context"
	"time"

	"github.com/taskboardhq/taskboard/pkg/cache"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/store"
)

const projectionTTL = 10 * time.Minute

// BoardSummary is the denormalized board projection used by listing views
type BoardSummary struct {
	Board       *store.Board    `json:"board"`
	Columns     []*store.Column `json:"columns"`
	TaskCounts  map[string]int  `json:"task_counts"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// TaskList is the denormalized task listing for one board
type TaskList struct {
	BoardID     string        `json:"board_id"`
	Tasks       []*store.Task `json:"tasks"`
	RefreshedAt time.Time     `json:"refreshed_at"`
}

// Projector maintains cached read-side projections of boards and tasks.
// Reads prefer the projection and fall back to relational queries; writes
// elsewhere publish events that trigger a refresh here. Projections are
// best-effort: a failed refresh leaves the fallback path correct.
type Projector struct {
	store  *store.Store
	cache  cache.Cache
	logger *observability.Logger
}

// NewProjector creates a projector over the given store and cache
func NewProjector(st *store.Store, c cache.Cache, logger *observability.Logger) *Projector {
	return &Projector{store: st, cache: c, logger: logger}
}

// Register subscribes the projector's refresh handlers on the bus
func (p *Projector) Register(bus *events.Bus) {
	boardRefresh := func(ctx context.Context, event events.Event) error {
		if event.BoardID == "" {
			return nil
		}
		if event.Type == events.TypeBoardDeleted {
			p.cache.Del(ctx, summaryKey(event.BoardID))
			p.cache.Del(ctx, taskListKey(event.BoardID))
			return nil
		}
		return p.RefreshBoard(ctx, event.BoardID)
	}

	for _, t := range []events.Type{
		events.TypeBoardCreated, events.TypeBoardUpdated, events.TypeBoardDeleted,
		events.TypeColumnChanged,
	} {
		bus.Subscribe(t, boardRefresh)
	}

	taskRefresh := func(ctx context.Context, event events.Event) error {
		if event.BoardID == "" {
			return nil
		}
		if err := p.RefreshTasks(ctx, event.BoardID); err != nil {
			return err
		}
		// Task mutations also move the per-column counts on the summary.
		return p.RefreshBoard(ctx, event.BoardID)
	}

	for _, t := range []events.Type{
		events.TypeTaskCreated, events.TypeTaskUpdated, events.TypeTaskDeleted,
	} {
		bus.Subscribe(t, taskRefresh)
	}
}

func summaryKey(boardID string) string {
	return "board:" + boardID + ":summary"
}

func taskListKey(boardID string) string {
	return "tasks:board:" + boardID
}

// BoardSummary returns the cached projection for a board, recomputing from
// the store on a miss
func (p *Projector) BoardSummary(ctx context.Context, boardID string) (*BoardSummary, error) {
	var summary BoardSummary
	if cache.GetJSON(ctx, p.cache, summaryKey(boardID), &summary) {
		return &summary, nil
	}
	return p.computeBoard(ctx, boardID, true)
}

// Tasks returns the cached task listing for a board, recomputing from the
// store on a miss
func (p *Projector) Tasks(ctx context.Context, boardID string) (*TaskList, error) {
	var list TaskList
	if cache.GetJSON(ctx, p.cache, taskListKey(boardID), &list) {
		return &list, nil
	}
	return p.computeTasks(ctx, boardID, true)
}

// RefreshBoard recomputes and caches the board summary projection
func (p *Projector) RefreshBoard(ctx context.Context, boardID string) error {
	_, err := p.computeBoard(ctx, boardID, true)
	if err == store.ErrNotFound {
		p.cache.Del(ctx, summaryKey(boardID))
		return nil
	}
	return err
}

// RefreshTasks recomputes and caches the task listing projection
func (p *Projector) RefreshTasks(ctx context.Context, boardID string) error {
	_, err := p.computeTasks(ctx, boardID, true)
	return err
}

func (p *Projector) computeBoard(ctx context.Context, boardID string, populate bool) (*BoardSummary, error) {
	board, err := p.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	columns, err := p.store.ListColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}
	counts, err := p.store.CountTasksByColumn(ctx, boardID)
	if err != nil {
		return nil, err
	}

	summary := &BoardSummary{
		Board:       board,
		Columns:     columns,
		TaskCounts:  counts,
		RefreshedAt: time.Now().UTC(),
	}
	if populate {
		cache.SetJSON(ctx, p.cache, summaryKey(boardID), summary, projectionTTL)
	}
	return summary, nil
}

func (p *Projector) computeTasks(ctx context.Context, boardID string, populate bool) (*TaskList, error) {
	tasks, err := p.store.ListTasks(ctx, boardID)
	if err != nil {
		return nil, err
	}

	list := &TaskList{
		BoardID:     boardID,
		Tasks:       tasks,
		RefreshedAt: time.Now().UTC(),
	}
	if populate {
		cache.SetJSON(ctx, p.cache, taskListKey(boardID), list, projectionTTL)
	}
	return list, nil
}
