package boards

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/auth"
	"github.com/taskboardhq/taskboard/pkg/cache"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/store"
)

// Service is the board domain service. Writes go to the relational store,
// then invalidate cached projections, then publish an event; invalidation
// and events are best-effort and ordered after the committed write, leaving
// a stale window bounded by the cache TTL.
type Service struct {
	store  *store.Store
	cache  cache.Cache
	bus    *events.Bus
	audit  audit.Logger
	logger *observability.Logger
}

// NewService creates the board service. auditLogger may be nil.
func NewService(st *store.Store, c cache.Cache, bus *events.Bus, auditLogger audit.Logger, logger *observability.Logger) *Service {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &Service{
		store:  st,
		cache:  c,
		bus:    bus,
		audit:  auditLogger,
		logger: logger,
	}
}

func boardCachePrefix(boardID string) string {
	return "board:" + boardID
}

func taskCachePrefix(boardID string) string {
	return "tasks:board:" + boardID
}

// invalidateBoard drops every cached projection derived from a board
func (s *Service) invalidateBoard(ctx context.Context, boardID string) {
	s.cache.InvalidatePattern(ctx, boardCachePrefix(boardID)+"*")
	s.cache.InvalidatePattern(ctx, taskCachePrefix(boardID)+"*")
	s.cache.Del(ctx, "boards:all")
}

func (s *Service) auditMutation(ctx context.Context, ac *auth.Context, eventType audit.EventType, resourceType audit.ResourceType, resourceID string, metadata map[string]interface{}) {
	userID := ""
	if ac != nil {
		userID = ac.UserID
	}
	if err := s.audit.LogDataMutation(ctx, eventType, userID, resourceType, resourceID, metadata); err != nil {
		s.logger.WithError(err).Warn("failed to audit data mutation")
	}
}

// CreateBoard creates a board owned by the acting user
func (s *Service) CreateBoard(ctx context.Context, ac *auth.Context, name, description string) (*store.Board, error) {
	board := &store.Board{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		OwnerID:     ac.UserID,
	}
	if err := s.store.CreateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	s.cache.Del(ctx, "boards:all")
	s.auditMutation(ctx, ac, audit.EventTypeDataBoardCreate, audit.ResourceTypeBoard, board.ID, map[string]interface{}{"name": name})
	s.bus.Publish(events.Event{
		Type:     events.TypeBoardCreated,
		EntityID: board.ID,
		BoardID:  board.ID,
		UserID:   ac.UserID,
	})
	return board, nil
}

// GetBoard fetches a board by id
func (s *Service) GetBoard(ctx context.Context, id string) (*store.Board, error) {
	return s.store.GetBoard(ctx, id)
}

// ListBoards lists all boards
func (s *Service) ListBoards(ctx context.Context) ([]*store.Board, error) {
	return s.store.ListBoards(ctx)
}

// UpdateBoard renames or re-describes a board
func (s *Service) UpdateBoard(ctx context.Context, ac *auth.Context, board *store.Board) error {
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	s.invalidateBoard(ctx, board.ID)
	s.auditMutation(ctx, ac, audit.EventTypeDataBoardUpdate, audit.ResourceTypeBoard, board.ID, nil)
	s.bus.Publish(events.Event{
		Type:     events.TypeBoardUpdated,
		EntityID: board.ID,
		BoardID:  board.ID,
		UserID:   ac.UserID,
	})
	return nil
}

// DeleteBoard removes a board and its columns, tasks, and shares via
// cascading foreign keys
func (s *Service) DeleteBoard(ctx context.Context, ac *auth.Context, id string) error {
	if err := s.store.DeleteBoard(ctx, id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	s.invalidateBoard(ctx, id)
	s.auditMutation(ctx, ac, audit.EventTypeDataBoardDelete, audit.ResourceTypeBoard, id, nil)
	s.bus.Publish(events.Event{
		Type:     events.TypeBoardDeleted,
		EntityID: id,
		BoardID:  id,
		UserID:   ac.UserID,
	})
	return nil
}

// CreateColumn adds a lane to a board
func (s *Service) CreateColumn(ctx context.Context, ac *auth.Context, boardID, name string, position int) (*store.Column, error) {
	column := &store.Column{
		ID:       uuid.NewString(),
		BoardID:  boardID,
		Name:     name,
		Position: position,
	}
	if err := s.store.CreateColumn(ctx, column); err != nil {
		return nil, fmt.Errorf("create column: %w", err)
	}
	s.invalidateBoard(ctx, boardID)
	s.auditMutation(ctx, ac, audit.EventTypeDataColumnCreate, audit.ResourceTypeColumn, column.ID, nil)
	s.bus.Publish(events.Event{
		Type:     events.TypeColumnChanged,
		EntityID: column.ID,
		BoardID:  boardID,
		UserID:   ac.UserID,
	})
	return column, nil
}

// UpdateColumn renames or repositions a lane
func (s *Service) UpdateColumn(ctx context.Context, ac *auth.Context, column *store.Column) error {
	if err := s.store.UpdateColumn(ctx, column); err != nil {
		return fmt.Errorf("update column: %w", err)
	}
	s.invalidateBoard(ctx, column.BoardID)
	s.auditMutation(ctx, ac, audit.EventTypeDataColumnUpdate, audit.ResourceTypeColumn, column.ID, nil)
	s.bus.Publish(events.Event{
		Type:     events.TypeColumnChanged,
		EntityID: column.ID,
		BoardID:  column.BoardID,
		UserID:   ac.UserID,
	})
	return nil
}

// DeleteColumn removes a lane and its tasks
func (s *Service) DeleteColumn(ctx context.Context, ac *auth.Context, boardID, columnID string) error {
	if err := s.store.DeleteColumn(ctx, columnID); err != nil {
		return fmt.Errorf("delete column: %w", err)
	}
	s.invalidateBoard(ctx, boardID)
	s.auditMutation(ctx, ac, audit.EventTypeDataColumnDelete, audit.ResourceTypeColumn, columnID, nil)
	s.bus.Publish(events.Event{
		Type:     events.TypeColumnChanged,
		EntityID: columnID,
		BoardID:  boardID,
		UserID:   ac.UserID,
	})
	return nil
}

// CreateTask adds a card to a column
func (s *Service) CreateTask(ctx context.Context, ac *auth.Context, task *store.Task) (*store.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = store.TaskStatusOpen
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.cache.InvalidatePattern(ctx, taskCachePrefix(task.BoardID)+"*")
	s.auditMutation(ctx, ac, audit.EventTypeDataTaskCreate, audit.ResourceTypeTask, task.ID, map[string]interface{}{"board_id": task.BoardID})
	s.bus.Publish(events.Event{
		Type:     events.TypeTaskCreated,
		EntityID: task.ID,
		BoardID:  task.BoardID,
		UserID:   ac.UserID,
	})
	return task, nil
}

// UpdateTask edits, moves, or re-assigns a card
func (s *Service) UpdateTask(ctx context.Context, ac *auth.Context, task *store.Task) error {
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	s.cache.InvalidatePattern(ctx, taskCachePrefix(task.BoardID)+"*")
	s.auditMutation(ctx, ac, audit.EventTypeDataTaskUpdate, audit.ResourceTypeTask, task.ID, nil)
	s.bus.Publish(events.Event{
		Type:     events.TypeTaskUpdated,
		EntityID: task.ID,
		BoardID:  task.BoardID,
		UserID:   ac.UserID,
	})
	return nil
}

// DeleteTask removes a card
func (s *Service) DeleteTask(ctx context.Context, ac *auth.Context, boardID, taskID string) error {
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.cache.InvalidatePattern(ctx, taskCachePrefix(boardID)+"*")
	s.auditMutation(ctx, ac, audit.EventTypeDataTaskDelete, audit.ResourceTypeTask, taskID, nil)
	s.bus.Publish(events.Event{
		Type:     events.TypeTaskDeleted,
		EntityID: taskID,
		BoardID:  boardID,
		UserID:   ac.UserID,
		At:       time.Now(),
	})
	return nil
}
