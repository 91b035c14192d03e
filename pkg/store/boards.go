package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateBoard creates a new board
func (s *Store) CreateBoard(ctx context.Context, board *Board) error {
	if board.ID == "" {
		board.ID = uuid.NewString()
	}

	query := `
		INSERT INTO boards (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		board.ID, board.Name, board.Description, board.OwnerID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	board.CreatedAt = now
	board.UpdatedAt = now
	return nil
}

// GetBoard retrieves a board by ID
func (s *Store) GetBoard(ctx context.Context, id string) (*Board, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM boards
		WHERE id = $1
	`

	var b Board
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Description, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	return &b, nil
}

// ListBoards lists all boards
func (s *Store) ListBoards(ctx context.Context) ([]*Board, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM boards
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []*Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, &b)
	}
	return boards, rows.Err()
}

// UpdateBoard updates a board's name and description
func (s *Store) UpdateBoard(ctx context.Context, board *Board) error {
	query := `
		UPDATE boards
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	now := time.Now()
	res, err := s.db.ExecContext(ctx, query, board.ID, board.Name, board.Description, now)
	if err != nil {
		return fmt.Errorf("failed to update board: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("board not found: %s", board.ID)
	}

	board.UpdatedAt = now
	return nil
}

// DeleteBoard removes a board; columns, tasks, and shares cascade
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("board not found: %s", id)
	}
	return nil
}

// CreateColumn creates a column on a board
func (s *Store) CreateColumn(ctx context.Context, column *Column) error {
	if column.ID == "" {
		column.ID = uuid.NewString()
	}

	query := `
		INSERT INTO columns (id, board_id, name, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		column.ID, column.BoardID, column.Name, column.Position, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create column: %w", err)
	}

	column.CreatedAt = now
	column.UpdatedAt = now
	return nil
}

// ListColumns lists a board's columns in position order
func (s *Store) ListColumns(ctx context.Context, boardID string) ([]*Column, error) {
	query := `
		SELECT id, board_id, name, position, created_at, updated_at
		FROM columns
		WHERE board_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer rows.Close()

	var columns []*Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, &c)
	}
	return columns, rows.Err()
}

// UpdateColumn updates a column's name and position
func (s *Store) UpdateColumn(ctx context.Context, column *Column) error {
	query := `
		UPDATE columns
		SET name = $2, position = $3, updated_at = $4
		WHERE id = $1
	`

	now := time.Now()
	res, err := s.db.ExecContext(ctx, query, column.ID, column.Name, column.Position, now)
	if err != nil {
		return fmt.Errorf("failed to update column: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("column not found: %s", column.ID)
	}

	column.UpdatedAt = now
	return nil
}

// DeleteColumn removes a column; its tasks cascade
func (s *Store) DeleteColumn(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM columns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("column not found: %s", id)
	}
	return nil
}

// CreateTask creates a task on a board column
func (s *Store) CreateTask(ctx context.Context, task *Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = TaskStatusOpen
	}

	query := `
		INSERT INTO tasks (id, board_id, column_id, title, description, assignee_id, position, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.BoardID, task.ColumnID, task.Title, task.Description,
		task.AssigneeID, task.Position, task.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// GetTask retrieves a task by ID
func (s *Store) GetTask(ctx context.Context, id string) (*Task, error) {
	query := `
		SELECT id, board_id, column_id, title, description, assignee_id, position, status, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	var t Task
	var assignee sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description,
		&assignee, &t.Position, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if assignee.Valid {
		id := assignee.String
		t.AssigneeID = &id
	}
	return &t, nil
}

// ListTasks lists a board's tasks in column and position order
func (s *Store) ListTasks(ctx context.Context, boardID string) ([]*Task, error) {
	query := `
		SELECT id, board_id, column_id, title, description, assignee_id, position, status, created_at, updated_at
		FROM tasks
		WHERE board_id = $1
		ORDER BY column_id ASC, position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		var t Task
		var assignee sql.NullString
		if err := rows.Scan(
			&t.ID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description,
			&assignee, &t.Position, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if assignee.Valid {
			id := assignee.String
			t.AssigneeID = &id
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// UpdateTask updates a task's content, placement, assignee, and status
func (s *Store) UpdateTask(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET column_id = $2, title = $3, description = $4, assignee_id = $5, position = $6, status = $7, updated_at = $8
		WHERE id = $1
	`

	now := time.Now()
	res, err := s.db.ExecContext(ctx, query,
		task.ID, task.ColumnID, task.Title, task.Description,
		task.AssigneeID, task.Position, task.Status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}

	task.UpdatedAt = now
	return nil
}

// DeleteTask removes a task
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// CountTasksByColumn returns task counts per column for a board
func (s *Store) CountTasksByColumn(ctx context.Context, boardID string) (map[string]int, error) {
	query := `
		SELECT column_id, COUNT(*)
		FROM tasks
		WHERE board_id = $1
		GROUP BY column_id
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var columnID string
		var count int
		if err := rows.Scan(&columnID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[columnID] = count
	}
	return counts, rows.Err()
}
