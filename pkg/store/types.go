package store

import (
	"time"
)

// UserStatus represents a user's lifecycle state
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is an account identity. ProfileID is the direct profile assignment;
// permissions may also arrive through team-profile grants.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	ProfileID    *string    `json:"profile_id,omitempty"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Profile is a named permission bundle
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is a persisted copy of a registry catalog entry
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Team is a named group of users
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamMembership is a user's membership in a team, with metadata. The role
// is informational ownership metadata ("member"/"lead"/"admin"), distinct
// from permission grants.
type TeamMembership struct {
	UserID    string    `json:"user_id"`
	TeamID    string    `json:"team_id"`
	TeamName  string    `json:"team_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Board is a Kanban board
type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Column is an ordered lane on a board
type Column struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskStatus represents a task's lifecycle state
type TaskStatus string

const (
	TaskStatusOpen     TaskStatus = "open"
	TaskStatusDone     TaskStatus = "done"
	TaskStatusArchived TaskStatus = "archived"
)

// Task is a card on a board column
type Task struct {
	ID          string     `json:"id"`
	BoardID     string     `json:"board_id"`
	ColumnID    string     `json:"column_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	Position    int        `json:"position"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BoardShare is a board-scoped access grant to a user or a team, independent
// of the global profile/permission graph. Exactly one of UserID or TeamID is
// set.
type BoardShare struct {
	ID         string    `json:"id"`
	BoardID    string    `json:"board_id"`
	UserID     *string   `json:"user_id,omitempty"`
	TeamID     *string   `json:"team_id,omitempty"`
	Permission string    `json:"permission"` // e.g. "view", "edit", "admin"
	GrantedBy  *string   `json:"granted_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
