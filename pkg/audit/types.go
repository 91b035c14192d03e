package audit

import (
	"time"
)

// EventType categorizes an audit event
type EventType string

const (
	// Authentication events
	EventTypeAuthLogin       EventType = "auth.login"
	EventTypeAuthLoginFailed EventType = "auth.login_failed"
	EventTypeAuthLogout      EventType = "auth.logout"
	EventTypeAuthRefresh     EventType = "auth.refresh"

	// Authorization events
	EventTypeAuthzAccessDenied     EventType = "authz.access_denied"
	EventTypeAuthzPermissionGrant  EventType = "authz.permission_grant"
	EventTypeAuthzPermissionRevoke EventType = "authz.permission_revoke"
	EventTypeAuthzProfileAssign    EventType = "authz.profile_assign"
	EventTypeAuthzShareGrant       EventType = "authz.share_grant"
	EventTypeAuthzShareRevoke      EventType = "authz.share_revoke"

	// Data mutation events
	EventTypeDataBoardCreate  EventType = "data.board_create"
	EventTypeDataBoardUpdate  EventType = "data.board_update"
	EventTypeDataBoardDelete  EventType = "data.board_delete"
	EventTypeDataColumnCreate EventType = "data.column_create"
	EventTypeDataColumnUpdate EventType = "data.column_update"
	EventTypeDataColumnDelete EventType = "data.column_delete"
	EventTypeDataTaskCreate   EventType = "data.task_create"
	EventTypeDataTaskUpdate   EventType = "data.task_update"
	EventTypeDataTaskDelete   EventType = "data.task_delete"

	// Admin events
	EventTypeAdminUserCreate    EventType = "admin.user_create"
	EventTypeAdminUserUpdate    EventType = "admin.user_update"
	EventTypeAdminProfileCreate EventType = "admin.profile_create"
	EventTypeAdminProfileUpdate EventType = "admin.profile_update"
	EventTypeAdminProfileDelete EventType = "admin.profile_delete"
	EventTypeAdminTeamCreate    EventType = "admin.team_create"
	EventTypeAdminTeamUpdate    EventType = "admin.team_update"
	EventTypeAdminTeamDelete    EventType = "admin.team_delete"
	EventTypeAdminMemberAdd     EventType = "admin.team_member_add"
	EventTypeAdminMemberRemove  EventType = "admin.team_member_remove"
	EventTypeAdminRegistrySync  EventType = "admin.registry_sync"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// ResourceType represents the type of resource being acted on
type ResourceType string

const (
	ResourceTypeBoard      ResourceType = "board"
	ResourceTypeColumn     ResourceType = "column"
	ResourceTypeTask       ResourceType = "task"
	ResourceTypeUser       ResourceType = "user"
	ResourceTypeProfile    ResourceType = "profile"
	ResourceTypeTeam       ResourceType = "team"
	ResourceTypeShare      ResourceType = "share"
	ResourceTypePermission ResourceType = "permission"
)

// Event is a single audit log entry
type Event struct {
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor
	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`

	// Resource
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`

	// Request context
	IPAddress string `json:"ip_address,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`

	// Details
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
