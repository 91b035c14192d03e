package api

import (
	"net/http"

	"github.com/taskboardhq/taskboard/pkg/authz"
	"github.com/taskboardhq/taskboard/pkg/boards"
	"github.com/taskboardhq/taskboard/pkg/httputil"
	"github.com/taskboardhq/taskboard/pkg/middleware"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type boardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type columnRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type taskRequest struct {
	ColumnID    string  `json:"column_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	Position    int     `json:"position"`
	Status      string  `json:"status,omitempty"`
}

type shareRequest struct {
	UserID *string `json:"user_id,omitempty"`
	TeamID *string `json:"team_id,omitempty"`
	Level  string  `json:"level"`
}

// requireBoardAccess combines the global permission axis with the
// board-share axis for one request. Returns false after writing the denial.
func (s *Server) requireBoardAccess(w http.ResponseWriter, r *http.Request, boardID, globalPerm, minLevel string, policy boards.AccessPolicy) bool {
	ac := middleware.GetAuthContext(r)
	global := s.enforcer.HasPermission(ac, globalPerm)
	if err := s.boards.CheckBoardAccess(r.Context(), ac, boardID, global, minLevel, policy); err != nil {
		authz.WriteError(w, err)
		return false
	}
	return true
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request) {
	list, err := s.boards.ListBoards(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func (s *Server) createBoard(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	board, err := s.boards.CreateBoard(r.Context(), middleware.GetAuthContext(r), req.Name, req.Description)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, board)
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "View Boards", boards.ShareLevelView, boards.PolicyGlobalOrShare) {
		return
	}

	board, err := s.boards.GetBoard(r.Context(), id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "board not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, board)
}

func (s *Server) getBoardSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "View Boards", boards.ShareLevelView, boards.PolicyGlobalOrShare) {
		return
	}

	summary, err := s.projector.BoardSummary(r.Context(), id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "board not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, summary)
}

func (s *Server) updateBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Edit Boards", boards.ShareLevelEdit, boards.PolicyGlobalOrShare) {
		return
	}

	var req boardRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	board, err := s.boards.GetBoard(r.Context(), id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "board not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if req.Name != "" {
		board.Name = req.Name
	}
	board.Description = req.Description
	if err := s.boards.UpdateBoard(r.Context(), middleware.GetAuthContext(r), board); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, board)
}

func (s *Server) deleteBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Delete Boards", boards.ShareLevelAdmin, boards.PolicyGlobalOrShare) {
		return
	}

	if err := s.boards.DeleteBoard(r.Context(), middleware.GetAuthContext(r), id); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) createColumn(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Create Columns", boards.ShareLevelEdit, boards.PolicyGlobalOrShare) {
		return
	}

	var req columnRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	column, err := s.boards.CreateColumn(r.Context(), middleware.GetAuthContext(r), id, req.Name, req.Position)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, column)
}

func (s *Server) updateColumn(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	columnID, ok := httputil.ParsePathStringOrError(w, r, "columnId")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Edit Columns", boards.ShareLevelEdit, boards.PolicyGlobalOrShare) {
		return
	}

	var req columnRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	column := &store.Column{ID: columnID, BoardID: id, Name: req.Name, Position: req.Position}
	if err := s.boards.UpdateColumn(r.Context(), middleware.GetAuthContext(r), column); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, column)
}

func (s *Server) deleteColumn(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	columnID, ok := httputil.ParsePathStringOrError(w, r, "columnId")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Delete Columns", boards.ShareLevelEdit, boards.PolicyGlobalOrShare) {
		return
	}

	if err := s.boards.DeleteColumn(r.Context(), middleware.GetAuthContext(r), id, columnID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "List Tasks", boards.ShareLevelView, boards.PolicyGlobalOrShare) {
		return
	}

	list, err := s.projector.Tasks(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Create Tasks", boards.ShareLevelEdit, boards.PolicyGlobalOrShare) {
		return
	}

	var req taskRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Title == "" || req.ColumnID == "" {
		httputil.WriteBadRequest(w, "title and column_id are required")
		return
	}

	task := &store.Task{
		BoardID:     id,
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Position:    req.Position,
		Status:      store.TaskStatus(req.Status),
	}
	created, err := s.boards.CreateTask(r.Context(), middleware.GetAuthContext(r), task)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, created)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	taskID, ok := httputil.ParsePathStringOrError(w, r, "taskId")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Edit Tasks", boards.ShareLevelEdit, boards.PolicyGlobalOrShare) {
		return
	}

	var req taskRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	task, err := s.store.GetTask(r.Context(), taskID)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "task not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.ColumnID != "" {
		task.ColumnID = req.ColumnID
	}
	task.Description = req.Description
	task.AssigneeID = req.AssigneeID
	task.Position = req.Position
	if req.Status != "" {
		task.Status = store.TaskStatus(req.Status)
	}

	if err := s.boards.UpdateTask(r.Context(), middleware.GetAuthContext(r), task); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	taskID, ok := httputil.ParsePathStringOrError(w, r, "taskId")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Delete Tasks", boards.ShareLevelEdit, boards.PolicyGlobalOrShare) {
		return
	}

	if err := s.boards.DeleteTask(r.Context(), middleware.GetAuthContext(r), id, taskID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) listShares(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Manage Boards", boards.ShareLevelAdmin, boards.PolicyGlobalOrShare) {
		return
	}

	shares, err := s.boards.ListShares(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, shares)
}

func (s *Server) createShare(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Manage Boards", boards.ShareLevelAdmin, boards.PolicyGlobalOrShare) {
		return
	}

	var req shareRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if (req.UserID == nil) == (req.TeamID == nil) {
		httputil.WriteBadRequest(w, "exactly one of user_id and team_id is required")
		return
	}

	share, err := s.boards.ShareBoard(r.Context(), middleware.GetAuthContext(r), id, req.UserID, req.TeamID, req.Level)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	httputil.WriteCreated(w, share)
}

func (s *Server) deleteShare(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	shareID, ok := httputil.ParsePathStringOrError(w, r, "shareId")
	if !ok {
		return
	}
	if !s.requireBoardAccess(w, r, id, "Manage Boards", boards.ShareLevelAdmin, boards.PolicyGlobalOrShare) {
		return
	}

	if err := s.boards.RevokeShare(r.Context(), middleware.GetAuthContext(r), id, shareID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
