package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateBoardShare grants board-scoped access to a user or a team. A second
// grant for the same (board, user) or (board, team) pair replaces the
// permission level.
func (s *Store) CreateBoardShare(ctx context.Context, share *BoardShare) error {
	if share.ID == "" {
		share.ID = uuid.NewString()
	}
	if (share.UserID == nil) == (share.TeamID == nil) {
		return fmt.Errorf("board share must target exactly one of user or team")
	}

	query := `
		INSERT INTO board_shares (id, board_id, user_id, team_id, permission, granted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (board_id, COALESCE(user_id::text, ''), COALESCE(team_id::text, ''))
		DO UPDATE SET permission = EXCLUDED.permission, granted_by = EXCLUDED.granted_by
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		share.ID, share.BoardID, share.UserID, share.TeamID,
		share.Permission, share.GrantedBy, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create board share: %w", err)
	}

	share.CreatedAt = now
	return nil
}

// DeleteBoardShare removes a share by ID
func (s *Store) DeleteBoardShare(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM board_shares WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board share: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("board share not found: %s", id)
	}
	return nil
}

// ListBoardShares lists all shares on a board
func (s *Store) ListBoardShares(ctx context.Context, boardID string) ([]*BoardShare, error) {
	query := `
		SELECT id, board_id, user_id, team_id, permission, granted_by, created_at
		FROM board_shares
		WHERE board_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list board shares: %w", err)
	}
	defer rows.Close()

	var shares []*BoardShare
	for rows.Next() {
		share, err := scanBoardShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

// GetUserBoardShare returns the direct user-to-board share, or ErrNotFound
func (s *Store) GetUserBoardShare(ctx context.Context, userID, boardID string) (*BoardShare, error) {
	query := `
		SELECT id, board_id, user_id, team_id, permission, granted_by, created_at
		FROM board_shares
		WHERE board_id = $1 AND user_id = $2
	`
	return scanBoardShareRow(s.db.QueryRowContext(ctx, query, boardID, userID))
}

// GetTeamBoardShares returns board shares granted to any team the user
// belongs to, ordered by the user's membership join time. The resolver takes
// the first row; ordering by join time makes that choice stable, though
// which team ought to win when levels conflict is still an open product
// question.
func (s *Store) GetTeamBoardShares(ctx context.Context, userID, boardID string) ([]*BoardShare, error) {
	query := `
		SELECT bs.id, bs.board_id, bs.user_id, bs.team_id, bs.permission, bs.granted_by, bs.created_at
		FROM board_shares bs
		JOIN user_teams ut ON ut.team_id = bs.team_id
		WHERE bs.board_id = $1 AND ut.user_id = $2
		ORDER BY ut.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, boardID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team board shares: %w", err)
	}
	defer rows.Close()

	var shares []*BoardShare
	for rows.Next() {
		share, err := scanBoardShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

func scanBoardShare(rows *sql.Rows) (*BoardShare, error) {
	var share BoardShare
	var userID, teamID, grantedBy sql.NullString

	err := rows.Scan(
		&share.ID, &share.BoardID, &userID, &teamID,
		&share.Permission, &grantedBy, &share.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan board share: %w", err)
	}

	applyShareNullables(&share, userID, teamID, grantedBy)
	return &share, nil
}

func scanBoardShareRow(row *sql.Row) (*BoardShare, error) {
	var share BoardShare
	var userID, teamID, grantedBy sql.NullString

	err := row.Scan(
		&share.ID, &share.BoardID, &userID, &teamID,
		&share.Permission, &grantedBy, &share.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan board share: %w", err)
	}

	applyShareNullables(&share, userID, teamID, grantedBy)
	return &share, nil
}

func applyShareNullables(share *BoardShare, userID, teamID, grantedBy sql.NullString) {
	if userID.Valid {
		id := userID.String
		share.UserID = &id
	}
	if teamID.Valid {
		id := teamID.String
		share.TeamID = &id
	}
	if grantedBy.Valid {
		id := grantedBy.String
		share.GrantedBy = &id
	}
}
