package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateTeam creates a new team
func (s *Store) CreateTeam(ctx context.Context, team *Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}

	query := `
		INSERT INTO teams (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query, team.ID, team.Name, team.Description, now, now)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	team.CreatedAt = now
	team.UpdatedAt = now
	return nil
}

// GetTeam retrieves a team by ID
func (s *Store) GetTeam(ctx context.Context, id string) (*Team, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	var t Team
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

// ListTeams lists all teams
func (s *Store) ListTeams(ctx context.Context) ([]*Team, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM teams
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

// UpdateTeam updates a team's name and description
func (s *Store) UpdateTeam(ctx context.Context, team *Team) error {
	query := `
		UPDATE teams
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	now := time.Now()
	res, err := s.db.ExecContext(ctx, query, team.ID, team.Name, team.Description, now)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("team not found: %s", team.ID)
	}

	team.UpdatedAt = now
	return nil
}

// DeleteTeam removes a team; memberships and profile links cascade
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("team not found: %s", id)
	}
	return nil
}

// AddTeamMember adds a user to a team with a membership role. Adding an
// existing member is a no-op that keeps the original role and join time.
func (s *Store) AddTeamMember(ctx context.Context, teamID, userID, role string) error {
	if role == "" {
		role = "member"
	}

	query := `
		INSERT INTO user_teams (id, user_id, team_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, team_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), userID, teamID, role, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

// RemoveTeamMember removes a user from a team
func (s *Store) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	query := `DELETE FROM user_teams WHERE team_id = $1 AND user_id = $2`
	_, err := s.db.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return nil
}

// GetUserTeams returns a user's team memberships in join order
func (s *Store) GetUserTeams(ctx context.Context, userID string) ([]TeamMembership, error) {
	query := `
		SELECT ut.user_id, ut.team_id, t.name, ut.role, ut.created_at
		FROM user_teams ut
		JOIN teams t ON t.id = ut.team_id
		WHERE ut.user_id = $1
		ORDER BY ut.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user teams: %w", err)
	}
	defer rows.Close()

	var memberships []TeamMembership
	for rows.Next() {
		var m TeamMembership
		if err := rows.Scan(&m.UserID, &m.TeamID, &m.TeamName, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// ListTeamMembers returns the memberships of a team
func (s *Store) ListTeamMembers(ctx context.Context, teamID string) ([]TeamMembership, error) {
	query := `
		SELECT ut.user_id, ut.team_id, t.name, ut.role, ut.created_at
		FROM user_teams ut
		JOIN teams t ON t.id = ut.team_id
		WHERE ut.team_id = $1
		ORDER BY ut.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var memberships []TeamMembership
	for rows.Next() {
		var m TeamMembership
		if err := rows.Scan(&m.UserID, &m.TeamID, &m.TeamName, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// AssignTeamProfile grants every permission of a profile to every member of
// a team. Duplicate assignments are a no-op.
func (s *Store) AssignTeamProfile(ctx context.Context, teamID, profileID string) error {
	query := `
		INSERT INTO team_profiles (team_id, profile_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id, profile_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, teamID, profileID)
	if err != nil {
		return fmt.Errorf("failed to assign team profile: %w", err)
	}
	return nil
}

// UnassignTeamProfile removes a profile grant from a team
func (s *Store) UnassignTeamProfile(ctx context.Context, teamID, profileID string) error {
	query := `DELETE FROM team_profiles WHERE team_id = $1 AND profile_id = $2`
	_, err := s.db.ExecContext(ctx, query, teamID, profileID)
	if err != nil {
		return fmt.Errorf("failed to unassign team profile: %w", err)
	}
	return nil
}

// GetTeamProfiles returns the profiles assigned to a team
func (s *Store) GetTeamProfiles(ctx context.Context, teamID string) ([]*Profile, error) {
	query := `
		SELECT p.id, p.name, p.description, p.is_default, p.created_at, p.updated_at
		FROM profiles p
		JOIN team_profiles tp ON tp.profile_id = p.id
		WHERE tp.team_id = $1
		ORDER BY p.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// GetUserTeamPermissions returns the distinct permissions a user holds
// through team-profile assignments on every team they belong to
func (s *Store) GetUserTeamPermissions(ctx context.Context, userID string) ([]Permission, error) {
	query := `
		SELECT DISTINCT p.id, p.name, p.category, p.description
		FROM permissions p
		JOIN profile_permissions pp ON pp.permission_id = p.id
		JOIN team_profiles tp ON tp.profile_id = pp.profile_id
		JOIN user_teams ut ON ut.team_id = tp.team_id
		WHERE ut.user_id = $1
		ORDER BY p.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user team permissions: %w", err)
	}
	defer rows.Close()

	return scanPermissions(rows)
}
