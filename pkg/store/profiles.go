package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateProfile creates a new profile
func (s *Store) CreateProfile(ctx context.Context, profile *Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	query := `
		INSERT INTO profiles (id, name, description, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.Name,
		profile.Description,
		profile.IsDefault,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	profile.CreatedAt = now
	profile.UpdatedAt = now
	return nil
}

// GetProfile retrieves a profile by ID
func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, name, description, is_default, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p Profile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// ListProfiles lists all profiles
func (s *Store) ListProfiles(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT id, name, description, is_default, created_at, updated_at
		FROM profiles
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
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

// UpdateProfile updates a profile's name, description, and default flag
func (s *Store) UpdateProfile(ctx context.Context, profile *Profile) error {
	query := `
		UPDATE profiles
		SET name = $2, description = $3, is_default = $4, updated_at = $5
		WHERE id = $1
	`

	now := time.Now()
	res, err := s.db.ExecContext(ctx, query,
		profile.ID, profile.Name, profile.Description, profile.IsDefault, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile not found: %s", profile.ID)
	}

	profile.UpdatedAt = now
	return nil
}

// DeleteProfile removes a profile; its permission links cascade
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile not found: %s", id)
	}
	return nil
}

// GrantPermission links a permission to a profile by permission name.
// Duplicate grants are a no-op (unique pair constraint).
func (s *Store) GrantPermission(ctx context.Context, profileID, permissionName string) error {
	query := `
		INSERT INTO profile_permissions (profile_id, permission_id)
		SELECT $1, p.id FROM permissions p WHERE p.name = $2
		ON CONFLICT (profile_id, permission_id) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query, profileID, permissionName)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}
	// Zero rows means either a duplicate grant (fine) or an unknown
	// permission name; the caller validates names against the registry
	// before calling, so both are safe to ignore here.
	_ = res
	return nil
}

// RevokePermission removes a permission link from a profile
func (s *Store) RevokePermission(ctx context.Context, profileID, permissionName string) error {
	query := `
		DELETE FROM profile_permissions
		WHERE profile_id = $1
		  AND permission_id = (SELECT id FROM permissions WHERE name = $2)
	`

	_, err := s.db.ExecContext(ctx, query, profileID, permissionName)
	if err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}
	return nil
}

// GetProfilePermissions returns the permissions linked to a profile
func (s *Store) GetProfilePermissions(ctx context.Context, profileID string) ([]Permission, error) {
	query := `
		SELECT p.id, p.name, p.category, p.description
		FROM permissions p
		JOIN profile_permissions pp ON pp.permission_id = p.id
		WHERE pp.profile_id = $1
		ORDER BY p.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile permissions: %w", err)
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// EnsurePermission inserts a permission row if absent (used by tests and
// seed tooling; the registry syncer is the normal write path)
func (s *Store) EnsurePermission(ctx context.Context, perm *Permission) error {
	if perm.ID == "" {
		perm.ID = uuid.NewString()
	}
	query := `
		INSERT INTO permissions (id, name, category, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, perm.ID, perm.Name, perm.Category, perm.Description)
	if err != nil {
		return fmt.Errorf("failed to ensure permission: %w", err)
	}
	return nil
}

func scanPermissions(rows *sql.Rows) ([]Permission, error) {
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
