package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all schema migrations in order
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users, profiles, permissions",
			SQL: `
				CREATE TABLE IF NOT EXISTS profiles (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL UNIQUE,
					description TEXT NOT NULL DEFAULT '',
					is_default BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					password_hash VARCHAR(255) NOT NULL DEFAULT '',
					profile_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS permissions (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(255) NOT NULL UNIQUE,
					category VARCHAR(100) NOT NULL,
					description TEXT NOT NULL DEFAULT ''
				);

				CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
				CREATE INDEX IF NOT EXISTS idx_users_profile_id ON users(profile_id);
			`,
		},
		{
			Version:     2,
			Description: "Create profile_permissions join table",
			SQL: `
				CREATE TABLE IF NOT EXISTS profile_permissions (
					profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					permission_id UUID NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
					PRIMARY KEY (profile_id, permission_id)
				);

				CREATE INDEX IF NOT EXISTS idx_profile_permissions_permission ON profile_permissions(permission_id);
			`,
		},
		{
			Version:     3,
			Description: "Create teams, user_teams, team_profiles",
			SQL: `
				CREATE TABLE IF NOT EXISTS teams (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL UNIQUE,
					description TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS user_teams (
					id UUID PRIMARY KEY,
					user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					role VARCHAR(50) NOT NULL DEFAULT 'member',
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE (user_id, team_id)
				);

				CREATE TABLE IF NOT EXISTS team_profiles (
					team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					PRIMARY KEY (team_id, profile_id)
				);

				CREATE INDEX IF NOT EXISTS idx_user_teams_user ON user_teams(user_id);
				CREATE INDEX IF NOT EXISTS idx_user_teams_team ON user_teams(team_id);
				CREATE INDEX IF NOT EXISTS idx_team_profiles_profile ON team_profiles(profile_id);
			`,
		},
		{
			Version:     4,
			Description: "Create boards, columns, tasks",
			SQL: `
				CREATE TABLE IF NOT EXISTS boards (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS columns (
					id UUID PRIMARY KEY,
					board_id UUID NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
					name VARCHAR(255) NOT NULL,
					position INT NOT NULL DEFAULT 0,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS tasks (
					id UUID PRIMARY KEY,
					board_id UUID NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
					column_id UUID NOT NULL REFERENCES columns(id) ON DELETE CASCADE,
					title VARCHAR(500) NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					assignee_id UUID REFERENCES users(id) ON DELETE SET NULL,
					position INT NOT NULL DEFAULT 0,
					status VARCHAR(20) NOT NULL DEFAULT 'open',
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_columns_board ON columns(board_id);
				CREATE INDEX IF NOT EXISTS idx_tasks_board ON tasks(board_id);
				CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks(column_id);
				CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);
			`,
		},
		{
			Version:     5,
			Description: "Create board_shares",
			SQL: `
				CREATE TABLE IF NOT EXISTS board_shares (
					id UUID PRIMARY KEY,
					board_id UUID NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
					user_id UUID REFERENCES users(id) ON DELETE CASCADE,
					team_id UUID REFERENCES teams(id) ON DELETE CASCADE,
					permission VARCHAR(50) NOT NULL,
					granted_by UUID REFERENCES users(id) ON DELETE SET NULL,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					CHECK ((user_id IS NULL) != (team_id IS NULL))
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_board_shares_target
					ON board_shares(board_id, COALESCE(user_id::text, ''), COALESCE(team_id::text, ''));
				CREATE INDEX IF NOT EXISTS idx_board_shares_board ON board_shares(board_id);
			`,
		},
	}
}

// RunMigrations applies all pending schema migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	rows.Close()

	for _, migration := range GetMigrations() {
		if applied[migration.Version] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
