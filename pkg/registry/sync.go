package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/taskboardhq/taskboard/pkg/observability"
)

// Syncer reconciles the persisted permission rows with the registry. The
// registry is the source of truth: missing rows are inserted, descriptions
// and categories are refreshed, and rows not present in the catalog are
// removed. Runs at startup, on demand via the admin API, and on a cron
// schedule.
type Syncer struct {
	db       *sql.DB
	registry *Registry
	logger   *observability.Logger
	cron     *cron.Cron
}

// NewSyncer creates a registry syncer
func NewSyncer(db *sql.DB, registry *Registry, logger *observability.Logger) *Syncer {
	return &Syncer{
		db:       db,
		registry: registry,
		logger:   logger,
	}
}

// Sync performs a one-way reconciliation: registry -> permissions table
func (s *Syncer) Sync(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin sync transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO permissions (name, category, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET category = EXCLUDED.category, description = EXCLUDED.description
	`

	names := make([]string, 0, len(s.registry.Catalog()))
	for _, p := range s.registry.Catalog() {
		if _, err := tx.ExecContext(ctx, upsert, p.Name, p.Category, p.Description); err != nil {
			return fmt.Errorf("failed to upsert permission %q: %w", p.Name, err)
		}
		names = append(names, p.Name)
	}

	// Rows added by hand or by older route-derived code are removed so the
	// persisted set never drifts from the catalog.
	res, err := tx.ExecContext(ctx,
		`DELETE FROM permissions WHERE NOT (name = ANY($1))`,
		pq.Array(names),
	)
	if err != nil {
		return fmt.Errorf("failed to prune stale permissions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registry sync: %w", err)
	}

	if pruned, err := res.RowsAffected(); err == nil && pruned > 0 {
		s.logger.WithField("pruned", pruned).Warn("removed permissions not present in registry")
	}
	s.logger.WithField("count", len(names)).Info("permission registry synced")
	return nil
}

// Schedule starts periodic reconciliation using the given cron expression.
// Returns an error if the expression does not parse.
func (s *Syncer) Schedule(spec string) error {
	if spec == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.Sync(context.Background()); err != nil {
			s.logger.WithError(err).Error("scheduled registry sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid registry sync schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the periodic reconciliation, waiting for a running sync
func (s *Syncer) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
