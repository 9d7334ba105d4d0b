package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

const syncConfigurationsTable = "sync_configurations"

var syncConfigurationColumns = []string{
	"organization_id", "enabled", "cadence", "external_account_ids", "campaign_group_ids",
	"last_synced_at", "created_at", "updated_at",
}

type SyncConfigurationRepository interface {
	ListEnabled(ctx context.Context) ([]*domain.SyncConfiguration, error)
	ListAll(ctx context.Context) ([]*domain.SyncConfiguration, error)
	GetByOrganizationID(ctx context.Context, organizationID string) (*domain.SyncConfiguration, error)
	Save(ctx context.Context, cfg *domain.SyncConfiguration) error
	UpdateLastSyncedAt(ctx context.Context, organizationID string, syncedAt time.Time) error
}

type syncConfigurationRepository struct {
	conn *postgres.Connection
}

func NewSyncConfigurationRepository(conn *postgres.Connection) SyncConfigurationRepository {
	return &syncConfigurationRepository{
		conn: conn,
	}
}

func (r *syncConfigurationRepository) ListEnabled(ctx context.Context) ([]*domain.SyncConfiguration, error) {
	return r.list(ctx, squirrel.Eq{"enabled": true})
}

func (r *syncConfigurationRepository) ListAll(ctx context.Context) ([]*domain.SyncConfiguration, error) {
	return r.list(ctx, nil)
}

func (r *syncConfigurationRepository) GetByOrganizationID(ctx context.Context, organizationID string) (*domain.SyncConfiguration, error) {
	configs, err := r.list(ctx, squirrel.Eq{"organization_id": organizationID})
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, nil
	}
	return configs[0], nil
}

func (r *syncConfigurationRepository) Save(ctx context.Context, cfg *domain.SyncConfiguration) error {
	if cfg.OrganizationID == "" {
		return errors.New("organization_id é obrigatório")
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(syncConfigurationsTable).
		Columns("organization_id", "enabled", "cadence", "external_account_ids", "campaign_group_ids").
		Values(
			cfg.OrganizationID,
			cfg.Enabled,
			cfg.Cadence,
			pq.Array(nonNil(cfg.ExternalAccountIDs)),
			pq.Array(nonNil(cfg.CampaignGroupIDs)),
		).
		Suffix(`
			ON CONFLICT (organization_id) DO UPDATE SET
				enabled = EXCLUDED.enabled,
				cadence = EXCLUDED.cadence,
				external_account_ids = EXCLUDED.external_account_ids,
				campaign_group_ids = EXCLUDED.campaign_group_ids,
				updated_at = NOW()
			RETURNING created_at, updated_at
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, sqlQuery, args...).Scan(&cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *syncConfigurationRepository) UpdateLastSyncedAt(ctx context.Context, organizationID string, syncedAt time.Time) error {
	sqlQuery, args, err := squirrel.
		Update(syncConfigurationsTable).
		Set("last_synced_at", syncedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"organization_id": organizationID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, sqlQuery, args...); err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *syncConfigurationRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*domain.SyncConfiguration, error) {
	query := squirrel.
		Select(syncConfigurationColumns...).
		From(syncConfigurationsTable).
		OrderBy("organization_id").
		PlaceholderFormat(squirrel.Dollar)
	if where != nil {
		query = query.Where(where)
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	var configs []*domain.SyncConfiguration
	for rows.Next() {
		cfg := &domain.SyncConfiguration{}
		var lastSyncedAt sql.NullTime

		if err := rows.Scan(
			&cfg.OrganizationID,
			&cfg.Enabled,
			&cfg.Cadence,
			pq.Array(&cfg.ExternalAccountIDs),
			pq.Array(&cfg.CampaignGroupIDs),
			&lastSyncedAt,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao ler configuração de sincronização: %w", err)
		}

		if lastSyncedAt.Valid {
			t := lastSyncedAt.Time
			cfg.LastSyncedAt = &t
		}

		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return configs, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
