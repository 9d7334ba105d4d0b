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
	"github.com/vfg2006/ads-sync-api/pkg/utils"
)

const (
	analyticsTable = "analytics"
	// limite de linhas por INSERT para ficar longe do teto de parâmetros do Postgres
	analyticsInsertChunk = 500
)

type AnalyticsRepository interface {
	Upsert(ctx context.Context, records []*domain.AnalyticsRecord) (int, error)
}

type analyticsRepository struct {
	conn *postgres.Connection
}

func NewAnalyticsRepository(conn *postgres.Connection) AnalyticsRepository {
	return &analyticsRepository{
		conn: conn,
	}
}

// DedupeAnalytics mantém o último registro de cada chave. O Postgres rejeita um
// ON CONFLICT DO UPDATE que atinge a mesma linha duas vezes no mesmo comando.
func DedupeAnalytics(records []*domain.AnalyticsRecord) []*domain.AnalyticsRecord {
	index := make(map[domain.AnalyticsKey]int, len(records))
	result := make([]*domain.AnalyticsRecord, 0, len(records))

	for _, record := range records {
		if record == nil {
			continue
		}
		key := record.Key()
		if i, ok := index[key]; ok {
			result[i] = record
			continue
		}
		index[key] = len(result)
		result = append(result, record)
	}

	return result
}

// BuildAnalyticsUpsert monta um INSERT multi-linha chaveado pela identidade do registro
func BuildAnalyticsUpsert(records []*domain.AnalyticsRecord) (string, []any, error) {
	query := squirrel.StatementBuilder.
		Insert(analyticsTable).
		Columns("id", "entity_kind", "entity_id", "granularity", "period_start", "period_end",
			"impressions", "clicks", "reach", "cost", "conversions", "engagements", "fetched_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		query = query.Values(
			record.ID,
			record.EntityKind,
			record.EntityID,
			record.Granularity,
			record.PeriodStart.Format(time.DateOnly),
			record.PeriodEnd.Format(time.DateOnly),
			record.Impressions,
			record.Clicks,
			record.Reach,
			record.Cost,
			record.Conversions,
			record.Engagements,
			record.FetchedAt,
		)
	}

	return query.Suffix(`
			ON CONFLICT (entity_kind, entity_id, period_start, period_end, granularity) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				reach = EXCLUDED.reach,
				cost = EXCLUDED.cost,
				conversions = EXCLUDED.conversions,
				engagements = EXCLUDED.engagements,
				fetched_at = EXCLUDED.fetched_at,
				updated_at = NOW()
		`).ToSql()
}

// Upsert grava os registros em uma transação e devolve quantos foram escritos
func (r *analyticsRepository) Upsert(ctx context.Context, records []*domain.AnalyticsRecord) (int, error) {
	records = DedupeAnalytics(records)
	if len(records) == 0 {
		return 0, nil
	}

	for _, record := range records {
		if record.ID != "" {
			continue
		}
		id, err := utils.GenerateID()
		if err != nil {
			return 0, fmt.Errorf("erro ao gerar id: %w", err)
		}
		record.ID = id
	}

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(records); start += analyticsInsertChunk {
			end := min(start+analyticsInsertChunk, len(records))

			if err := upsertAnalyticsChunk(ctx, tx, records[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(records), nil
}

func upsertAnalyticsChunk(ctx context.Context, q postgres.Queryer, records []*domain.AnalyticsRecord) error {
	sqlQuery, args, err := BuildAnalyticsUpsert(records)
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, sqlQuery, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
