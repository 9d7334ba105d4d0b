package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/pkg/utils"
)

// lookupChunkSize limita o tamanho do IN (...) nas buscas por lote
const lookupChunkSize = 500

var entityTables = map[domain.EntityKind]string{
	domain.EntityKindCampaign: "campaigns",
	domain.EntityKindAdGroup:  "ad_groups",
	domain.EntityKindAd:       "ads",
}

var entityColumns = []string{
	"id", "account_id", "external_id", "parent_id", "parent_external_id", "name", "status", "version",
	"remote_modified_at", "start_date", "payload", "needs_reconciliation", "children_pending", "created_at", "updated_at",
}

// EntityTable devolve a tabela de um tipo de entidade
func EntityTable(kind domain.EntityKind) (string, error) {
	table, ok := entityTables[kind]
	if !ok {
		return "", fmt.Errorf("tipo de entidade desconhecido: %q", kind)
	}
	return table, nil
}

type EntityRepository interface {
	UpsertEntity(ctx context.Context, entity *domain.Entity) error
	FindByExternalID(ctx context.Context, kind domain.EntityKind, accountID, externalID string) (*domain.Entity, error)
	ListByExternalIDs(ctx context.Context, kind domain.EntityKind, accountID string, externalIDs []string) ([]*domain.Entity, error)
	ListWhereParentNull(ctx context.Context, kind domain.EntityKind, accountIDs []string) ([]*domain.Entity, error)
	SetParent(ctx context.Context, kind domain.EntityKind, id, parentID string) error
	CountWhereParentNull(ctx context.Context, accountIDs []string) (int, error)
	// MarkChildrenSynced desliga children_pending dos pais cujo nível filho foi gravado por completo
	MarkChildrenSynced(ctx context.Context, kind domain.EntityKind, accountID string, externalIDs []string) error
}

type entityRepository struct {
	conn *postgres.Connection
}

func NewEntityRepository(conn *postgres.Connection) EntityRepository {
	return &entityRepository{
		conn: conn,
	}
}

// BuildEntityUpsert monta o upsert chaveado por (account_id, external_id).
// Um pai já resolvido nunca é apagado por um snapshot que chegou sem pai.
func BuildEntityUpsert(entity *domain.Entity) (string, []any, error) {
	table, err := EntityTable(entity.Kind)
	if err != nil {
		return "", nil, err
	}

	var payload any
	if len(entity.Payload) > 0 {
		payload = []byte(entity.Payload)
	}

	return squirrel.StatementBuilder.
		Insert(table).
		Columns("id", "account_id", "external_id", "parent_id", "parent_external_id", "name", "status", "version",
			"remote_modified_at", "start_date", "payload", "needs_reconciliation", "children_pending").
		Values(
			entity.ID,
			entity.AccountID,
			entity.ExternalID,
			entity.ParentID,
			entity.ParentExternalID,
			entity.Name,
			entity.Status,
			entity.Version,
			entity.RemoteModifiedAt,
			entity.StartDate,
			payload,
			entity.NeedsReconciliation,
			entity.ChildrenPending,
		).
		Suffix(fmt.Sprintf(`
			ON CONFLICT (account_id, external_id) DO UPDATE SET
				parent_id = COALESCE(EXCLUDED.parent_id, %[1]s.parent_id),
				parent_external_id = EXCLUDED.parent_external_id,
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				version = EXCLUDED.version,
				remote_modified_at = EXCLUDED.remote_modified_at,
				start_date = EXCLUDED.start_date,
				payload = EXCLUDED.payload,
				needs_reconciliation = EXCLUDED.needs_reconciliation AND %[1]s.parent_id IS NULL,
				children_pending = EXCLUDED.children_pending OR %[1]s.children_pending,
				updated_at = NOW()
			RETURNING id, parent_id, needs_reconciliation, created_at, updated_at
		`, table)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *entityRepository) UpsertEntity(ctx context.Context, entity *domain.Entity) error {
	if entity.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return fmt.Errorf("erro ao gerar id: %w", err)
		}
		entity.ID = id
	}

	sqlQuery, args, err := BuildEntityUpsert(entity)
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	var parentID sql.NullString
	err = r.conn.QueryRowContext(ctx, sqlQuery, args...).Scan(
		&entity.ID,
		&parentID,
		&entity.NeedsReconciliation,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	entity.ParentID = nullableString(parentID)
	return nil
}

func (r *entityRepository) FindByExternalID(ctx context.Context, kind domain.EntityKind, accountID, externalID string) (*domain.Entity, error) {
	entities, err := r.list(ctx, kind, squirrel.Eq{"account_id": accountID, "external_id": externalID})
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return entities[0], nil
}

func (r *entityRepository) ListByExternalIDs(ctx context.Context, kind domain.EntityKind, accountID string, externalIDs []string) ([]*domain.Entity, error) {
	result := make([]*domain.Entity, 0, len(externalIDs))

	for start := 0; start < len(externalIDs); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(externalIDs))

		entities, err := r.list(ctx, kind, squirrel.Eq{"account_id": accountID, "external_id": externalIDs[start:end]})
		if err != nil {
			return nil, err
		}
		result = append(result, entities...)
	}

	return result, nil
}

func (r *entityRepository) ListWhereParentNull(ctx context.Context, kind domain.EntityKind, accountIDs []string) ([]*domain.Entity, error) {
	if _, hasParent := kind.Parent(); !hasParent {
		return nil, nil
	}
	if len(accountIDs) == 0 {
		return nil, nil
	}

	return r.list(ctx, kind, squirrel.And{
		squirrel.Eq{"parent_id": nil},
		squirrel.Eq{"account_id": accountIDs},
	})
}

func (r *entityRepository) SetParent(ctx context.Context, kind domain.EntityKind, id, parentID string) error {
	table, err := EntityTable(kind)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.
		Update(table).
		Set("parent_id", parentID).
		Set("needs_reconciliation", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s não encontrado", kind, id)
	}

	return nil
}

func (r *entityRepository) MarkChildrenSynced(ctx context.Context, kind domain.EntityKind, accountID string, externalIDs []string) error {
	if !kind.HasChildren() || len(externalIDs) == 0 {
		return nil
	}
	table, err := EntityTable(kind)
	if err != nil {
		return err
	}

	for start := 0; start < len(externalIDs); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(externalIDs))

		sqlQuery, args, err := BuildMarkChildrenSynced(table, accountID, externalIDs[start:end])
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}
		if _, err := r.conn.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("erro ao liberar filhos pendentes em %s: %w", table, err)
		}
	}

	return nil
}

// BuildMarkChildrenSynced só toca as linhas ainda pendentes
func BuildMarkChildrenSynced(table, accountID string, externalIDs []string) (string, []any, error) {
	return squirrel.
		Update(table).
		Set("children_pending", false).
		Where(squirrel.Eq{"account_id": accountID, "external_id": externalIDs, "children_pending": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *entityRepository) CountWhereParentNull(ctx context.Context, accountIDs []string) (int, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	total := 0
	for _, kind := range []domain.EntityKind{domain.EntityKindAdGroup, domain.EntityKindAd} {
		table, _ := EntityTable(kind)

		sqlQuery, args, err := squirrel.
			Select("COUNT(*)").
			From(table).
			Where(squirrel.Eq{"parent_id": nil, "account_id": accountIDs}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("erro ao construir a query: %w", err)
		}

		var count int
		if err := r.conn.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
			return 0, fmt.Errorf("erro ao contar órfãos em %s: %w", table, err)
		}
		total += count
	}

	return total, nil
}

func (r *entityRepository) list(ctx context.Context, kind domain.EntityKind, where squirrel.Sqlizer) ([]*domain.Entity, error) {
	table, err := EntityTable(kind)
	if err != nil {
		return nil, err
	}

	sqlQuery, args, err := squirrel.
		Select(entityColumns...).
		From(table).
		Where(where).
		OrderBy("external_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		entity, err := scanEntity(rows, kind)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return entities, nil
}

func scanEntity(rows *sql.Rows, kind domain.EntityKind) (*domain.Entity, error) {
	entity := &domain.Entity{Kind: kind}

	var (
		parentID         sql.NullString
		parentExternalID sql.NullString
		version          sql.NullString
		remoteModifiedAt sql.NullTime
		startDate        sql.NullTime
		payload          []byte
	)

	if err := rows.Scan(
		&entity.ID,
		&entity.AccountID,
		&entity.ExternalID,
		&parentID,
		&parentExternalID,
		&entity.Name,
		&entity.Status,
		&version,
		&remoteModifiedAt,
		&startDate,
		&payload,
		&entity.NeedsReconciliation,
		&entity.ChildrenPending,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("erro ao ler %s: %w", kind, err)
	}

	entity.ParentID = nullableString(parentID)
	entity.ParentExternalID = parentExternalID.String
	entity.Version = version.String
	if remoteModifiedAt.Valid {
		t := remoteModifiedAt.Time
		entity.RemoteModifiedAt = &t
	}
	if startDate.Valid {
		t := startDate.Time
		entity.StartDate = &t
	}
	if len(payload) > 0 {
		entity.Payload = payload
	}

	return entity, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
