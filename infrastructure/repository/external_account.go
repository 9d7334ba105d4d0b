package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/vfg2006/ads-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

const externalAccountsTable = "external_accounts"

type ExternalAccountRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]*domain.ExternalAccount, error)
	ListByOrganizationID(ctx context.Context, organizationID string) ([]*domain.ExternalAccount, error)
}

type externalAccountRepository struct {
	conn *postgres.Connection
}

func NewExternalAccountRepository(conn *postgres.Connection) ExternalAccountRepository {
	return &externalAccountRepository{
		conn: conn,
	}
}

func (r *externalAccountRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.ExternalAccount, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, squirrel.Eq{"id": ids})
}

func (r *externalAccountRepository) ListByOrganizationID(ctx context.Context, organizationID string) ([]*domain.ExternalAccount, error) {
	return r.list(ctx, squirrel.Eq{"organization_id": organizationID})
}

func (r *externalAccountRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*domain.ExternalAccount, error) {
	sqlQuery, args, err := squirrel.
		Select("id", "organization_id", "external_id", "platform", "name").
		From(externalAccountsTable).
		Where(where).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query")
	}

	rows, err := r.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao executar a query de contas externas")
	}
	defer rows.Close()

	var accounts []*domain.ExternalAccount
	for rows.Next() {
		account := &domain.ExternalAccount{}
		if err := rows.Scan(
			&account.ID,
			&account.OrganizationID,
			&account.ExternalID,
			&account.Platform,
			&account.Name,
		); err != nil {
			return nil, errors.Wrap(err, "erro ao ler conta externa")
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro ao iterar resultados")
	}

	return accounts, nil
}
