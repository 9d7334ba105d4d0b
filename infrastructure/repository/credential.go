package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ads-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

const credentialsTable = "external_credentials"

type CredentialRepository interface {
	GetByExternalAccountID(ctx context.Context, externalAccountID string) (*domain.Credential, error)
	Save(ctx context.Context, credential *domain.Credential) error
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*domain.Credential, error)
}

type credentialRepository struct {
	conn *postgres.Connection
}

func NewCredentialRepository(conn *postgres.Connection) CredentialRepository {
	return &credentialRepository{
		conn: conn,
	}
}

func (r *credentialRepository) GetByExternalAccountID(ctx context.Context, externalAccountID string) (*domain.Credential, error) {
	sqlQuery, args, err := squirrel.
		Select("external_account_id", "access_token", "expires_at", "updated_at").
		From(credentialsTable).
		Where(squirrel.Eq{"external_account_id": externalAccountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	cred, err := scanCredential(r.conn.QueryRowContext(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return cred, nil
}

func (r *credentialRepository) Save(ctx context.Context, credential *domain.Credential) error {
	var expiresAt any
	if !credential.ExpiresAt.IsZero() {
		expiresAt = credential.ExpiresAt
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(credentialsTable).
		Columns("external_account_id", "access_token", "expires_at").
		Values(credential.ExternalAccountID, credential.AccessToken, expiresAt).
		Suffix(`
			ON CONFLICT (external_account_id) DO UPDATE SET
				access_token = EXCLUDED.access_token,
				expires_at = EXCLUDED.expires_at,
				updated_at = NOW()
		`).
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

func (r *credentialRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*domain.Credential, error) {
	sqlQuery, args, err := squirrel.
		Select("external_account_id", "access_token", "expires_at", "updated_at").
		From(credentialsTable).
		Where(squirrel.And{
			squirrel.NotEq{"expires_at": nil},
			squirrel.Lt{"expires_at": deadline},
		}).
		OrderBy("expires_at").
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

	var creds []*domain.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return creds, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*domain.Credential, error) {
	cred := &domain.Credential{}
	var expiresAt sql.NullTime

	if err := row.Scan(&cred.ExternalAccountID, &cred.AccessToken, &expiresAt, &cred.UpdatedAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		cred.ExpiresAt = expiresAt.Time
	}

	return cred, nil
}
