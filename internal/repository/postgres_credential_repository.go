package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxQuerier is the subset of *pgxpool.Pool the Postgres repository uses.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresCredentialRepository struct {
	db  PgxQuerier
	key string
}

// NewPostgresCredentialRepository stores the credential in the client_credentials table.
func NewPostgresCredentialRepository(db PgxQuerier, key string) CredentialRepository {
	return &postgresCredentialRepository{db: db, key: key}
}

func (r *postgresCredentialRepository) Load(ctx context.Context) (string, error) {
	const query = `SELECT credential FROM client_credentials WHERE storage_key = $1`

	var credential string
	err := r.db.QueryRow(ctx, query, r.key).Scan(&credential)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("select credential: %w", err)
	}
	return credential, nil
}

func (r *postgresCredentialRepository) Save(ctx context.Context, credential string) error {
	const query = `
        INSERT INTO client_credentials (storage_key, credential, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (storage_key) DO UPDATE SET credential = EXCLUDED.credential, updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, r.key, credential); err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (r *postgresCredentialRepository) Clear(ctx context.Context) error {
	const query = `DELETE FROM client_credentials WHERE storage_key = $1`

	if _, err := r.db.Exec(ctx, query, r.key); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
