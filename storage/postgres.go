package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres keeps values in the kv_store jsonb table.
type Postgres struct {
	db DBTX
}

func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRow(ctx, `
		SELECT value FROM kv_store WHERE owner_id = $1 AND key = $2`,
		owner, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, owner, key string, value []byte) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO kv_store (owner_id, key, value, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (owner_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()`,
		owner, key, string(value),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, owner, key string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM kv_store WHERE owner_id = $1 AND key = $2`, owner, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Append concatenates inside a single upsert so two checkouts for the same
// owner can never drop each other's element.
func (p *Postgres) Append(ctx context.Context, owner, key string, elem []byte) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO kv_store (owner_id, key, value, updated_at)
		VALUES ($1, $2, jsonb_build_array($3::jsonb), now())
		ON CONFLICT (owner_id, key) DO UPDATE SET
			value = CASE
				WHEN jsonb_typeof(kv_store.value) = 'array' THEN kv_store.value || EXCLUDED.value
				ELSE EXCLUDED.value
			END,
			updated_at = now()`,
		owner, key, string(elem),
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	return nil
}
