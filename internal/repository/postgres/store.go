// Package postgres implements the repository interfaces on top of pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/commercekit/fulfillment/internal/repository"
	"github.com/commercekit/fulfillment/pkg/database"
)

// repos binds every repository to one query surface (pool or transaction).
type repos struct {
	db database.DBTX
}

func (r repos) Orders() repository.OrderRepository      { return &OrderRepository{db: r.db} }
func (r repos) Stock() repository.StockRepository       { return &StockRepository{db: r.db} }
func (r repos) Bonus() repository.BonusLedgerRepository { return &BonusLedgerRepository{db: r.db} }
func (r repos) Catalog() repository.CatalogRepository   { return &CatalogRepository{db: r.db} }
func (r repos) Settings() repository.SettingsRepository { return &SettingsRepository{db: r.db} }

// Store is the pgx-backed implementation of repository.Store.
type Store struct {
	repos
	pool database.Pool
}

// NewStore creates a store over a connection pool. The pool may be a real
// *pgxpool.Pool or a pgxmock pool in tests.
func NewStore(pool database.Pool) *Store {
	return &Store{repos: repos{db: pool}, pool: pool}
}

// WithinTx runs fn with repositories bound to a single transaction. Any error
// from fn rolls the transaction back and is returned unchanged so sentinel
// and typed errors survive to the caller.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, repos{db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			return fmt.Errorf("rollback tx after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
