// Package mysql implements the store ports over database/sql and the
// go-sql-driver/mysql driver.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/go-sql-driver/mysql"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so every repository
// runs unchanged inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL-backed store.Store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func reposFor(q Querier) store.Repositories {
	return store.Repositories{
		Catalog:   &CatalogRepo{q: q},
		Carts:     &CartRepo{q: q},
		CartItems: &CartItemRepo{q: q},
		Orders:    &OrderRepo{q: q},
		Shops:     &ShopRepo{q: q},
	}
}

func (s *Store) Repos() store.Repositories { return reposFor(s.db) }

// WithinTx runs fn in a single transaction. The deferred Rollback is a no-op
// once Commit has succeeded.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r store.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, reposFor(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Close() error { return s.db.Close() }

// Server error numbers.
const (
	errDupEntry        = 1062 // ER_DUP_ENTRY
	errOutOfRange      = 1264 // ER_WARN_DATA_OUT_OF_RANGE
	errNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
	errDataOutOfRange  = 1690 // ER_DATA_OUT_OF_RANGE
)

func errorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return errorNumber(err) == errDupEntry }

// classify maps server errors on numeric and foreign key writes onto store
// sentinels, keeping the driver error in the chain.
func classify(err error) error {
	switch errorNumber(err) {
	case errOutOfRange, errDataOutOfRange:
		return fmt.Errorf("%w: %w", store.ErrOutOfRange, err)
	case errNoReferencedRow:
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}
	return err
}

// notFound turns sql.ErrNoRows into store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// expectAffected maps a zero-row write to store.ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
