package mysql

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

var cartItemCols = []string{
	"id", "cart_id", "catalog_item_id", "quantity", "created_at", "updated_at",
	"id", "name", "price", "is_favorite", "created_at", "updated_at",
}

func TestIncrementTotalUsesAtomicDelta(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET total_sum = total_sum + CAST(? AS DECIMAL(20,4)), updated_at = ? WHERE id = ?")).
		WithArgs("-9", sqlmock.AnyArg(), "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Repos().Carts.IncrementTotal(ctx, "c-1", decimal.RequireFromString("-9.00")))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET total_sum = total_sum +")).
		WithArgs("9", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.Repos().Carts.IncrementTotal(ctx, "missing", decimal.NewFromInt(9))
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareAndSetTotal(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = ? AND total_sum = CAST(? AS DECIMAL(20,4))")).
		WithArgs("18", sqlmock.AnyArg(), "c-1", "27").
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := s.Repos().Carts.CompareAndSetTotal(ctx, "c-1", decimal.NewFromInt(27), decimal.NewFromInt(18))
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = ? AND total_sum")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = s.Repos().Carts.CompareAndSetTotal(ctx, "c-1", decimal.NewFromInt(27), decimal.NewFromInt(18))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddQuantityReportsCreated(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	now := time.Now().UTC()

	upsert := regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")
	reread := regexp.QuoteMeta("WHERE ci.cart_id = ? AND ci.catalog_item_id = ?")

	mock.ExpectExec(upsert).
		WithArgs(sqlmock.AnyArg(), "c-1", "m-1", 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(reread).WithArgs("c-1", "m-1").
		WillReturnRows(sqlmock.NewRows(cartItemCols).
			AddRow("ci-1", "c-1", "m-1", 1, now, now, "m-1", "Lipitor", "9.0000", false, now, now))

	item, created, err := s.Repos().CartItems.AddQuantity(ctx, "c-1", "m-1", 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, item.Quantity)
	require.NotNil(t, item.Item)
	assert.True(t, item.Item.Price.Equal(decimal.NewFromInt(9)))

	mock.ExpectExec(upsert).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(reread).WithArgs("c-1", "m-1").
		WillReturnRows(sqlmock.NewRows(cartItemCols).
			AddRow("ci-1", "c-1", "m-1", 2, now, now, "m-1", "Lipitor", "9.0000", false, now, now))

	item, created, err = s.Repos().CartItems.AddQuantity(ctx, "c-1", "m-1", 1)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 2, item.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartItemWithDeletedMedicine(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ci.id = ?")).WithArgs("ci-1").
		WillReturnRows(sqlmock.NewRows(cartItemCols).
			AddRow("ci-1", "c-1", "gone", 3, now, now, nil, nil, nil, nil, nil, nil))

	item, err := s.Repos().CartItems.FindByID(context.Background(), "ci-1")
	require.NoError(t, err)
	assert.Nil(t, item.Item)
	assert.True(t, item.LineTotal().IsZero())
}

func TestLockByIDSelectsForUpdate(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ci.id = ? FOR UPDATE")).WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Repos().CartItems.LockByID(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementQuantity(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cart_items SET quantity = quantity + ?, updated_at = ? WHERE id = ?")).
		WithArgs(-2, sqlmock.AnyArg(), "ci-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Repos().CartItems.IncrementQuantity(context.Background(), "ci-1", -2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCartItemDuplicate(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec("INSERT INTO cart_items").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := s.Repos().CartItems.Create(context.Background(), &models.CartItem{ID: "ci-1", CartID: "c-1", CatalogItemID: "m-1", Quantity: 1})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestWithinTxCommitsAndRollsBack(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE carts SET total_sum").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items WHERE id = ?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if err := r.Carts.IncrementTotal(ctx, "c-1", decimal.NewFromInt(-9)); err != nil {
			return err
		}
		return r.CartItems.Delete(ctx, "ci-1")
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE carts SET total_sum").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err = s.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if err := r.Carts.IncrementTotal(ctx, "c-1", decimal.NewFromInt(9)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderLinesRoundTrip(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs("o-1", "u-1", "c-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	order := &models.Order{
		ID: "o-1", UserID: "u-1", CartID: "c-1",
		Lines: []models.OrderLine{{
			CatalogItemID: "m-1", Name: "Lipitor",
			UnitPrice: decimal.NewFromInt(9), Quantity: 1, LineTotal: decimal.NewFromInt(9),
		}},
		FinalSum: decimal.NewFromInt(9),
	}
	require.NoError(t, s.Repos().Orders.Create(ctx, order))

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_id", "line_items", "final_sum", "created_at", "updated_at"}).
			AddRow("o-1", "u-1", "c-1", []byte(`[{"item":"m-1","name":"Lipitor","unitPrice":9,"quantity":1,"lineTotal":9}]`), "9.0000", now, now))

	got, err := s.Repos().Orders.FindByID(ctx, "o-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Lipitor", got.Lines[0].Name)
	assert.True(t, got.FinalSum.Equal(decimal.NewFromInt(9)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShopFindLoadsOrderedMedicines(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM shops WHERE id = ?")).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "created_at", "updated_at"}).
			AddRow("s-1", "Pharmacy One", "pharmacy-one", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_medicines WHERE shop_id = ? ORDER BY sort_order")).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"shop_id", "medicine_id"}).
			AddRow("s-1", "m-2").
			AddRow("s-1", "m-1"))

	shop, err := s.Repos().Shops.FindByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m-2", "m-1"}, shop.MedicineIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM orders WHERE id = ?")).WithArgs("o-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Repos().Orders.Delete(context.Background(), "o-x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddQuantityClassifiesServerErrors(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WillReturnError(&mysql.MySQLError{Number: 1264, Message: "Out of range value for column 'quantity'"})
	_, _, err := s.Repos().CartItems.AddQuantity(ctx, "c-1", "m-1", 1)
	assert.ErrorIs(t, err, store.ErrOutOfRange)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
	_, _, err = s.Repos().CartItems.AddQuantity(ctx, "gone", "m-1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET total_sum = total_sum +")).
		WillReturnError(&mysql.MySQLError{Number: 1264, Message: "Out of range value for column 'total_sum'"})
	err = s.Repos().Carts.IncrementTotal(ctx, "c-1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, store.ErrOutOfRange)

	var me *mysql.MySQLError
	assert.True(t, errors.As(err, &me))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderColumnsMatchModelTags(t *testing.T) {
	var tags []string
	typ := reflect.TypeOf(models.Order{})
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("db"); tag != "" {
			tags = append(tags, tag)
		}
	}
	assert.Equal(t, strings.Split(orderColumns, ", "), tags)
}
