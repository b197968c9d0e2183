package repo_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidtn/order-read-api/internal/adapter/repo"
	"github.com/sidtn/order-read-api/internal/usecase"
)

var createdAt = time.Date(2026, 1, 27, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*repo.MySQLOrderRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repo.NewMySQLOrderRepo(sqlx.NewDb(db, "mysql")), mock
}

func liteColumns() []string {
	return []string{"id", "user_id", "address_id", "quantity", "status", "total", "created_at"}
}

func fullColumns() []string {
	return []string{
		"order_id", "order_user_id", "order_address_id", "order_quantity",
		"order_status", "order_total", "order_created_at",
		"user_id", "user_email", "user_full_name", "user_created_at",
		"addr_id", "addr_user_id", "addr_line1", "addr_line2", "addr_city",
		"addr_state", "addr_postal_code", "addr_created_at",
		"order_item_id", "item_quantity", "item_unit_price",
		"product_id", "product_name", "product_sku", "product_price",
	}
}

func fullRowValues(itemID, productID int64, unitPrice string) []driver.Value {
	return []driver.Value{
		1, 10, 20, 2, "pending", "21.98", createdAt,
		10, "user0@example.com", "User 0", createdAt,
		20, 10, "100 Main St", nil, "Testville", "CA", "90000", createdAt,
		itemID, 1, unitPrice,
		productID, "Product", "SKU000000", unitPrice,
	}
}

func TestFetchLite(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM orders").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(liteColumns()).
			AddRow(1, 10, 20, 2, "pending", "21.98", createdAt))

	order, err := r.FetchLite(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, int64(10), order.UserID)
	assert.Equal(t, int64(20), order.AddressID)
	assert.Equal(t, "pending", order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("21.98")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchLiteNotFound(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM orders").
		WithArgs(int64(999999)).
		WillReturnRows(sqlmock.NewRows(liteColumns()))

	order, err := r.FetchLite(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestFetchFullFlattensJoinFanOut(t *testing.T) {
	r, mock := setup(t)

	rows := sqlmock.NewRows(fullColumns()).
		AddRow(fullRowValues(100, 1000, "10.99")...).
		AddRow(fullRowValues(101, 1001, "10.99")...)
	mock.ExpectQuery("JOIN order_items").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	full, err := r.FetchFull(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, full)

	// Header comes from the first row; repeated header columns on
	// later rows are expected and ignored.
	assert.Equal(t, int64(1), full.Order.ID)
	assert.Equal(t, "user0@example.com", full.User.Email)
	assert.Equal(t, "100 Main St", full.Address.Line1)
	assert.Nil(t, full.Address.Line2)

	// Items come from every row, in join order.
	require.Len(t, full.Products, 2)
	assert.Equal(t, int64(100), full.Products[0].OrderItemID)
	assert.Equal(t, int64(101), full.Products[1].OrderItemID)
	assert.Equal(t, int64(1000), full.Products[0].ProductID)
	assert.True(t, full.Products[0].UnitPrice.Equal(decimal.RequireFromString("10.99")))
}

func TestFetchFullZeroRowsMeansNotFound(t *testing.T) {
	r, mock := setup(t)

	// An existing order with zero items and a missing id both produce
	// zero join rows; both are reported as not found.
	mock.ExpectQuery("JOIN order_items").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(fullColumns()))

	full, err := r.FetchFull(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, full)
}

func TestStoreErrorsCarryKind(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM orders").WillReturnError(assert.AnError)
	_, err := r.FetchLite(context.Background(), 1)
	assert.ErrorIs(t, err, usecase.ErrStoreUnavailable)

	mock.ExpectQuery("JOIN order_items").WillReturnError(assert.AnError)
	_, err = r.FetchFull(context.Background(), 1)
	assert.ErrorIs(t, err, usecase.ErrStoreUnavailable)
}
