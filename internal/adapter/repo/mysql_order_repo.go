package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sidtn/order-read-api/internal/entity"
	"github.com/sidtn/order-read-api/internal/usecase"
)

// MySQLOrderRepo assembles read aggregates from the normalized tables.
// It is the only component that speaks SQL; everything above it sees
// entity values.
type MySQLOrderRepo struct {
	db *sqlx.DB
}

func NewMySQLOrderRepo(db *sqlx.DB) *MySQLOrderRepo {
	return &MySQLOrderRepo{db: db}
}

const liteQuery = `
SELECT id, user_id, address_id, quantity, status, total, created_at
FROM orders
WHERE id = ?`

// FetchLite returns the order header by primary key, or (nil, nil) when
// the id does not exist.
func (r *MySQLOrderRepo) FetchLite(ctx context.Context, orderID int64) (*entity.Order, error) {
	var order entity.Order
	if err := r.db.GetContext(ctx, &order, liteQuery, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: fetch lite order %d: %v", usecase.ErrStoreUnavailable, orderID, err)
	}
	return &order, nil
}

// fullRow is one row of the five-way join. The order/user/address
// columns repeat identically on every row because the join fans out on
// order_items; that repetition is expected, not deduplicated.
type fullRow struct {
	OrderID        int64           `db:"order_id"`
	OrderUserID    int64           `db:"order_user_id"`
	OrderAddressID int64           `db:"order_address_id"`
	OrderQuantity  int             `db:"order_quantity"`
	OrderStatus    string          `db:"order_status"`
	OrderTotal     decimal.Decimal `db:"order_total"`
	OrderCreatedAt time.Time       `db:"order_created_at"`

	UserID        int64     `db:"user_id"`
	UserEmail     string    `db:"user_email"`
	UserFullName  string    `db:"user_full_name"`
	UserCreatedAt time.Time `db:"user_created_at"`

	AddrID         int64     `db:"addr_id"`
	AddrUserID     int64     `db:"addr_user_id"`
	AddrLine1      string    `db:"addr_line1"`
	AddrLine2      *string   `db:"addr_line2"`
	AddrCity       string    `db:"addr_city"`
	AddrState      string    `db:"addr_state"`
	AddrPostalCode string    `db:"addr_postal_code"`
	AddrCreatedAt  time.Time `db:"addr_created_at"`

	OrderItemID   int64           `db:"order_item_id"`
	ItemQuantity  int             `db:"item_quantity"`
	ItemUnitPrice decimal.Decimal `db:"item_unit_price"`

	ProductID    int64           `db:"product_id"`
	ProductName  string          `db:"product_name"`
	ProductSKU   string          `db:"product_sku"`
	ProductPrice decimal.Decimal `db:"product_price"`
}

const fullQuery = `
SELECT
    o.id          AS order_id,
    o.user_id     AS order_user_id,
    o.address_id  AS order_address_id,
    o.quantity    AS order_quantity,
    o.status      AS order_status,
    o.total       AS order_total,
    o.created_at  AS order_created_at,
    u.id          AS user_id,
    u.email       AS user_email,
    u.full_name   AS user_full_name,
    u.created_at  AS user_created_at,
    a.id          AS addr_id,
    a.user_id     AS addr_user_id,
    a.line1       AS addr_line1,
    a.line2       AS addr_line2,
    a.city        AS addr_city,
    a.state       AS addr_state,
    a.postal_code AS addr_postal_code,
    a.created_at  AS addr_created_at,
    oi.id         AS order_item_id,
    oi.quantity   AS item_quantity,
    oi.unit_price AS item_unit_price,
    p.id          AS product_id,
    p.name        AS product_name,
    p.sku         AS product_sku,
    p.price       AS product_price
FROM orders o
JOIN users u        ON o.user_id = u.id
JOIN addresses a    ON o.address_id = a.id
JOIN order_items oi ON oi.order_id = o.id
JOIN products p     ON oi.product_id = p.id
WHERE o.id = ?
ORDER BY oi.id`

// FetchFull joins the order with its user, address and every
// {item, product} pair, then flattens the rows: header fields come from
// the first row, the products list from every row in join order.
//
// An order with zero items produces zero join rows, which this method
// cannot tell apart from a missing order id; both come back (nil, nil).
func (r *MySQLOrderRepo) FetchFull(ctx context.Context, orderID int64) (*entity.OrderFull, error) {
	var rows []fullRow
	if err := r.db.SelectContext(ctx, &rows, fullQuery, orderID); err != nil {
		return nil, fmt.Errorf("%w: fetch full order %d: %v", usecase.ErrStoreUnavailable, orderID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	head := rows[0]
	full := &entity.OrderFull{
		Order: entity.Order{
			ID:        head.OrderID,
			UserID:    head.OrderUserID,
			AddressID: head.OrderAddressID,
			Quantity:  head.OrderQuantity,
			Status:    head.OrderStatus,
			Total:     head.OrderTotal,
			CreatedAt: head.OrderCreatedAt,
		},
		User: entity.User{
			ID:        head.UserID,
			Email:     head.UserEmail,
			FullName:  head.UserFullName,
			CreatedAt: head.UserCreatedAt,
		},
		Address: entity.Address{
			ID:         head.AddrID,
			UserID:     head.AddrUserID,
			Line1:      head.AddrLine1,
			Line2:      head.AddrLine2,
			City:       head.AddrCity,
			State:      head.AddrState,
			PostalCode: head.AddrPostalCode,
			CreatedAt:  head.AddrCreatedAt,
		},
		Products: make([]entity.OrderProduct, 0, len(rows)),
	}

	for _, row := range rows {
		full.Products = append(full.Products, entity.OrderProduct{
			OrderItemID: row.OrderItemID,
			ProductID:   row.ProductID,
			Name:        row.ProductName,
			SKU:         row.ProductSKU,
			Price:       row.ProductPrice,
			Quantity:    row.ItemQuantity,
			UnitPrice:   row.ItemUnitPrice,
		})
	}

	return full, nil
}

var _ usecase.OrderAggregator = (*MySQLOrderRepo)(nil)
