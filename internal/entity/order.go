package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Normalized rows as stored. Monetary columns stay decimal end-to-end;
// the HTTP layer is the only place they become floats.

type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Address struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Line1      string    `db:"line1" json:"line1"`
	Line2      *string   `db:"line2" json:"line2"`
	City       string    `db:"city" json:"city"`
	State      string    `db:"state" json:"state"`
	PostalCode string    `db:"postal_code" json:"postal_code"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Product struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	SKU       string          `db:"sku" json:"sku"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Order is the header row. It doubles as the lite aggregate: the lite
// view is exactly the header, nothing derived.
type Order struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	AddressID int64           `db:"address_id" json:"address_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Status    string          `db:"status" json:"status"`
	Total     decimal.Decimal `db:"total" json:"total"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// OrderProduct is one flattened {item, product} pair of the full view.
type OrderProduct struct {
	OrderItemID int64           `json:"order_item_id"`
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderFull is the denormalized aggregate built per request and cached,
// never persisted.
type OrderFull struct {
	Order    Order          `json:"order"`
	User     User           `json:"user"`
	Address  Address        `json:"address"`
	Products []OrderProduct `json:"products"`
}
