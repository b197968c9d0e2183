// Package seed bulk-loads a deterministic dataset into empty tables so
// the read path has something realistic to serve. Row contents are a
// pure function of the row index, so two runs against fresh databases
// produce identical data.
package seed

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sidtn/order-read-api/configs"
	"github.com/sidtn/order-read-api/internal/logging"
)

type Params struct {
	Users    int
	Products int
	Orders   int
}

const (
	itemsPerOrder     = 20
	ordersBatchSize   = 1000
	productsBatchSize = 5000
)

// priceForIndex spreads prices over [1.00, 100.99] deterministically.
func priceForIndex(i int) decimal.Decimal {
	cents := int64(100 + i%10000)
	return decimal.New(cents, -2)
}

type userRow struct {
	Email    string `db:"email"`
	FullName string `db:"full_name"`
}

type addressRow struct {
	UserID     int64  `db:"user_id"`
	Line1      string `db:"line1"`
	City       string `db:"city"`
	State      string `db:"state"`
	PostalCode string `db:"postal_code"`
}

type productRow struct {
	Name  string          `db:"name"`
	SKU   string          `db:"sku"`
	Price decimal.Decimal `db:"price"`
}

type orderRow struct {
	UserID    int64           `db:"user_id"`
	AddressID int64           `db:"address_id"`
	Quantity  int             `db:"quantity"`
	Status    string          `db:"status"`
	Total     decimal.Decimal `db:"total"`
}

type itemRow struct {
	OrderID   int64           `db:"order_id"`
	ProductID int64           `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

func Run(ctx context.Context, cfg configs.Config, p Params) error {
	l := logging.New("seed")

	db, err := sqlx.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if p.Users <= 0 || p.Products <= 0 || p.Orders <= 0 {
		return fmt.Errorf("users, products and orders must all be positive")
	}

	userIDs, err := seedUsers(ctx, db, p.Users)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	addressIDs, err := seedAddresses(ctx, db, userIDs)
	if err != nil {
		return fmt.Errorf("seed addresses: %w", err)
	}
	productIDs, prices, err := seedProducts(ctx, db, p.Products)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := seedOrders(ctx, db, p, userIDs, addressIDs, productIDs, prices); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}

	l.Info("dataset loaded", "users", p.Users, "products", p.Products, "orders", p.Orders)
	return nil
}

func seedUsers(ctx context.Context, db *sqlx.DB, n int) ([]int64, error) {
	batch := make([]userRow, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, userRow{
			Email:    fmt.Sprintf("user%d@example.com", i),
			FullName: fmt.Sprintf("User %d", i),
		})
	}
	if _, err := db.NamedExecContext(ctx,
		`INSERT INTO users (email, full_name) VALUES (:email, :full_name)`, batch); err != nil {
		return nil, err
	}
	var ids []int64
	if err := db.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`); err != nil {
		return nil, err
	}
	return ids, nil
}

func seedAddresses(ctx context.Context, db *sqlx.DB, userIDs []int64) ([]int64, error) {
	batch := make([]addressRow, 0, len(userIDs))
	for i, userID := range userIDs {
		batch = append(batch, addressRow{
			UserID:     userID,
			Line1:      fmt.Sprintf("%d Main St", 100+i),
			City:       "Testville",
			State:      "CA",
			PostalCode: fmt.Sprintf("%05d", 90000+i),
		})
	}
	if _, err := db.NamedExecContext(ctx,
		`INSERT INTO addresses (user_id, line1, city, state, postal_code)
		 VALUES (:user_id, :line1, :city, :state, :postal_code)`, batch); err != nil {
		return nil, err
	}
	var ids []int64
	if err := db.SelectContext(ctx, &ids, `SELECT id FROM addresses ORDER BY id`); err != nil {
		return nil, err
	}
	return ids, nil
}

func seedProducts(ctx context.Context, db *sqlx.DB, n int) ([]int64, []decimal.Decimal, error) {
	prices := make([]decimal.Decimal, 0, n)
	for offset := 0; offset < n; offset += productsBatchSize {
		end := offset + productsBatchSize
		if end > n {
			end = n
		}
		batch := make([]productRow, 0, end-offset)
		for i := offset; i < end; i++ {
			price := priceForIndex(i)
			prices = append(prices, price)
			batch = append(batch, productRow{
				Name:  fmt.Sprintf("Product %d", i),
				SKU:   fmt.Sprintf("SKU%06d", i),
				Price: price,
			})
		}
		if _, err := db.NamedExecContext(ctx,
			`INSERT INTO products (name, sku, price) VALUES (:name, :sku, :price)`, batch); err != nil {
			return nil, nil, err
		}
	}
	var ids []int64
	if err := db.SelectContext(ctx, &ids, `SELECT id FROM products ORDER BY id`); err != nil {
		return nil, nil, err
	}
	return ids, prices, nil
}

func seedOrders(ctx context.Context, db *sqlx.DB, p Params, userIDs, addressIDs, productIDs []int64, prices []decimal.Decimal) error {
	ordersPerUser := p.Orders / p.Users
	if ordersPerUser == 0 {
		ordersPerUser = 1
	}

	// Orders first, in batches; the per-order item lists are derived
	// again afterwards from the same indices.
	batch := make([]orderRow, 0, ordersBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := db.NamedExecContext(ctx,
			`INSERT INTO orders (user_id, address_id, quantity, status, total)
			 VALUES (:user_id, :address_id, :quantity, :status, :total)`, batch)
		batch = batch[:0]
		return err
	}

	orderIndex := 0
	for userIdx, userID := range userIDs {
		for i := 0; i < ordersPerUser; i++ {
			total := decimal.Zero
			base := (orderIndex * itemsPerOrder) % p.Products
			for j := 0; j < itemsPerOrder; j++ {
				total = total.Add(prices[(base+j)%p.Products])
			}
			batch = append(batch, orderRow{
				UserID:    userID,
				AddressID: addressIDs[userIdx],
				Quantity:  itemsPerOrder,
				Status:    "pending",
				Total:     total,
			})
			orderIndex++
			if len(batch) >= ordersBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	var orderIDs []int64
	if err := db.SelectContext(ctx, &orderIDs, `SELECT id FROM orders ORDER BY id`); err != nil {
		return err
	}

	items := make([]itemRow, 0, productsBatchSize)
	flushItems := func() error {
		if len(items) == 0 {
			return nil
		}
		_, err := db.NamedExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			 VALUES (:order_id, :product_id, :quantity, :unit_price)`, items)
		items = items[:0]
		return err
	}

	for orderIdx, orderID := range orderIDs {
		base := (orderIdx * itemsPerOrder) % p.Products
		for j := 0; j < itemsPerOrder; j++ {
			productIdx := (base + j) % p.Products
			items = append(items, itemRow{
				OrderID:   orderID,
				ProductID: productIDs[productIdx],
				Quantity:  1,
				UnitPrice: prices[productIdx],
			})
		}
		if len(items) >= productsBatchSize {
			if err := flushItems(); err != nil {
				return err
			}
		}
	}
	return flushItems()
}
