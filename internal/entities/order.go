package entities

import (
	"database/sql"
	"time"
)

const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
)

type Order struct {
	ID            int64           `db:"id"`
	OrderID       string          `db:"order_id"`
	ClientOrderNo sql.NullString  `db:"client_order_no"`
	UserID        sql.NullString  `db:"user_id"`
	Amount        sql.NullFloat64 `db:"amount"`
	Status        string          `db:"status"`
	RawJSON       string          `db:"raw_json"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     sql.NullTime    `db:"updated_at"`
}

// NewOrder carries the fields of an order submission before it is persisted.
type NewOrder struct {
	OrderID       string
	ClientOrderNo string
	UserID        string
	Amount        *float64
	RawJSON       string
}

func IsOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected:
		return true
	}

	return false
}
