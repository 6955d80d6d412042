package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VladKvetkin/mygameserver/internal/entities"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrConflict = errors.New("conflict")
	ErrNoRows   = errors.New("no rows")
)

const defaultQueryTimeout = 5 * time.Second

type Storage interface {
	UpsertOrder(context.Context, entities.NewOrder) (string, error)
	GetOrder(context.Context, string) (entities.Order, error)
	UpdateStatus(context.Context, string, string) (bool, error)
	ListOrders(context.Context, string, int) ([]entities.Order, error)

	InsertGrant(context.Context, entities.NewGrant) (bool, error)

	Ping(context.Context) error
}

type PostgresStorage struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// NewPostgresStorage runs the schema migrations and returns a storage that
// borrows one pooled connection per operation.
func NewPostgresStorage(db *sqlx.DB, queryTimeout time.Duration) (*PostgresStorage, error) {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}

	storage := &PostgresStorage{db: db, queryTimeout: queryTimeout}

	err := storage.runMigrations(context.Background())
	if err != nil {
		return nil, err
	}

	return storage, nil
}

// withConn acquires a connection under the per-operation deadline and hands
// it back to the pool on every return path.
func (s *PostgresStorage) withConn(ctx context.Context, fn func(context.Context, *sqlx.Conn) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("error acquire connection: %w", err)
	}

	defer conn.Close()

	return fn(ctx, conn)
}

func (s *PostgresStorage) UpsertOrder(ctx context.Context, order entities.NewOrder) (string, error) {
	query := `INSERT INTO orders (order_id, client_order_no, user_id, amount, status, raw_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id) DO UPDATE
		SET raw_json = EXCLUDED.raw_json, updated_at = NOW()
		RETURNING order_id;`

	if order.ClientOrderNo != "" {
		query = `INSERT INTO orders (order_id, client_order_no, user_id, amount, status, raw_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_order_no) DO UPDATE
		SET raw_json = EXCLUDED.raw_json,
			user_id = CASE WHEN orders.status = 'pending' THEN EXCLUDED.user_id ELSE orders.user_id END,
			amount = CASE WHEN orders.status = 'pending' THEN EXCLUDED.amount ELSE orders.amount END,
			updated_at = NOW()
		RETURNING order_id;`
	}

	var orderID string

	err := s.withConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		return conn.QueryRowxContext(
			ctx,
			query,
			order.OrderID,
			nullString(order.ClientOrderNo),
			nullString(order.UserID),
			nullFloat(order.Amount),
			entities.OrderStatusPending,
			textSafe(order.RawJSON),
		).Scan(&orderID)
	})

	if err != nil {
		if isIntegrityViolation(err) {
			return "", ErrConflict
		}

		return "", fmt.Errorf("error upsert order: %w", err)
	}

	return orderID, nil
}

func (s *PostgresStorage) GetOrder(ctx context.Context, orderID string) (entities.Order, error) {
	var order entities.Order

	err := s.withConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &order, `SELECT * FROM orders WHERE order_id = $1;`, orderID)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Order{}, ErrNoRows
		}

		return entities.Order{}, fmt.Errorf("error get order: %w", err)
	}

	return order, nil
}

func (s *PostgresStorage) UpdateStatus(ctx context.Context, orderID string, status string) (bool, error) {
	var affected int64

	err := s.withConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		result, err := conn.ExecContext(
			ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE order_id = $2 AND status = $3;`,
			status, orderID, entities.OrderStatusPending,
		)
		if err != nil {
			return err
		}

		affected, err = result.RowsAffected()

		return err
	})

	if err != nil {
		return false, fmt.Errorf("error update order status: %w", err)
	}

	return affected == 1, nil
}

func (s *PostgresStorage) ListOrders(ctx context.Context, status string, limit int) ([]entities.Order, error) {
	orders := []entities.Order{}

	err := s.withConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		if status == "" {
			return conn.SelectContext(ctx, &orders, `SELECT * FROM orders ORDER BY created_at DESC LIMIT $1;`, limit)
		}

		return conn.SelectContext(ctx, &orders, `SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2;`, status, limit)
	})

	if err != nil {
		return nil, fmt.Errorf("error list orders: %w", err)
	}

	return orders, nil
}

// InsertGrant appends a grant record. It reports false without error when
// the idempotency key has already been recorded.
func (s *PostgresStorage) InsertGrant(ctx context.Context, grant entities.NewGrant) (bool, error) {
	var affected int64

	err := s.withConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		result, err := conn.ExecContext(
			ctx,
			`INSERT INTO grants (user_id, item_id, count, reason, extra_json, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (idempotency_key) DO NOTHING;`,
			textSafe(grant.UserID), textSafe(grant.ItemID), grant.Count, textSafe(grant.Reason),
			nullString(grant.ExtraJSON), nullString(grant.IdempotencyKey),
		)
		if err != nil {
			return err
		}

		affected, err = result.RowsAffected()

		return err
	})

	if err != nil {
		if isIntegrityViolation(err) {
			return false, ErrConflict
		}

		return false, fmt.Errorf("error insert grant: %w", err)
	}

	return affected == 1, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		return conn.PingContext(ctx)
	})
}

func (s *PostgresStorage) runMigrations(ctx context.Context) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`
		CREATE TABLE IF NOT EXISTS orders(
			id BIGSERIAL PRIMARY KEY,
			order_id VARCHAR(64) NOT NULL UNIQUE,
			client_order_no VARCHAR(128) UNIQUE,
			user_id VARCHAR(128),
			amount DOUBLE PRECISION,
			status VARCHAR(16) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
			raw_json TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
		`,
	)

	if err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`
		CREATE TABLE IF NOT EXISTS grants(
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			item_id VARCHAR(128) NOT NULL,
			count INT NOT NULL DEFAULT 1 CHECK (count > 0),
			reason TEXT NOT NULL DEFAULT '',
			extra_json JSONB,
			idempotency_key VARCHAR(128) UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`,
	)

	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS orders_status_created_at_idx ON orders (status, created_at DESC);`)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func isIntegrityViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pgerrcode.IsIntegrityConstraintViolation(string(pqErr.Code))
}

func nullString(value string) sql.NullString {
	value = textSafe(value)

	return sql.NullString{String: value, Valid: value != ""}
}

// textSafe makes a string acceptable to a UTF8 TEXT column: invalid bytes
// become U+FFFD and NUL bytes are dropped.
func textSafe(value string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(value, "\uFFFD"), "\x00", "")
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *value, Valid: true}
}
