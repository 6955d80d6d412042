// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/VladKvetkin/mygameserver/internal/entities"
	"github.com/VladKvetkin/mygameserver/internal/storage"
)

type MemoryStorage struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]*entities.Order
	grants []entities.Grant

	// Err, when set, is returned by every operation.
	Err error
	Now func() time.Time
}

var _ storage.Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		orders: make(map[string]*entities.Order),
		Now:    time.Now,
	}
}

func (s *MemoryStorage) UpsertOrder(_ context.Context, order entities.NewOrder) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}

	now := s.Now()

	if order.ClientOrderNo != "" {
		for _, existing := range s.orders {
			if existing.ClientOrderNo.String == order.ClientOrderNo {
				existing.RawJSON = order.RawJSON
				if existing.Status == entities.OrderStatusPending {
					existing.UserID = nullString(order.UserID)
					existing.Amount = nullFloat(order.Amount)
				}
				existing.UpdatedAt = sql.NullTime{Time: now, Valid: true}

				return existing.OrderID, nil
			}
		}
	}

	if existing, ok := s.orders[order.OrderID]; ok {
		existing.RawJSON = order.RawJSON
		existing.UpdatedAt = sql.NullTime{Time: now, Valid: true}

		return existing.OrderID, nil
	}

	s.seq++
	s.orders[order.OrderID] = &entities.Order{
		ID:            s.seq,
		OrderID:       order.OrderID,
		ClientOrderNo: nullString(order.ClientOrderNo),
		UserID:        nullString(order.UserID),
		Amount:        nullFloat(order.Amount),
		Status:        entities.OrderStatusPending,
		RawJSON:       order.RawJSON,
		CreatedAt:     now,
		UpdatedAt:     sql.NullTime{Time: now, Valid: true},
	}

	return order.OrderID, nil
}

func (s *MemoryStorage) GetOrder(_ context.Context, orderID string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return entities.Order{}, s.Err
	}

	order, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, storage.ErrNoRows
	}

	return *order, nil
}

func (s *MemoryStorage) UpdateStatus(_ context.Context, orderID string, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return false, s.Err
	}

	order, ok := s.orders[orderID]
	if !ok || order.Status != entities.OrderStatusPending {
		return false, nil
	}

	order.Status = status
	order.UpdatedAt = sql.NullTime{Time: s.Now(), Valid: true}

	return true, nil
}

func (s *MemoryStorage) ListOrders(_ context.Context, status string, limit int) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	orders := []entities.Order{}
	for _, order := range s.orders {
		if status == "" || order.Status == status {
			orders = append(orders, *order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	if len(orders) > limit {
		orders = orders[:limit]
	}

	return orders, nil
}

func (s *MemoryStorage) InsertGrant(_ context.Context, grant entities.NewGrant) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return false, s.Err
	}

	if grant.IdempotencyKey != "" {
		for _, existing := range s.grants {
			if existing.IdempotencyKey.String == grant.IdempotencyKey {
				return false, nil
			}
		}
	}

	s.grants = append(s.grants, entities.Grant{
		ID:             int64(len(s.grants) + 1),
		UserID:         grant.UserID,
		ItemID:         grant.ItemID,
		Count:          grant.Count,
		Reason:         grant.Reason,
		ExtraJSON:      nullString(grant.ExtraJSON),
		IdempotencyKey: nullString(grant.IdempotencyKey),
		CreatedAt:      s.Now(),
	})

	return true, nil
}

func (s *MemoryStorage) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Err
}

// Orders returns the number of stored orders.
func (s *MemoryStorage) Orders() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.orders)
}

func (s *MemoryStorage) Grants() []entities.Grant {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entities.Grant(nil), s.grants...)
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *value, Valid: true}
}
