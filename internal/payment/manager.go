package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/VladKvetkin/mygameserver/internal/entities"
	"github.com/VladKvetkin/mygameserver/internal/models"
	"github.com/VladKvetkin/mygameserver/internal/services/converter"
	"github.com/VladKvetkin/mygameserver/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	DefaultListLimit = 100
	MaxListLimit     = 500

	qrPagePath = "/pay/qr"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidAction = errors.New("invalid action")
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderFinalized matches ErrOrderNotFound under errors.Is, callers that
	// only care about "nothing to review" need not tell them apart.
	ErrOrderFinalized = fmt.Errorf("order already reviewed: %w", ErrOrderNotFound)
	ErrStore          = errors.New("store unavailable")
)

var reviewActions = map[string]string{
	ActionApprove: entities.OrderStatusApproved,
	ActionReject:  entities.OrderStatusRejected,
}

type ReviewPublisher interface {
	Publish(models.ReviewEvent)
}

type Manager struct {
	storage   storage.Storage
	publisher ReviewPublisher
	publicURL string
	newID     func() string
}

// NewManager wires the order lifecycle to its store. publisher may be nil.
func NewManager(storage storage.Storage, publicURL string, publisher ReviewPublisher) *Manager {
	return &Manager{
		storage:   storage,
		publisher: publisher,
		publicURL: strings.TrimRight(publicURL, "/"),
		newID:     uuid.NewString,
	}
}

func (m *Manager) CreateOrder(ctx context.Context, rawBody []byte, payload map[string]any) (models.SubmitOrderResponse, error) {
	amount := extractAmount(payload)

	newOrder := entities.NewOrder{
		OrderID:       m.newID(),
		ClientOrderNo: extractString(payload, clientOrderNoFields),
		UserID:        extractString(payload, userIDFields),
		Amount:        amount,
		RawJSON:       string(rawBody),
	}

	orderID, err := m.storage.UpsertOrder(ctx, newOrder)
	if err != nil {
		zap.L().Error(
			"error upsert order",
			zap.String("orderId", newOrder.OrderID),
			zap.String("clientOrderNo", newOrder.ClientOrderNo),
			zap.Error(err),
		)

		return models.SubmitOrderResponse{}, ErrStore
	}

	zap.L().Info("order submitted", zap.String("orderId", orderID), zap.String("userId", newOrder.UserID))

	return models.SubmitOrderResponse{
		OrderID: orderID,
		Status:  entities.OrderStatusPending,
		QRPage:  m.QRPageURL(orderID),
		Tips:    paymentTips(amount),
	}, nil
}

func (m *Manager) ReviewOrder(ctx context.Context, orderID string, action string) (models.OrderView, error) {
	status, ok := reviewActions[strings.ToLower(strings.TrimSpace(action))]
	if !ok {
		return models.OrderView{}, ErrInvalidAction
	}

	if orderID == "" {
		return models.OrderView{}, ErrValidation
	}

	changed, err := m.storage.UpdateStatus(ctx, orderID, status)
	if err != nil {
		zap.L().Error("error update order status", zap.String("orderId", orderID), zap.Error(err))

		return models.OrderView{}, ErrStore
	}

	if !changed {
		return models.OrderView{}, m.explainNoop(ctx, orderID)
	}

	view, err := m.QueryStatus(ctx, orderID)
	if err != nil {
		return models.OrderView{}, err
	}

	zap.L().Info("order reviewed", zap.String("orderId", orderID), zap.String("status", status))

	if m.publisher != nil {
		m.publisher.Publish(models.ReviewEvent{Event: "order." + status, Order: view})
	}

	return view, nil
}

// explainNoop tells a missing order from one that was already decided.
func (m *Manager) explainNoop(ctx context.Context, orderID string) error {
	_, err := m.storage.GetOrder(ctx, orderID)
	switch {
	case err == nil:
		return ErrOrderFinalized
	case errors.Is(err, storage.ErrNoRows):
		return ErrOrderNotFound
	default:
		zap.L().Error("error get order", zap.String("orderId", orderID), zap.Error(err))
		return ErrOrderNotFound
	}
}

func (m *Manager) QueryStatus(ctx context.Context, orderID string) (models.OrderView, error) {
	if orderID == "" {
		return models.OrderView{}, ErrValidation
	}

	order, err := m.storage.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return models.OrderView{}, ErrOrderNotFound
		}

		zap.L().Error("error get order", zap.String("orderId", orderID), zap.Error(err))

		return models.OrderView{}, ErrStore
	}

	return ToOrderView(order), nil
}

func (m *Manager) ListOrders(ctx context.Context, status string, limit int) ([]models.OrderView, error) {
	if status != "" && !entities.IsOrderStatus(status) {
		return nil, ErrValidation
	}

	if limit <= 0 {
		limit = DefaultListLimit
	} else if limit > MaxListLimit {
		limit = MaxListLimit
	}

	orders, err := m.storage.ListOrders(ctx, status, limit)
	if err != nil {
		zap.L().Error("error list orders", zap.String("status", status), zap.Error(err))

		return nil, ErrStore
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, ToOrderView(order))
	}

	return views, nil
}

// GrantItem records an item grant. duplicate is true when the idempotency
// key was seen before and nothing new was written.
func (m *Manager) GrantItem(ctx context.Context, request models.GrantRequest) (bool, error) {
	if request.User == "" || request.ItemID == "" {
		return false, ErrValidation
	}

	count := 1
	if request.Count != nil {
		count = *request.Count
	}

	if count <= 0 {
		return false, ErrValidation
	}

	grant := entities.NewGrant{
		UserID:         string(request.User),
		ItemID:         string(request.ItemID),
		Count:          count,
		Reason:         request.Reason,
		IdempotencyKey: strings.TrimSpace(request.IdempotencyKey),
	}

	if extra := strings.TrimSpace(string(request.Extra)); extra != "" && extra != "null" {
		grant.ExtraJSON = extra
	}

	inserted, err := m.storage.InsertGrant(ctx, grant)
	if err != nil {
		zap.L().Error(
			"error insert grant",
			zap.String("userId", grant.UserID),
			zap.String("itemId", grant.ItemID),
			zap.Error(err),
		)

		return false, ErrStore
	}

	zap.L().Info(
		"item granted",
		zap.String("userId", grant.UserID),
		zap.String("itemId", grant.ItemID),
		zap.Int("count", grant.Count),
		zap.Bool("duplicate", !inserted),
	)

	return !inserted, nil
}

func (m *Manager) QRPageURL(orderID string) string {
	return m.publicURL + qrPagePath + "?orderId=" + url.QueryEscape(orderID)
}

// StatusURL is what the QR code on the pay page encodes.
func (m *Manager) StatusURL(orderID string) string {
	return m.publicURL + "/pay/status?orderId=" + url.QueryEscape(orderID)
}

func ToOrderView(order entities.Order) models.OrderView {
	view := models.OrderView{
		OrderID:   order.OrderID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt.Unix(),
		Raw:       rawPayload(order.RawJSON),
	}

	if order.UpdatedAt.Valid {
		updatedAt := order.UpdatedAt.Time.Unix()
		view.UpdatedAt = &updatedAt
	}

	if order.Amount.Valid {
		amount := order.Amount.Float64
		view.Amount = &amount
	}

	if order.UserID.Valid {
		view.UserID = order.UserID.String
	}

	if order.ClientOrderNo.Valid {
		view.ClientOrderNo = order.ClientOrderNo.String
	}

	return view
}

func rawPayload(raw string) any {
	if raw != "" && json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}

	return raw
}

func paymentTips(amount *float64) string {
	if amount == nil {
		return "Please scan the QR code to complete the payment"
	}

	return "Please scan the QR code to pay " + converter.FormatAmount(*amount)
}
