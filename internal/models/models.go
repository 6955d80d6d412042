package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

type SubmitOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	QRPage  string `json:"qrPage"`
	Tips    string `json:"tips"`
}

type OrderView struct {
	OrderID       string   `json:"orderId"`
	Status        string   `json:"status"`
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     *int64   `json:"updatedAt,omitempty"`
	Raw           any      `json:"raw"`
	Amount        *float64 `json:"amount,omitempty"`
	UserID        string   `json:"userId,omitempty"`
	ClientOrderNo string   `json:"clientOrderNo,omitempty"`
}

type ReviewRequest struct {
	OrderID string `json:"orderId"`
	Action  string `json:"action"`
}

type GrantRequest struct {
	User           FlexString      `json:"user"`
	ItemID         FlexString      `json:"itemId"`
	Count          *int            `json:"count,omitempty"`
	Reason         string          `json:"reason"`
	Extra          json.RawMessage `json:"extra,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

type GrantResponse struct {
	Duplicate bool `json:"duplicate"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID       string `json:"userId"`
	Token        string `json:"token"`
	AssetsServer string `json:"assetsServer"`
	HotUpdate    bool   `json:"hotUpdate"`
}

type BattleResponse struct {
	Result     string `json:"result"`
	ExpGained  int    `json:"exp_gained"`
	GoldGained int    `json:"gold_gained"`
}

type ReviewEvent struct {
	Event string    `json:"event"`
	Order OrderView `json:"order"`
}

// FlexString accepts both JSON strings and numbers, clients send ids either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*f = FlexString(strings.TrimSpace(s))

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}

	*f = FlexString(n.String())

	return nil
}
