package payment

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
)

// Field aliases in lookup order; the first usable value wins.
var (
	amountFields        = []string{"amount", "price", "money", "fee"}
	userIDFields        = []string{"userId", "user_id", "uid", "user"}
	clientOrderNoFields = []string{"clientOrderNo", "client_order_no", "outTradeNo", "out_trade_no"}
)

// ParsePayload decodes a submission body leniently: anything that is not a
// JSON object yields an empty payload.
func ParsePayload(raw []byte) map[string]any {
	payload := map[string]any{}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	if err := decoder.Decode(&payload); err != nil || payload == nil {
		return map[string]any{}
	}

	if _, err := decoder.Token(); err != io.EOF {
		return map[string]any{}
	}

	return payload
}

func extractAmount(payload map[string]any) *float64 {
	for _, field := range amountFields {
		if amount, ok := toFloat(payload[field]); ok {
			return &amount
		}
	}

	return nil
}

func extractString(payload map[string]any, fields []string) string {
	for _, field := range fields {
		if value, ok := toString(payload[field]); ok {
			return value
		}
	}

	return ""
}

func toFloat(value any) (float64, bool) {
	var (
		f   float64
		err error
	)

	switch v := value.(type) {
	case json.Number:
		f, err = v.Float64()
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, false
	}

	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func toString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}

	return "", false
}
