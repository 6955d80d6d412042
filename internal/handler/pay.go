package handler

import (
	"net/http"

	"github.com/VladKvetkin/mygameserver/internal/payment"
	"github.com/VladKvetkin/mygameserver/internal/response"
	"github.com/VladKvetkin/mygameserver/internal/services/qrcode"
	"go.uber.org/zap"
)

func (h *Handler) SubmitPayment(res http.ResponseWriter, req *http.Request) {
	body, ok := h.readBody(res, req)
	if !ok {
		return
	}

	order, err := h.manager.CreateOrder(req.Context(), body, payment.ParsePayload(body))
	if err != nil {
		h.writeLifecycleError(res, err)
		return
	}

	response.OK(res, order)
}

func (h *Handler) PaymentStatus(res http.ResponseWriter, req *http.Request) {
	orderID := req.URL.Query().Get("orderId")
	if orderID == "" {
		response.Error(res, http.StatusBadRequest, "orderId is required")
		return
	}

	view, err := h.manager.QueryStatus(req.Context(), orderID)
	if err != nil {
		h.writeLifecycleError(res, err)
		return
	}

	response.OK(res, view)
}

// PaymentQR serves the scan-to-pay image for a known order.
func (h *Handler) PaymentQR(res http.ResponseWriter, req *http.Request) {
	orderID := req.URL.Query().Get("orderId")
	if orderID == "" {
		response.Error(res, http.StatusBadRequest, "orderId is required")
		return
	}

	if _, err := h.manager.QueryStatus(req.Context(), orderID); err != nil {
		h.writeLifecycleError(res, err)
		return
	}

	image, err := qrcode.PNG(h.manager.StatusURL(orderID))
	if err != nil {
		zap.L().Info("error generate qr code", zap.String("orderId", orderID), zap.Error(err))

		response.Error(res, http.StatusInternalServerError, "internal error")
		return
	}

	res.Header().Set("Content-Type", "image/png")
	res.Header().Set("Cache-Control", "no-store")
	res.WriteHeader(http.StatusOK)

	if _, err := res.Write(image); err != nil {
		zap.L().Info("cannot write qr code", zap.Error(err))
	}
}
