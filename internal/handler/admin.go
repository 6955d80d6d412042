package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/VladKvetkin/mygameserver/internal/models"
	"github.com/VladKvetkin/mygameserver/internal/response"
	"go.uber.org/zap"
)

func (h *Handler) ReviewPayment(res http.ResponseWriter, req *http.Request) {
	body, ok := h.readBody(res, req)
	if !ok {
		return
	}

	var reviewRequest models.ReviewRequest
	if err := json.Unmarshal(body, &reviewRequest); err != nil {
		zap.L().Info("cannot decode review request", zap.Error(err))

		response.Error(res, http.StatusBadRequest, "invalid json")
		return
	}

	view, err := h.manager.ReviewOrder(req.Context(), reviewRequest.OrderID, reviewRequest.Action)
	if err != nil {
		h.writeLifecycleError(res, err)
		return
	}

	response.OK(res, view)
}

func (h *Handler) ListPayments(res http.ResponseWriter, req *http.Request) {
	limit := 0

	if rawLimit := req.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			response.Error(res, http.StatusBadRequest, "invalid limit")
			return
		}

		limit = parsed
	}

	views, err := h.manager.ListOrders(req.Context(), req.URL.Query().Get("status"), limit)
	if err != nil {
		h.writeLifecycleError(res, err)
		return
	}

	response.OK(res, views)
}

func (h *Handler) GrantItem(res http.ResponseWriter, req *http.Request) {
	body, ok := h.readBody(res, req)
	if !ok {
		return
	}

	var grantRequest models.GrantRequest
	if err := json.Unmarshal(body, &grantRequest); err != nil {
		zap.L().Info("cannot decode grant request", zap.Error(err))

		response.Error(res, http.StatusBadRequest, "invalid json")
		return
	}

	if grantRequest.User == "" || grantRequest.ItemID == "" {
		response.Error(res, http.StatusBadRequest, "user and itemId are required")
		return
	}

	duplicate, err := h.manager.GrantItem(req.Context(), grantRequest)
	if err != nil {
		h.writeLifecycleError(res, err)
		return
	}

	response.OK(res, models.GrantResponse{Duplicate: duplicate})
}
