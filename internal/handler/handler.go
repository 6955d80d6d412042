package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/VladKvetkin/mygameserver/internal/config"
	"github.com/VladKvetkin/mygameserver/internal/payment"
	"github.com/VladKvetkin/mygameserver/internal/response"
	"github.com/VladKvetkin/mygameserver/internal/storage"
	"go.uber.org/zap"
)

type Handler struct {
	config  config.Config
	storage storage.Storage
	manager *payment.Manager
}

func NewHandler(config config.Config, storage storage.Storage, manager *payment.Manager) *Handler {
	return &Handler{
		config:  config,
		storage: storage,
		manager: manager,
	}
}

// readBody reads the capped request body, answering 413 or 400 itself when
// it cannot.
func (h *Handler) readBody(res http.ResponseWriter, req *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.Error(res, http.StatusRequestEntityTooLarge, "payload too large")
			return nil, false
		}

		zap.L().Info("cannot read request body", zap.Error(err))

		response.Error(res, http.StatusBadRequest, "cannot read request body")
		return nil, false
	}

	return body, true
}

func (h *Handler) writeLifecycleError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payment.ErrInvalidAction):
		response.Error(res, http.StatusBadRequest, "invalid action, expected approve or reject")
	case errors.Is(err, payment.ErrValidation):
		response.Error(res, http.StatusBadRequest, "invalid request")
	case errors.Is(err, payment.ErrOrderFinalized):
		response.Error(res, http.StatusNotFound, "order already reviewed")
	case errors.Is(err, payment.ErrOrderNotFound):
		response.Error(res, http.StatusNotFound, "order not found")
	default:
		response.Error(res, http.StatusInternalServerError, "internal error")
	}
}
