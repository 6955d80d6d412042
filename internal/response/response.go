package response

import (
	"encoding/json"
	"net/http"

	"github.com/VladKvetkin/mygameserver/internal/models"
	"go.uber.org/zap"
)

// JSON writes the envelope with the given HTTP status.
func JSON(res http.ResponseWriter, status int, body models.Response) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)

	jsonEncoder := json.NewEncoder(res)
	if err := jsonEncoder.Encode(body); err != nil {
		zap.L().Info("cannot encode response JSON body", zap.Error(err))
	}
}

func OK(res http.ResponseWriter, data any) {
	JSON(res, http.StatusOK, models.Response{Code: 0, Msg: "ok", Data: data})
}

// Error writes an error envelope whose code mirrors the HTTP status.
func Error(res http.ResponseWriter, status int, msg string) {
	JSON(res, status, models.Response{Code: status, Msg: msg})
}
