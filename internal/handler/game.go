package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/VladKvetkin/mygameserver/internal/middleware"
	"github.com/VladKvetkin/mygameserver/internal/models"
	"github.com/VladKvetkin/mygameserver/internal/response"
	"github.com/VladKvetkin/mygameserver/internal/services/jwttoken"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) Index(res http.ResponseWriter, req *http.Request) {
	res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	res.WriteHeader(http.StatusOK)
	res.Write([]byte("game server is running"))
}

func (h *Handler) Health(res http.ResponseWriter, req *http.Request) {
	if err := h.storage.Ping(req.Context()); err != nil {
		zap.L().Error("health check failed", zap.Error(err))

		response.Error(res, http.StatusInternalServerError, "database unavailable")
		return
	}

	response.OK(res, nil)
}

// Login is a mock: any username is accepted and gets a session.
func (h *Handler) Login(res http.ResponseWriter, req *http.Request) {
	body, ok := h.readBody(res, req)
	if !ok {
		return
	}

	var loginRequest models.LoginRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &loginRequest); err != nil {
			response.Error(res, http.StatusBadRequest, "invalid json")
			return
		}
	}

	userID := strings.TrimSpace(loginRequest.Username)
	if userID == "" {
		userID = "guest-" + uuid.NewString()[:8]
	}

	accessToken, err := jwttoken.Generate(userID, h.config.Security.SessionSecret)
	if err != nil {
		zap.L().Info("error generate session token", zap.Error(err))

		response.Error(res, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(res, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
	})

	response.OK(res, models.LoginResponse{
		UserID:       userID,
		Token:        accessToken,
		AssetsServer: h.config.Game.AssetsServer,
		HotUpdate:    h.config.Game.HotUpdateEnabled,
	})
}

// StartBattle always reports the same victory.
func (h *Handler) StartBattle(res http.ResponseWriter, req *http.Request) {
	userID, _ := req.Context().Value(middleware.UserIDKey{}).(string)

	zap.L().Debug("battle started", zap.String("userId", userID))

	response.OK(res, models.BattleResponse{
		Result:     "victory",
		ExpGained:  99999,
		GoldGained: 88888,
	})
}
