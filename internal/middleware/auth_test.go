package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VladKvetkin/mygameserver/internal/services/jwttoken"
)

func TestPlayerAuth(t *testing.T) {
	var gotUserID string
	handler := PlayerAuth("secret")(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		gotUserID, _ = req.Context().Value(UserIDKey{}).(string)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/battle/start", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	token, err := jwttoken.Generate("player-7", "secret")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/battle/start", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || gotUserID != "player-7" {
		t.Fatalf("expected session user, got %d %q", rec.Code, gotUserID)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/battle/start", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an invalid token, got %d", rec.Code)
	}
}
