package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VladKvetkin/mygameserver/internal/config"
)

// echoHandler replies 200 with the body it received, to prove the gate
// leaves the body readable.
var echoHandler = http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	res.WriteHeader(http.StatusOK)
	res.Write(body)
})

func serveAdmin(security config.SecurityConfig, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	AdminGate(security)(echoHandler).ServeHTTP(rec, req)
	return rec
}

func TestAdminGateDisabledModes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/pay/list", nil)

	if rec := serveAdmin(config.SecurityConfig{}, req); rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through with both modes disabled, got %d", rec.Code)
	}
}

func TestAdminGateBearerChannels(t *testing.T) {
	security := config.SecurityConfig{EnableAuth: true, AdminToken: "s3cret"}

	tests := []struct {
		name    string
		request func() *http.Request
	}{
		{"header", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/admin/pay/review", nil)
			req.Header.Set("Authorization", "Bearer s3cret")
			return req
		}},
		{"cookie", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/admin/pay/review", nil)
			req.AddCookie(&http.Cookie{Name: AdminTokenCookieName, Value: "s3cret"})
			return req
		}},
		{"query", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/admin/pay/review?token=s3cret", nil)
		}},
		{"json body", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/admin/pay/review", strings.NewReader(`{"token":"s3cret","orderId":"x"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveAdmin(security, tt.request())
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestAdminGateBodyIsRestored(t *testing.T) {
	security := config.SecurityConfig{EnableAuth: true, AdminToken: "s3cret"}
	body := `{"token":"s3cret","orderId":"abc","action":"approve"}`

	rec := serveAdmin(security, httptest.NewRequest(http.MethodPost, "/admin/pay/review", strings.NewReader(body)))

	if rec.Code != http.StatusOK || rec.Body.String() != body {
		t.Fatalf("expected body to reach the handler, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAdminGateBearerRejects(t *testing.T) {
	tests := []struct {
		name     string
		security config.SecurityConfig
		request  *http.Request
	}{
		{
			"no token",
			config.SecurityConfig{EnableAuth: true, AdminToken: "s3cret"},
			httptest.NewRequest(http.MethodPost, "/admin/pay/review", nil),
		},
		{
			"wrong token",
			config.SecurityConfig{EnableAuth: true, AdminToken: "s3cret"},
			httptest.NewRequest(http.MethodPost, "/admin/pay/review?token=nope", nil),
		},
		{
			"empty configured token",
			config.SecurityConfig{EnableAuth: true},
			httptest.NewRequest(http.MethodPost, "/admin/pay/review?token=", nil),
		},
		{
			"malformed body",
			config.SecurityConfig{EnableAuth: true, AdminToken: "s3cret"},
			httptest.NewRequest(http.MethodPost, "/admin/pay/review", strings.NewReader("{not json")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveAdmin(tt.security, tt.request)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") != "" {
				t.Fatal("bearer mode must not send a basic challenge")
			}
		})
	}
}

func TestAdminGateBasic(t *testing.T) {
	security := config.SecurityConfig{EnableBasic: true, AdminUser: "admin", AdminPass: "pw"}

	req := httptest.NewRequest(http.MethodGet, "/admin/pay/list", nil)
	rec := serveAdmin(security, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Basic") {
		t.Fatalf("expected basic challenge, got %q", rec.Header().Get("WWW-Authenticate"))
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/pay/list", nil)
	req.SetBasicAuth("admin", "wrong")
	if rec := serveAdmin(security, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong password, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/pay/list", nil)
	req.SetBasicAuth("admin", "pw")
	if rec := serveAdmin(security, req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid credentials, got %d", rec.Code)
	}
}

func TestAdminGateBothModes(t *testing.T) {
	security := config.SecurityConfig{
		EnableBasic: true,
		AdminUser:   "admin",
		AdminPass:   "pw",
		EnableAuth:  true,
		AdminToken:  "s3cret",
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/pay/list", nil)
	req.SetBasicAuth("admin", "pw")
	if rec := serveAdmin(security, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("basic alone must not pass when the token is also required, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/pay/list?token=s3cret", nil)
	if rec := serveAdmin(security, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("token alone must not pass when basic is also required, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/pay/list?token=s3cret", nil)
	req.SetBasicAuth("admin", "pw")
	if rec := serveAdmin(security, req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with both checks satisfied, got %d", rec.Code)
	}
}

func TestAdminGateBodyTooLarge(t *testing.T) {
	security := config.SecurityConfig{EnableAuth: true, AdminToken: "s3cret"}

	req := httptest.NewRequest(http.MethodPost, "/admin/pay/review", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	BodyLimit(16)(AdminGate(security)(echoHandler)).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
