package middleware

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/VladKvetkin/mygameserver/internal/config"
	"github.com/VladKvetkin/mygameserver/internal/response"
	"go.uber.org/zap"
)

const (
	AdminTokenCookieName = "admin_token"
	AdminTokenQueryParam = "token"

	basicChallenge = `Basic realm="admin", charset="UTF-8"`
)

// AdminGate guards privileged routes. Basic auth and the admin token are
// independent checks; each runs only when enabled and every enabled check
// has to pass.
func AdminGate(security config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			if security.EnableBasic && !checkBasic(req, security.AdminUser, security.AdminPass) {
				zap.L().Info("admin basic auth failed", zap.String("remote", req.RemoteAddr), zap.String("path", req.URL.Path))

				resp.Header().Set("WWW-Authenticate", basicChallenge)
				response.Error(resp, http.StatusUnauthorized, "unauthorized")
				return
			}

			if security.EnableAuth {
				token, err := adminToken(req)
				if err != nil {
					var maxBytesErr *http.MaxBytesError
					if errors.As(err, &maxBytesErr) {
						response.Error(resp, http.StatusRequestEntityTooLarge, "payload too large")
						return
					}

					response.Error(resp, http.StatusBadRequest, "cannot read request body")
					return
				}

				if !secureEqual(token, security.AdminToken) {
					zap.L().Info("admin token rejected", zap.String("remote", req.RemoteAddr), zap.String("path", req.URL.Path))

					response.Error(resp, http.StatusUnauthorized, "unauthorized")
					return
				}
			}

			next.ServeHTTP(resp, req)
		})
	}
}

func checkBasic(req *http.Request, user string, pass string) bool {
	gotUser, gotPass, ok := req.BasicAuth()
	if !ok {
		return false
	}

	userOK := secureEqual(gotUser, user)
	passOK := secureEqual(gotPass, pass)

	return userOK && passOK
}

// adminToken looks in the Authorization header, the cookie, the query string
// and finally a JSON body field, in that order. The body is restored for the
// next handler.
func adminToken(req *http.Request) (string, error) {
	if token := bearerToken(req); token != "" {
		return token, nil
	}

	if cookie, err := req.Cookie(AdminTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	if token := req.URL.Query().Get(AdminTokenQueryParam); token != "" {
		return token, nil
	}

	if req.Body == nil || req.Body == http.NoBody {
		return "", nil
	}

	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		return "", err
	}

	req.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var body struct {
		Token string `json:"token"`
	}

	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return "", nil
	}

	return body.Token, nil
}

// secureEqual never matches an empty expected value.
func secureEqual(got string, want string) bool {
	if want == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
