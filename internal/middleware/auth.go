package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/VladKvetkin/mygameserver/internal/response"
	"github.com/VladKvetkin/mygameserver/internal/services/jwttoken"
)

type UserIDKey struct{}

const TokenCookieName = "token"

// PlayerAuth accepts the session issued by the mock login, either as the
// token cookie or as a bearer header.
func PlayerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			token := bearerToken(req)
			if token == "" {
				if tokenCookie, err := req.Cookie(TokenCookieName); err == nil {
					token = tokenCookie.Value
				}
			}

			if token == "" {
				response.Error(resp, http.StatusUnauthorized, "login required")
				return
			}

			userID, err := jwttoken.Parse(token, secret)
			if err != nil {
				response.Error(resp, http.StatusUnauthorized, "invalid session")
				return
			}

			req = req.WithContext(context.WithValue(req.Context(), UserIDKey{}, userID))

			next.ServeHTTP(resp, req)
		})
	}
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")

	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}

	return ""
}
