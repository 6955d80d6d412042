package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/VladKvetkin/mygameserver/internal/response"
	"go.uber.org/zap"
)

type Limiter interface {
	Admit(key string, limit int, window time.Duration) bool
}

// RateLimit admits at most limit requests per client IP and window for the
// named operation.
func RateLimit(limiter Limiter, name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			ip := clientIP(req)

			if !limiter.Admit(name+":"+ip, limit, window) {
				zap.L().Info("rate limited", zap.String("operation", name), zap.String("ip", ip))

				resp.Header().Set("Retry-After", retryAfter(window))
				response.Error(resp, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(resp, req)
		})
	}
}

// clientIP is the peer address, or the forwarded one when RealIP is mounted.
func clientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}

func retryAfter(window time.Duration) string {
	seconds := int64(window / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	return strconv.FormatInt(seconds, 10)
}
