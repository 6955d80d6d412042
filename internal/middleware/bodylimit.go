package middleware

import (
	"net/http"

	"github.com/VladKvetkin/mygameserver/internal/response"
)

// BodyLimit rejects bodies that declare more than max bytes and caps the
// reader for the rest; handlers see *http.MaxBytesError past the cap.
func BodyLimit(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			if req.ContentLength > max {
				response.Error(resp, http.StatusRequestEntityTooLarge, "payload too large")
				return
			}

			if req.Body != nil {
				req.Body = http.MaxBytesReader(resp, req.Body, max)
			}

			next.ServeHTTP(resp, req)
		})
	}
}
