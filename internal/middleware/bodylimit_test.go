package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBodyLimitDeclaredLength(t *testing.T) {
	called := false
	handler := BodyLimit(8)(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pay/submit", strings.NewReader("0123456789")))

	if rec.Code != http.StatusRequestEntityTooLarge || called {
		t.Fatalf("expected 413 before the handler, got %d called=%v", rec.Code, called)
	}
}

func TestBodyLimitStreamedBody(t *testing.T) {
	var readErr error
	handler := BodyLimit(8)(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		_, readErr = io.ReadAll(req.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/pay/submit", strings.NewReader("0123456789"))
	req.ContentLength = -1

	handler.ServeHTTP(httptest.NewRecorder(), req)

	var maxBytesErr *http.MaxBytesError
	if !errors.As(readErr, &maxBytesErr) {
		t.Fatalf("expected MaxBytesError, got %v", readErr)
	}
}

func TestBodyLimitAllowsSmallBodies(t *testing.T) {
	handler := BodyLimit(8)(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pay/submit", strings.NewReader("{}")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
