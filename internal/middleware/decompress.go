package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/VladKvetkin/mygameserver/internal/response"
	"go.uber.org/zap"
)

type gzipBody struct {
	reader *gzip.Reader
	body   io.ReadCloser
}

func (g *gzipBody) Read(p []byte) (int, error) {
	return g.reader.Read(p)
}

func (g *gzipBody) Close() error {
	if err := g.reader.Close(); err != nil {
		return err
	}

	return g.body.Close()
}

// DecompressBodyReader inflates gzip encoded request bodies. Mount it ahead
// of BodyLimit so the cap applies to the inflated stream.
func DecompressBodyReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		if !strings.Contains(req.Header.Get("Content-Encoding"), "gzip") {
			next.ServeHTTP(resp, req)
			return
		}

		reader, err := gzip.NewReader(req.Body)
		if err != nil {
			zap.L().Info("cannot create gzip reader", zap.Error(err))

			response.Error(resp, http.StatusBadRequest, "invalid gzip body")
			return
		}

		req.Body = &gzipBody{reader: reader, body: req.Body}
		req.Header.Del("Content-Encoding")
		req.ContentLength = -1

		next.ServeHTTP(resp, req)
	})
}
