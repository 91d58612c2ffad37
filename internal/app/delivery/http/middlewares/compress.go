package middlewares

import (
	"bytes"
	"net/http"
	"slotbook-service/internal/pkg/constvars"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
)

const minCompressSize = 1024

type bufferedWriter struct {
	header     http.Header
	statusCode int
	body       bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(code int) {
	b.statusCode = code
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

// Compress brotli-encodes response bodies for clients that accept br. The
// whole response is buffered, so event streams must not be routed through it.
func (m *Middlewares) Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsBrotli(r.Header.Get(constvars.HeaderAcceptEncoding)) {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferedWriter{header: w.Header(), statusCode: http.StatusOK}
		next.ServeHTTP(buf, r)
		w.Header().Add(constvars.HeaderVary, constvars.HeaderAcceptEncoding)

		body := buf.body.Bytes()
		if len(body) < minCompressSize {
			w.WriteHeader(buf.statusCode)
			w.Write(body)
			return
		}

		var out bytes.Buffer
		bw := brotli.NewWriterLevel(&out, brotli.DefaultCompression)
		_, err := bw.Write(body)
		if err == nil {
			err = bw.Close()
		}
		if err != nil {
			m.Log.Warn("brotli encoding failed, sending identity body",
				zap.String(constvars.LoggingMethodKey, "middlewares.Compress"),
				zap.Error(err),
			)
			w.WriteHeader(buf.statusCode)
			w.Write(body)
			return
		}

		w.Header().Set(constvars.HeaderContentEncoding, constvars.EncodingBrotli)
		w.Header().Del(constvars.HeaderContentLength)
		w.WriteHeader(buf.statusCode)
		w.Write(out.Bytes())
	})
}

// acceptsBrotli reports whether br is listed without a zero quality value.
func acceptsBrotli(acceptEncoding string) bool {
	for _, part := range strings.Split(acceptEncoding, ",") {
		coding, params, _ := strings.Cut(part, ";")
		if strings.TrimSpace(coding) != constvars.EncodingBrotli {
			continue
		}
		q, ok := strings.CutPrefix(strings.ReplaceAll(params, " ", ""), "q=")
		if !ok {
			return true
		}
		weight, err := strconv.ParseFloat(q, 64)
		return err == nil && weight > 0
	}
	return false
}
