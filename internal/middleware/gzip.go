package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// compressWriter пишет тело ответа через gzip
type compressWriter struct {
	http.ResponseWriter
	writer io.Writer
}

func (cw *compressWriter) Write(data []byte) (int, error) {
	return cw.writer.Write(data)
}

// Gzip сжимает ответ, если клиент поддерживает gzip, как nginx с "gzip on"
func Gzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzip.NewWriter(w)
		defer gw.Close()

		next.ServeHTTP(&compressWriter{ResponseWriter: w, writer: gw}, r)
	})
}
