package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// CompressConfig tunes the brotli response compression.
type CompressConfig struct {
	Quality int
	// MinLength is the body size below which responses go out uncompressed.
	MinLength int
	// ExcludedPaths are path prefixes never compressed.
	ExcludedPaths []string
}

var DefaultCompressConfig = CompressConfig{
	Quality:       brotli.DefaultCompression,
	MinLength:     1024,
	ExcludedPaths: []string{"/ws/"},
}

// compressWriter holds the body back until it is known whether it reaches
// MinLength; from then on it streams through the brotli encoder.
type compressWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int
	pending   []byte
	encoder   *brotli.Writer
}

func (w *compressWriter) Write(data []byte) (int, error) {
	if w.encoder != nil {
		return w.encoder.Write(data)
	}

	w.pending = append(w.pending, data...)
	if len(w.pending) < w.minLength {
		return len(data), nil
	}

	h := w.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	w.encoder = brotli.NewWriterLevel(w.ResponseWriter, w.quality)

	if _, err := w.encoder.Write(w.pending); err != nil {
		return 0, err
	}
	w.pending = nil
	return len(data), nil
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// finish flushes whatever is buffered: plain when the body stayed short,
// otherwise it closes the encoder.
func (w *compressWriter) finish() error {
	if w.encoder != nil {
		return w.encoder.Close()
	}
	if len(w.pending) == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.pending)
	w.pending = nil
	return err
}

// Compress returns brotli compression with the default settings.
func Compress() gin.HandlerFunc {
	return CompressWithConfig(DefaultCompressConfig)
}

func CompressWithConfig(cfg CompressConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultCompressConfig.MinLength
	}

	return func(c *gin.Context) {
		if !compressible(c, cfg.ExcludedPaths) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		w := &compressWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = w

		c.Next()

		if err := w.finish(); err != nil {
			_ = c.Error(err)
		}
	}
}

// compressible rejects WebSocket upgrades, excluded paths and clients that
// did not offer br.
func compressible(c *gin.Context, excluded []string) bool {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return false
	}
	for _, prefix := range excluded {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			return false
		}
	}
	return acceptsBrotli(c.Request)
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		// drop any quality parameter, "br;q=0.8" still means br
		name := strings.TrimSpace(strings.SplitN(enc, ";", 2)[0])
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
