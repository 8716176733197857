package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danslapman/stubbery/internal/logging"
	"github.com/danslapman/stubbery/internal/response"
)

// Logger middleware logs every request with its method, path, status, and
// latency as structured fields, rather than the teacher's plain
// log.Printf line.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logging.WithFields(logging.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start).String(),
		}).Info("handled request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// CORSWithOrigin middleware adds CORS headers with a specific origin.
func CORSWithOrigin(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Api-Key")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LocalOnly middleware only allows localhost connections, used to lock
// down the admin surface separately from the exec surface.
func LocalOnly(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := r.RemoteAddr
			if host, _, err := net.SplitHostPort(clientIP); err == nil {
				clientIP = host
			}

			if clientIP == "127.0.0.1" || clientIP == "::1" || clientIP == "localhost" {
				next.ServeHTTP(w, r)
				return
			}

			response.WriteError(w, http.StatusForbidden, "forbidden", "only localhost connections allowed")
		})
	}
}

// JSONBody middleware validates that POST/PUT bodies claiming a JSON (or
// unspecified) content type actually parse as JSON, before a handler ever
// sees them, and re-wraps the body so handlers can still read it. Scoped
// to the /admin/ surface only — /exec/ accepts raw, non-JSON bodies for
// RequestRaw-mode stubs and must not be rejected here.
func JSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/admin/") {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == "POST" || r.Method == "PUT" {
			contentType := r.Header.Get("Content-Type")
			if strings.HasPrefix(contentType, "application/json") || contentType == "" {
				body, err := io.ReadAll(r.Body)
				r.Body.Close()
				if err != nil {
					response.WriteError(w, http.StatusBadRequest, response.ErrCodeInvalidJSON, "error reading request body")
					return
				}

				if len(body) > 0 && !json.Valid(body) {
					response.WriteError(w, http.StatusBadRequest, response.ErrCodeInvalidJSON, "unable to parse body as JSON")
					return
				}

				r.Body = io.NopCloser(bytes.NewReader(body))
			}
		}

		next.ServeHTTP(w, r)
	})
}
