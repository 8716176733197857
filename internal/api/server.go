package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danslapman/stubbery/internal/admin"
	"github.com/danslapman/stubbery/internal/api/handlers"
	"github.com/danslapman/stubbery/internal/logging"
	"github.com/danslapman/stubbery/internal/response"
	"github.com/danslapman/stubbery/internal/store"
)

// Server is the HTTP front end wiring the exec and admin surfaces to a
// store.Store, following the teacher's NewServer-builds-a-Router-then-
// wraps-it-in-middleware shape.
type Server struct {
	httpServer *http.Server
	store      store.Store
	startTime  time.Time
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	AdminLocalOnly bool
	Origin         string
}

// NewServer wires the router, handlers, and middleware chain for s.
func NewServer(cfg ServerConfig, s store.Store) *Server {
	startTime := time.Now()

	adm := admin.New(s)
	adminHandler := handlers.NewAdminHandler(adm)
	execHandler := handlers.NewExecHandler(s)

	router := NewRouter()
	router.POST("/admin/stub", adminHandler.CreateStub)
	router.POST("/admin/state/search", adminHandler.FetchStates)
	router.GET("/exec/*", execHandler.Exec)
	router.POST("/exec/*", execHandler.Exec)
	router.GET("/healthz", healthz)
	router.GET("/metrics", promhttp.Handler().ServeHTTP)

	var handler http.Handler = router
	handler = JSONBody(handler)
	handler = adminLocalOnly(cfg.AdminLocalOnly)(handler)
	handler = CORSWithOrigin(cfg.Origin)(handler)
	handler = Logger(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		store:     s,
		startTime: startTime,
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// adminLocalOnly applies LocalOnly only to the /admin/ prefix, leaving the
// /exec/ surface reachable from anywhere — an admin interface shouldn't be
// internet-facing by default, but stubbed endpoints obviously must be.
func adminLocalOnly(enabled bool) func(http.Handler) http.Handler {
	guarded := LocalOnly(enabled)
	return func(next http.Handler) http.Handler {
		guardedNext := guarded(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) >= 7 && r.URL.Path[:7] == "/admin/" {
				guardedNext.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	logging.Infof("stubbery running on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
