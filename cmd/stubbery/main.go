// Command stubbery runs the stub server: it loads configuration from the
// environment, wires a store (Postgres if configured, otherwise an
// in-memory default), and serves the exec and admin HTTP surfaces until
// interrupted.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danslapman/stubbery/internal/api"
	"github.com/danslapman/stubbery/internal/config"
	"github.com/danslapman/stubbery/internal/logging"
	"github.com/danslapman/stubbery/internal/store"
	"github.com/danslapman/stubbery/internal/store/memstore"
	"github.com/danslapman/stubbery/internal/store/pgstore"
)

func main() {
	var (
		host           = flag.String("host", "", "host to bind to (overrides STUBBERY_HOST)")
		port           = flag.Int("port", 0, "port to listen on (overrides STUBBERY_PORT)")
		adminLocalOnly = flag.Bool("admin-local-only", true, "restrict /admin/ to localhost")
		origin         = flag.String("origin", "*", "Access-Control-Allow-Origin value")
	)
	flag.Parse()

	cfg := config.Load()
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}

	var st store.Store
	if cfg.UsePostgres {
		pg, err := pgstore.Open(cfg.Postgres)
		if err != nil {
			logging.Errorf("failed to connect to postgres: %v", err)
			os.Exit(1)
		}
		if err := pg.InitSchema(); err != nil {
			logging.Errorf("failed to init schema: %v", err)
			os.Exit(1)
		}
		st = pg
		logging.Infof("using postgres store at %s:%d/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	} else {
		st = memstore.New()
		logging.Infof("using in-memory store")
	}

	srv := api.NewServer(api.ServerConfig{
		Host:           cfg.Host,
		Port:           cfg.Port,
		AdminLocalOnly: *adminLocalOnly,
		Origin:         *origin,
	}, st)

	go func() {
		if err := srv.Start(); err != nil {
			logging.Errorf("server stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logging.Infof("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Errorf("error during shutdown: %v", err)
	}
}
