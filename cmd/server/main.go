/*
main.go - Payroll engine server entry point

PURPOSE:
  Wires the SQLite store into the HTTP API and runs the server until a
  termination signal arrives. Configuration comes from flags, each with
  an environment-variable fallback so deployments can skip the flags.

CONFIGURATION:
  -addr   / PAYROLL_ADDR   Listen address        (default :8080)
  -db     / PAYROLL_DB     SQLite database path  (default payroll.db,
                           ":memory:" for a throwaway database)
  -grace                   Shutdown grace period (default 30s)

SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections, waits up to
  the grace period for in-flight requests, then closes the database.

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/store/sqlite"
)

type config struct {
	addr   string
	dbPath string
	grace  time.Duration
}

func loadConfig() config {
	var cfg config
	flag.StringVar(&cfg.addr, "addr", envOr("PAYROLL_ADDR", ":8080"), "listen address")
	flag.StringVar(&cfg.dbPath, "db", envOr("PAYROLL_DB", "payroll.db"), "SQLite database path")
	flag.DurationVar(&cfg.grace, "grace", 30*time.Second, "shutdown grace period")
	flag.Parse()
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	cfg := loadConfig()

	store, err := sqlite.New(cfg.dbPath)
	if err != nil {
		log.Fatalf("open database %s: %v", cfg.dbPath, err)
	}
	defer store.Close()

	server := &http.Server{
		Addr:         cfg.addr,
		Handler:      api.NewRouter(api.NewHandler(store)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("payroll engine listening on %s (db: %s)", cfg.addr, cfg.dbPath)
		errc <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.grace)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("shutdown: %v", err)
		}
	}

	log.Println("server stopped")
}
