/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tip pool engine server. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize SQLite store
  3. Build engine config (fee rate, tolerance, query timeout)
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: tippool.db, env DB_PATH)
           Use ":memory:" for an in-memory database
  FEE_RATE             env, card fee fraction (default "0.03")
  RECONCILE_TOLERANCE  env, hours delta for a match (default "0.1")

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/tippool.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/warp/tippool-engine/api"
	"github.com/warp/tippool-engine/store/sqlite"
	"github.com/warp/tippool-engine/tippool"
)

func main() {
	// .env is optional; flags and env share defaults.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "tippool.db"), "SQLite database path")
	flag.Parse()

	cfg := tippool.DefaultConfig()
	if v := os.Getenv("FEE_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			log.Fatalf("Invalid FEE_RATE %q: %v", v, err)
		}
		cfg.FeeRate = rate
	}
	if v := os.Getenv("RECONCILE_TOLERANCE"); v != "" {
		tol, err := decimal.NewFromString(v)
		if err != nil {
			log.Fatalf("Invalid RECONCILE_TOLERANCE %q: %v", v, err)
		}
		cfg.ReconcileTolerance = tol
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Create router
	handler := api.NewHandler(store, cfg)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Tip pool engine listening on http://localhost:%d (fee rate %s)", *port, cfg.FeeRate)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
