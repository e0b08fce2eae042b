// katod is the prediction core's thin process entrypoint. It loads
// configuration, opens the tenant-scoped stores, starts the session
// manager, and serves a health check — the session request/response API
// itself is an out-of-scope collaborator (spec.md §1).
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/engine"
	"github.com/katosystems/kato-core/internal/session"
	"github.com/katosystems/kato-core/internal/store"
	"github.com/katosystems/kato-core/internal/store/memtest"
	"github.com/katosystems/kato-core/internal/store/postgres"
	"github.com/katosystems/kato-core/internal/tenant"
	"github.com/katosystems/kato-core/internal/vectorindex"
)

// healthTenantID is a reserved tenant used only to probe store
// reachability; no session ever learns patterns under it.
var healthTenantID = tenant.Derive("_katod_healthz")

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	globalCfg, err := config.LoadGlobal(filepath.Join(*configDir, "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load global configuration: %v", err)
	}

	ctx := context.Background()
	patterns, metadata, symbolStats, closeStores := openStores(ctx)
	defer closeStores()
	log.Println("Stores ready")

	indexer := vectorindex.NewHashIndexer(0)
	eng := engine.New(indexer, patterns, metadata, symbolStats)
	sessions := session.NewManager(eng)

	log.Println("Session manager ready")

	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := patterns.Count(reqCtx, healthTenantID); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// globalCfg and sessions are consumed by the session request/response
	// API, which is out of scope for this entrypoint.
	_ = globalCfg
	_ = sessions

	log.Printf("HTTP server listening on :%s", httpPort)
	log.Printf("Health check available at: http://localhost:%s/healthz", httpPort)
	if err := router.Run(":" + httpPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openStores selects the Postgres-backed stores when KATO_DB_DSN is set,
// falling back to the in-memory memtest implementation otherwise — handy
// for local runs without a database, and grounded on the same interfaces
// the conformance suite in internal/store/memtest exercises.
func openStores(ctx context.Context) (store.PatternStore, store.MetadataStore, store.SymbolStatsStore, func()) {
	if os.Getenv("KATO_DB_DSN") == "" {
		log.Println("KATO_DB_DSN not set, using in-memory stores")
		return memtest.NewPatternStore(), memtest.NewMetadataStore(), memtest.NewSymbolStatsStore(), func() {}
	}

	dbCfg, err := postgres.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	client, err := postgres.NewClient(ctx, dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to PostgreSQL database")

	pool := client.Pool()
	return postgres.NewPatternStore(pool), postgres.NewMetadataStore(pool), postgres.NewSymbolStatsStore(pool), client.Close
}
