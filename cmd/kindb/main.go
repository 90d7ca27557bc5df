// Package main provides the KinDB batch ingestion service.
//
// This is the main API service that accepts batch uploads of interrelated
// chemical-kinetics records and resolves them into persistent storage
// atomically.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/kindb-io/kindb/internal/aliasing"
	"github.com/kindb-io/kindb/internal/api"
	"github.com/kindb-io/kindb/internal/api/middleware"
	"github.com/kindb-io/kindb/internal/audit"
	"github.com/kindb-io/kindb/internal/batch"
	"github.com/kindb-io/kindb/internal/config"
	"github.com/kindb-io/kindb/internal/storage"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "kindb"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	serverConfig := api.LoadServerConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("Starting KinDB service",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("Loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	// Load rate limiter configuration
	middlewareConfig := middleware.LoadConfig()

	// Create rate limiter instance (graceful shutdown handled by server.shutdown())
	rateLimiter := middleware.NewInMemoryRateLimiter(middlewareConfig)

	logger.Info("Rate limiter initialized",
		slog.Int("global_rps", middlewareConfig.GlobalRPS),
		slog.Int("global_burst", middlewareConfig.GlobalBurst),
		slog.Int("client_rps", middlewareConfig.ClientRPS),
		slog.Int("client_burst", middlewareConfig.ClientBurst),
		slog.Int("unauth_rps", middlewareConfig.UnAuthRPS),
		slog.Int("unauth_burst", middlewareConfig.UnAuthBurst),
	)

	// Load storage configuration
	storageConfig := storage.LoadConfig()

	dbConn, err := storage.NewConnection(storageConfig)
	if err != nil {
		logger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		_ = dbConn.Close() // Ensure connection closes on normal shutdown
	}()

	var apiKeyStore storage.APIKeyStore

	authEnabled := config.GetEnvBool("KINDB_AUTH_ENABLED", false)
	if authEnabled {
		apiKeyStore, err = storage.NewPersistentKeyStore(dbConn)
		if err != nil {
			logger.Error("Failed to connect to persistent key store", slog.String("error", err.Error()))

			_ = dbConn.Close()
			//nolint:gocritic // Explicit cleanup before os.Exit is intentional (defer won't run)
			os.Exit(1)
		}

		logger.Info("Client authentication enabled",
			slog.String("database_url", storageConfig.MaskDatabaseURL()),
		)
	} else {
		logger.Warn("Client authentication disabled",
			slog.String("security", "Only use in trusted networks (localhost, VPN, internal)"),
			slog.String("note", "Set KINDB_AUTH_ENABLED=true to enable API key authentication"),
		)
	}

	// Audit events go to Kafka when brokers are configured; the in-transaction
	// audit_logs rows remain the system of record either way.
	publisher := audit.NewPublisherFromEnv(logger)

	defer func() {
		_ = publisher.Close()
	}()

	batchStore, err := storage.NewBatchStore(dbConn, storage.WithAuditPublisher(publisher))
	if err != nil {
		logger.Error("Failed to connect to batch store", slog.String("error", err.Error()))
		// Close database connection before exit (defer won't run with os.Exit)
		_ = dbConn.Close()
		// Fail-fast: exit immediately, the batch store is required.
		os.Exit(1)
	}

	logger.Info("Batch store initialized",
		slog.String("database_url", storageConfig.MaskDatabaseURL()),
		slog.Int("database_max_open_conns", storageConfig.MaxOpenConns),
		slog.Int("database_max_idle_conns", storageConfig.MaxIdleConns),
		slog.Duration("database_conn_max_lifetime", storageConfig.ConnMaxLifetime),
		slog.Duration("database_conn_max_idle_time", storageConfig.ConnMaxIdleTime),
	)

	aliasConfig, err := aliasing.LoadConfigFromEnv()
	if err != nil {
		logger.Error("Failed to load alias configuration", slog.String("error", err.Error()))

		_ = dbConn.Close()
		os.Exit(1)
	}

	aliases := aliasing.NewResolver(aliasConfig)

	logger.Info("Level alias resolver initialized",
		slog.Int("alias_count", aliases.AliasCount()),
	)

	pipeline := batch.NewPipeline(batchStore, aliases, logger)

	server := api.NewServer(serverConfig, pipeline, batchStore, aliases, apiKeyStore, rateLimiter)

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("KinDB service stopped")
}
