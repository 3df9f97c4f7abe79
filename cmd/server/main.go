package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/config"
	"github.com/riteshkumar/account-ledger/internal/events"
	"github.com/riteshkumar/account-ledger/internal/handler"
	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/repository"
	"github.com/riteshkumar/account-ledger/internal/service"
)

func main() {
	cfg := config.Load()

	// Initialise logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger storage", "backend", cfg.StorageBackend, "error", err.Error())
		os.Exit(1)
	}
	defer closeStore()

	publisher, closePublisher := openPublisher(cfg, logger)
	defer closePublisher()

	// Initialise repos
	customerRepo := repository.NewCustomerRepository()
	accountRepo := repository.NewAccountRepository()
	transactionRepo := repository.NewTransactionRepository()
	auditRepo := repository.NewAuditRepository()
	ids := idgen.New()

	// Initialise services
	customerService := service.NewCustomerService(customerRepo, ids, logger)
	accountService := service.NewAccountService(accountRepo, customerRepo, transactionRepo, auditRepo, ids, publisher, logger)
	transactionService := service.NewTransactionService(accountRepo, transactionRepo, auditRepo, ids, publisher, logger)
	persistenceService := service.NewPersistenceService(store, customerRepo, accountRepo, transactionRepo, ids, cfg.AutoSave, logger)

	if cfg.AutoLoadOnStartup {
		if _, err := persistenceService.Load(context.Background()); err != nil {
			logger.Error("failed to load ledger, starting empty", "error", err.Error())
		}
	}

	// Initialise handlers
	customerHandler := handler.NewCustomerHandler(customerService, persistenceService, logger)
	accountHandler := handler.NewAccountHandler(accountService, transactionService, persistenceService, logger)
	transactionHandler := handler.NewTransactionHandler(transactionService, persistenceService, logger)
	adminHandler := handler.NewAdminHandler(accountService, persistenceService, cfg.SimulationTimeout, logger)

	router := mux.NewRouter()
	customerHandler.RegisterRoutes(router)
	accountHandler.RegisterRoutes(router)
	transactionHandler.RegisterRoutes(router)
	adminHandler.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.Use(loggingMiddleware(logger))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.SimulationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server on port "+cfg.ServerPort, "backend", cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err.Error())
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
	}

	if cfg.SaveOnExit {
		if err := persistenceService.Save(ctx); err != nil {
			logger.Error("failed to save ledger on exit", "error", err.Error())
		}
	}

	logger.Info("server exited gracefully")
}

// openStore selects the persistence backend. The returned func releases
// whatever the backend holds open.
func openStore(cfg config.Config, logger *slog.Logger) (repository.LedgerStore, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		return repository.NewFileStore(cfg.DataDir, logger), func() {}, nil
	case config.BackendPostgres:
		db, err := connectDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresStore(db, logger)
		if err := store.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("connected to database successfully")
		return store, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// connectDB establishes a connection to the Postgres database
func connectDB(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// openPublisher uses Redis streams when REDIS_ADDR is set. An unreachable
// broker is logged and replaced by a no-op publisher.
func openPublisher(cfg config.Config, logger *slog.Logger) (events.Publisher, func()) {
	if cfg.RedisAddr == "" {
		return events.NopPublisher{}, func() {}
	}
	rdb, err := events.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("ledger events disabled", "redis_addr", cfg.RedisAddr, "error", err.Error())
		return events.NopPublisher{}, func() {}
	}
	logger.Info("publishing ledger events", "redis_addr", cfg.RedisAddr, "stream", events.LedgerStream)
	return events.NewRedisPublisher(rdb), func() { rdb.Close() }
}

// loggingMiddleware tags each request with an ID and logs it on completion.
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("incoming request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
