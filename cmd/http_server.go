package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-backoffice/api"
	"github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/auth"
	authPostgres "github.com/frahmantamala/hr-backoffice/internal/auth/postgres"
	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/employee"
	employeePostgres "github.com/frahmantamala/hr-backoffice/internal/employee/postgres"
	"github.com/frahmantamala/hr-backoffice/internal/kpi"
	kpiPostgres "github.com/frahmantamala/hr-backoffice/internal/kpi/postgres"
	notificationPostgres "github.com/frahmantamala/hr-backoffice/internal/notification/postgres"
	"github.com/frahmantamala/hr-backoffice/internal/payroll"
	payrollPostgres "github.com/frahmantamala/hr-backoffice/internal/payroll/postgres"
	"github.com/frahmantamala/hr-backoffice/internal/transport/middleware"
	"github.com/frahmantamala/hr-backoffice/internal/transport/rest"
	"github.com/frahmantamala/hr-backoffice/internal/workflow"
	workflowPostgres "github.com/frahmantamala/hr-backoffice/internal/workflow/postgres"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    *redis.Client
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if err := deps.Redis.Close(); err != nil {
			deps.Logger.Error("Redis close error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	timeout := cfg.Database.QueryTimeout

	outbox := notificationPostgres.NewOutboxRepository(deps.Gorm, cfg.Messaging.Topic)

	workflowService := workflow.NewService(
		workflowPostgres.NewRequestRepository(deps.Gorm, deps.DB, outbox, timeout),
		deps.EventBus, deps.Logger)
	payrollService := payroll.NewService(
		payrollPostgres.NewPayrollRepository(deps.Gorm, timeout),
		deps.EventBus, deps.Logger)
	employeeService := employee.NewService(
		employeePostgres.NewEmployeeRepository(deps.Gorm, timeout),
		auth.NewBcryptHasher(cfg.Security.BCryptCost),
		deps.EventBus, deps.Logger)
	kpiService := kpi.NewService(
		kpiPostgres.NewReader(deps.DB, timeout),
		workflowService, deps.Logger)
	authService := auth.NewService(
		authPostgres.NewRepository(deps.Gorm, timeout),
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
		deps.Logger)

	doc, err := middleware.LoadOpenAPI(context.Background(), api.OpenAPISpec)
	if err != nil {
		return fmt.Errorf("failed to load openapi document: %w", err)
	}
	validator, err := middleware.OpenAPIValidator(doc, deps.Logger)
	if err != nil {
		return fmt.Errorf("failed to build openapi validator: %w", err)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		Employee: employee.NewHandler(employeeService),
		Payroll:  payroll.NewHandler(payrollService),
		Workflow: workflow.NewHandler(workflowService),
		KPI:      kpi.NewHandler(kpiService),
	}, rest.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Validator:      validator,
		HealthChecks: map[string]rest.Check{
			"redis": func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() },
		},
	}, deps.Logger)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(log)
	subscribeAuditLog(bus, log)

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       db,
		Gorm:     gormDB,
		Redis:    initRedis(config.Redis),
		EventBus: bus,
		Router:   chi.NewRouter(),
	}, nil
}

// subscribeAuditLog records every domain event raised in this process. Outbound
// notifications travel through the outbox instead.
func subscribeAuditLog(bus *events.EventBus, log *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		logger.From(ctx).Info("domain event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	}
	for _, t := range []string{
		events.EventTypeRequestResolved,
		events.EventTypePayrollGenerated,
		events.EventTypeEmployeeOnboarded,
		events.EventTypeEmployeeTerminated,
	} {
		bus.Subscribe(t, audit)
	}
	log.Debug("audit log subscribed to domain events")
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connection limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
}

func initRedis(cfg internal.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
