package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/budget"
	budgetstore "github.com/frahmantamala/finance-tracker/internal/budget/postgres"
	"github.com/frahmantamala/finance-tracker/internal/category"
	categorystore "github.com/frahmantamala/finance-tracker/internal/category/postgres"
	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"github.com/frahmantamala/finance-tracker/internal/debt"
	debtstore "github.com/frahmantamala/finance-tracker/internal/debt/postgres"
	"github.com/frahmantamala/finance-tracker/internal/expense"
	expensestore "github.com/frahmantamala/finance-tracker/internal/expense/postgres"
	"github.com/frahmantamala/finance-tracker/internal/group"
	groupstore "github.com/frahmantamala/finance-tracker/internal/group/postgres"
	"github.com/frahmantamala/finance-tracker/internal/notification"
	"github.com/frahmantamala/finance-tracker/internal/report"
	reportstore "github.com/frahmantamala/finance-tracker/internal/report/postgres"
	"github.com/frahmantamala/finance-tracker/internal/settlement"
	settlementstore "github.com/frahmantamala/finance-tracker/internal/settlement/postgres"
	"github.com/frahmantamala/finance-tracker/internal/transport"
	"github.com/frahmantamala/finance-tracker/internal/transport/rest"
	"github.com/frahmantamala/finance-tracker/internal/user"
	userstore "github.com/frahmantamala/finance-tracker/internal/user/postgres"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
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
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
	Bus    *events.EventBus
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	userRepo := userstore.NewRepository(deps.Gorm)
	userService := user.NewService(userRepo)

	categoryRepo := categorystore.NewRepository(deps.Gorm)
	categoryService := category.NewService(categoryRepo, lg)

	budgetRepo := budgetstore.NewRepository(deps.Gorm)
	budgetService := budget.NewService(budgetRepo, deps.Bus, lg)

	expenseRepo := expensestore.NewRepository(deps.Gorm)
	expenseService := expense.NewService(expenseRepo, budgetService, deps.Bus, lg)

	groupRepo := groupstore.NewGroupRepository(deps.Gorm)
	groupService := group.NewService(groupRepo, lg)

	debtRepo := debtstore.NewDebtRepository(deps.Gorm)
	debtService := debt.NewService(debtRepo, deps.Bus, lg)

	settlementRepo := settlementstore.NewSettlementRepository(deps.Gorm)
	settlementService := settlement.NewService(settlementRepo, groupService, expenseService, lg)

	reportRepo := reportstore.NewRepository(deps.DB)
	reportService := report.NewService(reportRepo, groupService, lg)

	var notifier notification.Notifier = notification.NoopNotifier{}
	if key := deps.Config.Mail.SendGridAPIKey; key != "" {
		notifier = notification.NewSendGridNotifier(key, deps.Config.Mail.FromEmail, deps.Config.Mail.FromName)
	}
	notificationHandler := notification.NewEventHandler(notifier, userService, budgetService, lg)
	notificationHandler.RegisterEventHandlers(deps.Bus)

	handlers := rest.Handlers{
		User:       user.NewHandler(base, userService),
		Category:   category.NewHandler(base, categoryService),
		Expense:    expense.NewHandler(base, expenseService),
		Group:      group.NewHandler(base, groupService),
		Settlement: settlement.NewHandler(base, settlementService),
		Debt:       debt.NewHandler(base, debtService),
		Budget:     budget.NewHandler(base, budgetService),
		Report:     report.NewHandler(base, reportService),
	}

	metricsPath := ""
	if deps.Config.Observability.Metrics.Enabled {
		metricsPath = deps.Config.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, metricsPath, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
		Bus:    events.NewEventBus(lg),
	}, nil
}

// initDB opens the pgx-backed connection pool shared by sqlx and gorm.
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
