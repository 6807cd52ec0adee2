package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/finance-tracker/internal/budget"
	budgetstore "github.com/frahmantamala/finance-tracker/internal/budget/postgres"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var budgetWorkerCmd = &cobra.Command{
	Use:   "budget",
	Short: "Start the budget maintenance worker",
	Long:  `Closes budgets whose period ended and opens the next period, carrying over unused amounts where rollover is enabled.`,
	Run: func(cmd *cobra.Command, args []string) {
		startBudgetWorker()
	},
}

var rolloverInterval time.Duration

func startBudgetWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		lg.Error("failed to initialize gorm", "error", err)
		os.Exit(1)
	}

	budgetService := budget.NewService(budgetstore.NewRepository(gormDB), nil, lg)

	lg.Info("budget maintenance worker started", "interval", rolloverInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(rolloverInterval)
	defer ticker.Stop()

	runRollover(budgetService, lg)
	for {
		select {
		case <-ticker.C:
			runRollover(budgetService, lg)
		case sig := <-sigChan:
			lg.Info("received signal, stopping worker", "signal", sig)
			return
		}
	}
}

func runRollover(svc *budget.Service, lg *slog.Logger) {
	created, err := svc.RolloverDuePeriods(time.Now())
	if err != nil {
		lg.Error("rollover pass failed", "error", err, "created", len(created))
		return
	}
	if len(created) > 0 {
		lg.Info("rollover pass finished", "created", len(created))
	}
}

func init() {
	budgetWorkerCmd.Flags().DurationVar(&rolloverInterval, "interval", time.Hour, "How often to check for ended budget periods")
	workerCmd.AddCommand(budgetWorkerCmd)
}
