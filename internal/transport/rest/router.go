package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/finance-tracker/internal/budget"
	"github.com/frahmantamala/finance-tracker/internal/category"
	"github.com/frahmantamala/finance-tracker/internal/debt"
	"github.com/frahmantamala/finance-tracker/internal/expense"
	"github.com/frahmantamala/finance-tracker/internal/group"
	"github.com/frahmantamala/finance-tracker/internal/report"
	"github.com/frahmantamala/finance-tracker/internal/settlement"
	"github.com/frahmantamala/finance-tracker/internal/transport/middleware"
	"github.com/frahmantamala/finance-tracker/internal/user"
)

// Handlers bundles every domain handler the router mounts. Nil entries
// are skipped, which keeps partial wiring possible in tests.
type Handlers struct {
	User       *user.Handler
	Category   *category.Handler
	Expense    *expense.Handler
	Group      *group.Handler
	Settlement *settlement.Handler
	Debt       *debt.Handler
	Budget     *budget.Handler
	Report     *report.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, metricsPath string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.ActorContext)

	if metricsPath != "" {
		router.Handle(metricsPath, promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.User != nil {
			r.Post("/users", h.User.Register)
			r.Get("/users/{id}", h.User.GetUser)
		}

		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
			r.Post("/categories", h.Category.CreateCategory)
			r.Delete("/categories/{id}", h.Category.DeactivateCategory)
		}

		if h.Expense != nil {
			r.Route("/expenses", func(er chi.Router) {
				er.Post("/", h.Expense.CreateExpense)
				er.Get("/", h.Expense.ListExpenses)
				er.Get("/{id}", h.Expense.GetExpense)
				er.Patch("/{id}", h.Expense.UpdateExpense)
				er.Patch("/{id}/complete", h.Expense.CompleteExpense)
				er.Patch("/{id}/cancel", h.Expense.CancelExpense)
				er.Delete("/{id}", h.Expense.DeleteExpense)
			})
		}

		if h.Group != nil {
			r.Route("/groups", func(gr chi.Router) {
				gr.Post("/", h.Group.CreateGroup)
				gr.Get("/{id}", h.Group.GetGroup)
				gr.Delete("/{id}", h.Group.DeleteGroup)
				gr.Post("/{id}/members", h.Group.AddMember)
				gr.Delete("/{id}/members/{userID}", h.Group.RemoveMember)
				gr.Patch("/{id}/admin", h.Group.ReassignAdmin)

				if h.Settlement != nil {
					gr.Get("/{id}/shared-expenses", h.Settlement.ListGroupSharedExpenses)
				}
				if h.Report != nil {
					gr.Get("/{id}/balances", h.Report.GroupBalances)
				}
			})
		}

		if h.Settlement != nil {
			r.Route("/shared-expenses", func(sr chi.Router) {
				sr.Post("/", h.Settlement.CreateSharedExpense)
				sr.Get("/{id}", h.Settlement.GetSharedExpense)
				sr.Put("/{id}/splits", h.Settlement.RecomputeSplits)
				sr.Post("/{id}/debts", h.Settlement.DeriveDebts)
			})
		}

		if h.Debt != nil {
			r.Route("/debts", func(dr chi.Router) {
				dr.Get("/", h.Debt.ListDebts)
				if h.Report != nil {
					dr.Get("/summary", h.Report.DebtSummary)
				}
				dr.Get("/{id}", h.Debt.GetDebt)
				dr.Post("/{id}/payments", h.Debt.ApplyPayment)
				dr.Get("/{id}/payments", h.Debt.PaymentHistory)
				dr.Post("/{id}/settle", h.Debt.SettleFull)
				dr.Post("/{id}/cancel", h.Debt.CancelDebt)
			})
		}

		if h.Budget != nil {
			r.Route("/budgets", func(br chi.Router) {
				br.Post("/", h.Budget.CreateBudget)
				br.Get("/", h.Budget.ListBudgets)
				br.Get("/summary", h.Budget.Summary)
				br.Get("/{id}", h.Budget.GetBudget)
				br.Get("/{id}/status", h.Budget.BudgetStatus)
				br.Post("/{id}/evaluate", h.Budget.Evaluate)
				br.Post("/{id}/reset-alerts", h.Budget.ResetAlerts)
			})
			r.Get("/alerts", h.Budget.UnreadAlerts)
			r.Post("/alerts/read", h.Budget.MarkAlertsRead)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":404,"message":"not found"}`, http.StatusNotFound)
	})
}
