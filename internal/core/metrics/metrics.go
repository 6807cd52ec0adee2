// Package metrics exposes prometheus instruments for the ledger and
// alerting paths. Registration happens at init via promauto; the /metrics
// endpoint is mounted by the HTTP server when enabled in config.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SharedExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finance_shared_expenses_created_total",
		Help: "Number of shared expenses created.",
	})

	DebtPaymentsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finance_debt_payments_applied_total",
		Help: "Number of debt payments accepted.",
	})

	DebtsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finance_debts_settled_total",
		Help: "Number of debts that reached the SETTLED state.",
	})

	BudgetAlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_budget_alerts_emitted_total",
		Help: "Number of budget threshold alerts emitted, by alert type.",
	}, []string{"alert_type"})

	AlertEmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finance_alert_email_failures_total",
		Help: "Number of alert emails that failed to deliver.",
	})
)
