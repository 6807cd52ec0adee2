package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"github.com/frahmantamala/finance-tracker/internal/core/metrics"
)

// UserDirectory resolves a user ID to a deliverable address.
type UserDirectory interface {
	EmailForUser(userID int64) (email, name string, err error)
}

// AlertStore records delivery outcomes back on the alert row.
type AlertStore interface {
	MarkAlertEmailed(alertID int64) error
}

// EventHandler consumes budget alert events off the bus and delivers
// email best-effort. The alert row is already committed before the event
// fires; a delivery failure is logged and counted, never propagated back
// into the write path.
type EventHandler struct {
	notifier Notifier
	users    UserDirectory
	alerts   AlertStore
	logger   *slog.Logger
}

func NewEventHandler(notifier Notifier, users UserDirectory, alerts AlertStore, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		notifier: notifier,
		users:    users,
		alerts:   alerts,
		logger:   logger,
	}
}

func (h *EventHandler) HandleBudgetAlertCreated(ctx context.Context, event events.Event) error {
	alertEvent, ok := event.(*events.BudgetAlertCreatedEvent)
	if !ok {
		h.logger.Error("invalid event type for budget alert handler", "event_type", event.EventType())
		return fmt.Errorf("expected BudgetAlertCreatedEvent, got %T", event)
	}

	email, name, err := h.users.EmailForUser(alertEvent.UserID)
	if err != nil {
		h.logger.Error("cannot resolve email for alert",
			"error", err,
			"alert_id", alertEvent.AlertID,
			"user_id", alertEvent.UserID)
		metrics.AlertEmailFailures.Inc()
		return nil
	}

	subject := subjectFor(alertEvent.AlertType)
	body := buildAlertEmailHTML(name, alertEvent.Message)

	if err := h.notifier.SendEmail(email, name, subject, body); err != nil {
		h.logger.Error("failed to send alert email",
			"error", err,
			"alert_id", alertEvent.AlertID,
			"user_id", alertEvent.UserID)
		metrics.AlertEmailFailures.Inc()
		return nil
	}

	if err := h.alerts.MarkAlertEmailed(alertEvent.AlertID); err != nil {
		h.logger.Warn("alert email sent but flag update failed",
			"error", err, "alert_id", alertEvent.AlertID)
		return nil
	}

	h.logger.Info("budget alert email delivered",
		"alert_id", alertEvent.AlertID,
		"alert_type", alertEvent.AlertType)
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeBudgetAlertCreated, h.HandleBudgetAlertCreated)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeBudgetAlertCreated})
}

func subjectFor(alertType string) string {
	switch alertType {
	case "EXCEEDED":
		return "Budget exceeded"
	case "80_PERCENT":
		return "Budget warning: 80% used"
	default:
		return "Budget alert"
	}
}

func buildAlertEmailHTML(name, message string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: white; border-radius: 12px; padding: 32px; border: 1px solid #eee;">
		<h2 style="margin-top: 0;">Budget Alert</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p>%s</p>
		<p>Open the app to review your spending.</p>
	</div>
</body>
</html>`, name, message)
}
