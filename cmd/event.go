package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus debugging commands",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event and echo it through a local handler",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishSampleEvent(args[0])
	},
}

// publishSampleEvent wires a throwaway bus with an echo handler and
// pushes one typed event through it. Useful for checking handler wiring
// and payload shape without a running server.
func publishSampleEvent(eventType string) {
	lg := logger.LoggerWrapper()
	eventBus := events.NewEventBus(lg)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("echo handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	var evt events.Event
	switch eventType {
	case events.EventTypeExpenseRecorded:
		evt = events.NewExpenseRecordedEvent(1, 1, "groceries", 12345)
	case events.EventTypeBudgetAlertCreated:
		evt = events.NewBudgetAlertCreatedEvent(1, 1, 1, "80_PERCENT", "You've used 80% of your sample budget.")
	case events.EventTypeDebtSettled:
		evt = events.NewDebtSettledEvent(1, 1, 2, 5000)
	default:
		evt = events.BaseEvent{
			ID:        "sample",
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"source": "cli-command"},
		}
	}

	if err := eventBus.Publish(context.Background(), evt); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	time.Sleep(100 * time.Millisecond)
	lg.Info("sample event published", "event_type", eventType)
}

func init() {
	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
