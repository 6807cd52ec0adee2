package notification

// Notifier delivers a single email. Implementations must be safe for
// concurrent use; the event bus fans handlers out on goroutines.
type Notifier interface {
	SendEmail(toEmail, toName, subject, htmlBody string) error
}

// NoopNotifier drops everything. Used when no mail provider is
// configured, so the rest of the pipeline behaves identically.
type NoopNotifier struct{}

func (NoopNotifier) SendEmail(toEmail, toName, subject, htmlBody string) error {
	return nil
}
