package debt

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"github.com/frahmantamala/finance-tracker/internal/core/metrics"
)

// Repository defines the data access methods for debts. Transition
// callbacks run inside a storage transaction with the debt row locked, so
// concurrent payments against the same debt serialize there.
type Repository interface {
	GetByID(id int64) (*Debt, error)
	ListByCreditor(creditorID int64) ([]*Debt, error)
	ListByDebtor(debtorID int64) ([]*Debt, error)
	ListPayments(debtID int64) ([]Payment, error)
	// ApplyPayment runs transition on the locked debt row; when it returns
	// a payment, the debt update, the payment row and the settled-split
	// propagation commit atomically. A nil payment with nil error means
	// no-op: nothing is written.
	ApplyPayment(debtID int64, transition func(d *Debt) (*Payment, error)) (*Debt, *Payment, error)
	// Mutate runs transition on the locked debt row and saves the result.
	Mutate(debtID int64, transition func(d *Debt) error) (*Debt, error)
}

// Service applies payments to debts and drives their status transitions.
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

// ApplyPayment records a payment against a debt. Validation and the state
// transition live on the domain type; persistence is atomic with the split
// propagation and the appended payment row.
func (s *Service) ApplyPayment(debtID int64, dto PaymentDTO) (*Debt, *Payment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("payment validation failed", "error", err, "debt_id", debtID)
		return nil, nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidAmount)
	}

	d, p, err := s.repo.ApplyPayment(debtID, func(d *Debt) (*Payment, error) {
		if err := d.ApplyPayment(dto.AmountCents); err != nil {
			return nil, err
		}
		return &Payment{
			DebtID:          d.ID,
			AmountCents:     dto.AmountCents,
			PaymentMethod:   dto.Method(),
			ReferenceNumber: dto.ReferenceNumber,
			Notes:           dto.Notes,
		}, nil
	})
	if err != nil {
		s.logger.Error("failed to apply payment", "error", err, "debt_id", debtID, "amount", dto.AmountCents)
		return nil, nil, err
	}

	metrics.DebtPaymentsApplied.Inc()
	s.logger.Info("payment applied",
		"debt_id", d.ID,
		"amount", dto.AmountCents,
		"settled", d.SettledCents,
		"status", d.Status)

	if d.Status == StatusSettled {
		metrics.DebtsSettled.Inc()
		s.publishSettled(d)
	}

	return d, p, nil
}

// SettleFull pays off whatever balance remains. A debt with nothing left
// to pay is returned unchanged.
func (s *Service) SettleFull(debtID int64, dto SettleFullDTO) (*Debt, error) {
	d, _, err := s.repo.ApplyPayment(debtID, func(d *Debt) (*Payment, error) {
		remaining := d.RemainingCents()
		if remaining <= 0 {
			return nil, nil // nothing outstanding, no-op
		}
		if err := d.ApplyPayment(remaining); err != nil {
			return nil, err
		}
		return &Payment{
			DebtID:          d.ID,
			AmountCents:     remaining,
			PaymentMethod:   dto.Method(),
			ReferenceNumber: dto.ReferenceNumber,
			Notes:           dto.Notes,
		}, nil
	})
	if err != nil {
		s.logger.Error("failed to settle debt", "error", err, "debt_id", debtID)
		return nil, err
	}

	if d.Status == StatusSettled {
		s.logger.Info("debt settled in full", "debt_id", d.ID, "amount", d.AmountCents)
		metrics.DebtsSettled.Inc()
		s.publishSettled(d)
	}
	return d, nil
}

// Cancel moves an open debt to the terminal CANCELLED state. Payments are
// rejected from then on.
func (s *Service) Cancel(debtID int64) (*Debt, error) {
	d, err := s.repo.Mutate(debtID, func(d *Debt) error {
		return d.Cancel()
	})
	if err != nil {
		s.logger.Error("failed to cancel debt", "error", err, "debt_id", debtID)
		return nil, err
	}

	s.logger.Info("debt cancelled", "debt_id", d.ID, "settled", d.SettledCents)
	return d, nil
}

func (s *Service) GetDebt(debtID int64) (*Debt, error) {
	d, err := s.repo.GetByID(debtID)
	if err != nil {
		s.logger.Error("failed to get debt", "error", err, "debt_id", debtID)
		return nil, internal.NewNotFoundError("debt not found", internal.ErrCodeDebtNotFound)
	}
	return d, nil
}

// DebtsOwedBy lists debts where the user is the debtor.
func (s *Service) DebtsOwedBy(userID int64) ([]*Debt, error) {
	return s.repo.ListByDebtor(userID)
}

// DebtsOwedTo lists debts where the user is the creditor.
func (s *Service) DebtsOwedTo(userID int64) ([]*Debt, error) {
	return s.repo.ListByCreditor(userID)
}

func (s *Service) PaymentHistory(debtID int64) ([]Payment, error) {
	if _, err := s.GetDebt(debtID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(debtID)
}

func (s *Service) publishSettled(d *Debt) {
	if s.bus == nil {
		return
	}
	evt := events.NewDebtSettledEvent(d.ID, d.CreditorID, d.DebtorID, d.AmountCents)
	if err := s.bus.Publish(context.Background(), evt); err != nil {
		s.logger.Warn("failed to publish debt settled event", "error", err, "debt_id", d.ID)
	}
}
