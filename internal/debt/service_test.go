package debt_test

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/debt"
)

func TestDebtService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DebtService Suite")
}

type mockDebtRepo struct {
	debts       map[int64]*debt.Debt
	payments    map[int64][]debt.Payment
	nextID      int64
	nextPayment int64
}

func newMockDebtRepo() *mockDebtRepo {
	return &mockDebtRepo{
		debts:    make(map[int64]*debt.Debt),
		payments: make(map[int64][]debt.Payment),
	}
}

func (m *mockDebtRepo) add(d *debt.Debt) *debt.Debt {
	m.nextID++
	d.ID = m.nextID
	if d.Status == "" {
		d.Status = debt.StatusPending
	}
	m.debts[d.ID] = d
	return d
}

func (m *mockDebtRepo) GetByID(id int64) (*debt.Debt, error) {
	d, ok := m.debts[id]
	if !ok || d.IsDeleted {
		return nil, debt.ErrDebtNotFound
	}
	return d, nil
}

func (m *mockDebtRepo) ListByCreditor(creditorID int64) ([]*debt.Debt, error) {
	var out []*debt.Debt
	for _, d := range m.debts {
		if d.CreditorID == creditorID && !d.IsDeleted {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDebtRepo) ListByDebtor(debtorID int64) ([]*debt.Debt, error) {
	var out []*debt.Debt
	for _, d := range m.debts {
		if d.DebtorID == debtorID && !d.IsDeleted {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDebtRepo) ListPayments(debtID int64) ([]debt.Payment, error) {
	return m.payments[debtID], nil
}

func (m *mockDebtRepo) ApplyPayment(debtID int64, transition func(d *debt.Debt) (*debt.Payment, error)) (*debt.Debt, *debt.Payment, error) {
	d, err := m.GetByID(debtID)
	if err != nil {
		return nil, nil, err
	}
	p, err := transition(d)
	if err != nil {
		return nil, nil, err
	}
	if p != nil {
		m.nextPayment++
		p.ID = m.nextPayment
		m.payments[debtID] = append(m.payments[debtID], *p)
	}
	return d, p, nil
}

func (m *mockDebtRepo) Mutate(debtID int64, transition func(d *debt.Debt) error) (*debt.Debt, error) {
	d, err := m.GetByID(debtID)
	if err != nil {
		return nil, err
	}
	if err := transition(d); err != nil {
		return nil, err
	}
	return d, nil
}

var _ = Describe("DebtService", func() {
	var (
		repo    *mockDebtRepo
		service *debt.Service
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newDebt := func(amountCents int64) *debt.Debt {
		return repo.add(&debt.Debt{
			CreditorID:  1,
			DebtorID:    2,
			AmountCents: amountCents,
			Description: "Flat 4B dinner",
		})
	}

	BeforeEach(func() {
		repo = newMockDebtRepo()
		service = debt.NewService(repo, nil, testLogger)
	})

	Describe("ApplyPayment", func() {
		It("should move a pending debt to partially paid", func() {
			d := newDebt(10000)

			updated, payment, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 4000})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.SettledCents).To(Equal(int64(4000)))
			Expect(updated.Status).To(Equal(debt.StatusPartiallyPaid))
			Expect(updated.SettledAt).To(BeNil())
			Expect(payment.AmountCents).To(Equal(int64(4000)))
			Expect(payment.PaymentMethod).To(Equal(debt.DefaultPaymentMethod))
		})

		It("should settle the debt when the payment covers the remainder", func() {
			d := newDebt(10000)

			_, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 4000})
			Expect(err).ToNot(HaveOccurred())

			updated, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 6000, PaymentMethod: "BANK_TRANSFER"})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(debt.StatusSettled))
			Expect(updated.SettledCents).To(Equal(updated.AmountCents))
			Expect(updated.SettledAt).ToNot(BeNil())
		})

		It("should keep the payment trail in sync with settled cents", func() {
			d := newDebt(10000)

			_, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 2500})
			Expect(err).ToNot(HaveOccurred())
			_, _, err = service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 1500})
			Expect(err).ToNot(HaveOccurred())

			history, err := service.PaymentHistory(d.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(2))

			var total int64
			for _, p := range history {
				total += p.AmountCents
			}
			Expect(total).To(Equal(repo.debts[d.ID].SettledCents))
		})

		It("should reject a payment that overshoots the remaining balance", func() {
			d := newDebt(10000)

			_, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 4000})
			Expect(err).ToNot(HaveOccurred())

			_, _, err = service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 7000})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePaymentOvershoot))

			Expect(repo.debts[d.ID].SettledCents).To(Equal(int64(4000)))
			Expect(repo.payments[d.ID]).To(HaveLen(1))
		})

		It("should reject a non-positive payment", func() {
			d := newDebt(10000)

			_, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 0})

			Expect(err).To(HaveOccurred())
			Expect(internal.IsValidationError(err)).To(BeTrue())
		})

		It("should reject payments against a cancelled debt", func() {
			d := newDebt(10000)
			_, err := service.Cancel(d.ID)
			Expect(err).ToNot(HaveOccurred())

			_, _, err = service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 1000})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDebtCancelled))
		})

		It("should return a not found error for an unknown debt", func() {
			_, _, err := service.ApplyPayment(404, debt.PaymentDTO{AmountCents: 1000})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SettleFull", func() {
		It("should pay off the remaining balance in one payment", func() {
			d := newDebt(10000)
			_, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 3000})
			Expect(err).ToNot(HaveOccurred())

			settled, err := service.SettleFull(d.ID, debt.SettleFullDTO{Notes: "squared up"})

			Expect(err).ToNot(HaveOccurred())
			Expect(settled.Status).To(Equal(debt.StatusSettled))
			Expect(repo.payments[d.ID]).To(HaveLen(2))
			Expect(repo.payments[d.ID][1].AmountCents).To(Equal(int64(7000)))
		})

		It("should be a no-op on an already settled debt", func() {
			d := newDebt(10000)
			_, err := service.SettleFull(d.ID, debt.SettleFullDTO{})
			Expect(err).ToNot(HaveOccurred())

			again, err := service.SettleFull(d.ID, debt.SettleFullDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(again.Status).To(Equal(debt.StatusSettled))
			Expect(repo.payments[d.ID]).To(HaveLen(1))
		})

		It("should reject settling a cancelled debt", func() {
			d := newDebt(10000)
			_, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 1000})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Cancel(d.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.SettleFull(d.ID, debt.SettleFullDTO{})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDebtCancelled))
		})
	})

	Describe("Cancel", func() {
		It("should cancel a pending debt", func() {
			d := newDebt(10000)

			cancelled, err := service.Cancel(d.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(cancelled.Status).To(Equal(debt.StatusCancelled))
		})

		It("should cancel a partially paid debt and keep its settled amount", func() {
			d := newDebt(10000)
			_, _, err := service.ApplyPayment(d.ID, debt.PaymentDTO{AmountCents: 2000})
			Expect(err).ToNot(HaveOccurred())

			cancelled, err := service.Cancel(d.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(cancelled.Status).To(Equal(debt.StatusCancelled))
			Expect(cancelled.SettledCents).To(Equal(int64(2000)))
		})

		It("should reject cancelling a settled debt", func() {
			d := newDebt(10000)
			_, err := service.SettleFull(d.ID, debt.SettleFullDTO{})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Cancel(d.ID)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDebtNotCancellable))
		})
	})

	Describe("listing", func() {
		It("should split debts by role", func() {
			repo.add(&debt.Debt{CreditorID: 1, DebtorID: 2, AmountCents: 100})
			repo.add(&debt.Debt{CreditorID: 2, DebtorID: 1, AmountCents: 200})

			owedTo, err := service.DebtsOwedTo(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(owedTo).To(HaveLen(1))
			Expect(owedTo[0].AmountCents).To(Equal(int64(100)))

			owedBy, err := service.DebtsOwedBy(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(owedBy).To(HaveLen(1))
			Expect(owedBy[0].AmountCents).To(Equal(int64(200)))
		})
	})
})
