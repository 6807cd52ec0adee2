package settlement_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/debt"
	"github.com/frahmantamala/finance-tracker/internal/expense"
	"github.com/frahmantamala/finance-tracker/internal/group"
	"github.com/frahmantamala/finance-tracker/internal/settlement"
	"github.com/frahmantamala/finance-tracker/internal/splitcalc"
)

func TestSettlementService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SettlementService Suite")
}

type mockSettlementRepo struct {
	shared      map[int64]*settlement.SharedExpense
	byExpense   map[int64]*settlement.SharedExpense
	debts       []debt.Debt
	nextID      int64
	nextSplitID int64
}

func newMockSettlementRepo() *mockSettlementRepo {
	return &mockSettlementRepo{
		shared:    make(map[int64]*settlement.SharedExpense),
		byExpense: make(map[int64]*settlement.SharedExpense),
	}
}

func (m *mockSettlementRepo) assignSplitIDs(se *settlement.SharedExpense) {
	for i := range se.Splits {
		if se.Splits[i].ID == 0 {
			m.nextSplitID++
			se.Splits[i].ID = m.nextSplitID
			se.Splits[i].SharedExpenseID = se.ID
		}
	}
}

func (m *mockSettlementRepo) linkDebts(se *settlement.SharedExpense, debts []debt.Debt) {
	for i := range debts {
		for j := range se.Splits {
			if se.Splits[j].ParticipantID == debts[i].DebtorID {
				splitID := se.Splits[j].ID
				debts[i].SplitID = &splitID
			}
		}
		m.debts = append(m.debts, debts[i])
	}
}

func (m *mockSettlementRepo) Create(se *settlement.SharedExpense, debts []debt.Debt) error {
	m.nextID++
	se.ID = m.nextID
	m.assignSplitIDs(se)
	m.shared[se.ID] = se
	m.byExpense[se.ExpenseID] = se
	m.linkDebts(se, debts)
	return nil
}

func (m *mockSettlementRepo) GetByID(id int64) (*settlement.SharedExpense, error) {
	se, ok := m.shared[id]
	if !ok || se.IsDeleted {
		return nil, settlement.ErrSharedExpenseNotFound
	}
	return se, nil
}

func (m *mockSettlementRepo) GetByExpenseID(expenseID int64) (*settlement.SharedExpense, error) {
	se, ok := m.byExpense[expenseID]
	if !ok || se.IsDeleted {
		return nil, settlement.ErrSharedExpenseNotFound
	}
	return se, nil
}

func (m *mockSettlementRepo) ListByGroup(groupID int64) ([]*settlement.SharedExpense, error) {
	var out []*settlement.SharedExpense
	for _, se := range m.shared {
		if se.GroupID == groupID && !se.IsDeleted {
			out = append(out, se)
		}
	}
	return out, nil
}

func (m *mockSettlementRepo) ReplaceSplits(se *settlement.SharedExpense, method string, splits []settlement.Split, debts []debt.Debt) error {
	var kept []debt.Debt
	for _, d := range m.debts {
		if d.SplitID == nil {
			kept = append(kept, d)
			continue
		}
		owned := false
		for _, old := range se.Splits {
			if old.ID == *d.SplitID {
				owned = true
			}
		}
		if !owned {
			kept = append(kept, d)
		}
	}
	m.debts = kept

	se.SplitMethod = method
	se.Splits = splits
	m.assignSplitIDs(se)
	m.linkDebts(se, debts)
	return nil
}

func (m *mockSettlementRepo) EnsureDebts(debts []debt.Debt) (int, error) {
	created := 0
	for _, d := range debts {
		exists := false
		for _, have := range m.debts {
			if have.SplitID != nil && d.SplitID != nil && *have.SplitID == *d.SplitID {
				exists = true
			}
		}
		if !exists {
			m.debts = append(m.debts, d)
			created++
		}
	}
	return created, nil
}

func (m *mockSettlementRepo) SoftDelete(id int64) error {
	se, ok := m.shared[id]
	if !ok {
		return settlement.ErrSharedExpenseNotFound
	}
	se.IsDeleted = true
	return nil
}

type mockGroupAPI struct {
	groups map[int64]*group.ExpenseGroup
}

func (m *mockGroupAPI) GetGroup(id int64) (*group.ExpenseGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return g, nil
}

type mockExpenseAPI struct {
	expenses map[int64]*expense.Expense
}

func (m *mockExpenseAPI) GetExpense(id int64) (*expense.Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return nil, expense.ErrExpenseNotFound
	}
	return e, nil
}

var _ = Describe("SettlementService", func() {
	var (
		repo     *mockSettlementRepo
		groups   *mockGroupAPI
		expenses *mockExpenseAPI
		service  *settlement.Service
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	completedExpense := func(id, amountCents int64) *expense.Expense {
		now := time.Now()
		return &expense.Expense{
			ID:          id,
			UserID:      1,
			AmountCents: amountCents,
			Description: "Dinner",
			Category:    "dining",
			Status:      expense.StatusCompleted,
			CompletedAt: &now,
		}
	}

	validDTO := func() settlement.CreateSharedExpenseDTO {
		return settlement.CreateSharedExpenseDTO{
			ExpenseID:   10,
			GroupID:     1,
			PayerID:     1,
			SplitMethod: splitcalc.MethodEqual,
		}
	}

	BeforeEach(func() {
		repo = newMockSettlementRepo()
		groups = &mockGroupAPI{groups: map[int64]*group.ExpenseGroup{
			1: {
				ID:      1,
				Name:    "Flat 4B",
				AdminID: 1,
				Members: []group.Member{
					{GroupID: 1, UserID: 1},
					{GroupID: 1, UserID: 2},
					{GroupID: 1, UserID: 3},
				},
			},
		}}
		expenses = &mockExpenseAPI{expenses: map[int64]*expense.Expense{
			10: completedExpense(10, 9000),
		}}
		service = settlement.NewService(repo, groups, expenses, testLogger)
	})

	Describe("CreateSharedExpense", func() {
		It("should split among all group members and derive one debt per non-payer", func() {
			se, err := service.CreateSharedExpense(validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(se.AmountCents).To(Equal(int64(9000)))
			Expect(se.Splits).To(HaveLen(3))

			var total int64
			for _, sp := range se.Splits {
				total += sp.AmountCents
			}
			Expect(total).To(Equal(int64(9000)))

			Expect(repo.debts).To(HaveLen(2))
			for _, d := range repo.debts {
				Expect(d.CreditorID).To(Equal(int64(1)))
				Expect(d.DebtorID).ToNot(Equal(int64(1)))
				Expect(d.AmountCents).To(Equal(int64(3000)))
				Expect(d.SplitID).ToNot(BeNil())
			}
		})

		It("should split among an explicit participant subset", func() {
			dto := validDTO()
			dto.ParticipantIDs = []int64{1, 2}

			se, err := service.CreateSharedExpense(dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(se.Splits).To(HaveLen(2))
			Expect(repo.debts).To(HaveLen(1))
			Expect(repo.debts[0].DebtorID).To(Equal(int64(2)))
			Expect(repo.debts[0].AmountCents).To(Equal(int64(4500)))
		})

		It("should reject a pending expense", func() {
			expenses.expenses[11] = &expense.Expense{
				ID: 11, UserID: 1, AmountCents: 5000, Status: expense.StatusPending,
			}
			dto := validDTO()
			dto.ExpenseID = 11

			_, err := service.CreateSharedExpense(dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeExpenseNotCompleted))
		})

		It("should reject a payer outside the group", func() {
			dto := validDTO()
			dto.PayerID = 99

			_, err := service.CreateSharedExpense(dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotGroupMember))
		})

		It("should reject a participant outside the group", func() {
			dto := validDTO()
			dto.ParticipantIDs = []int64{1, 99}

			_, err := service.CreateSharedExpense(dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotGroupMember))
		})

		It("should reject sharing the same expense twice", func() {
			_, err := service.CreateSharedExpense(validDTO())
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateSharedExpense(validDTO())

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeExpenseAlreadyShared))
		})

		It("should reject an unknown split method", func() {
			dto := validDTO()
			dto.SplitMethod = splitcalc.Method("RANDOM")

			_, err := service.CreateSharedExpense(dto)

			Expect(err).To(HaveOccurred())
			Expect(internal.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("RecomputeSplits", func() {
		var se *settlement.SharedExpense

		BeforeEach(func() {
			var err error
			se, err = service.CreateSharedExpense(validDTO())
			Expect(err).ToNot(HaveOccurred())
		})

		It("should replace the splits and rebuild the derived debts", func() {
			updated, err := service.RecomputeSplits(se.ID, settlement.RecomputeSplitsDTO{
				SplitMethod:    splitcalc.MethodExact,
				ParticipantIDs: []int64{1, 2},
				Overrides: []splitcalc.Override{
					{ParticipantID: 1, AmountCents: 6000},
					{ParticipantID: 2, AmountCents: 3000},
				},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.SplitMethod).To(Equal(string(splitcalc.MethodExact)))
			Expect(updated.Splits).To(HaveLen(2))
			Expect(repo.debts).To(HaveLen(1))
			Expect(repo.debts[0].DebtorID).To(Equal(int64(2)))
			Expect(repo.debts[0].AmountCents).To(Equal(int64(3000)))
		})

		It("should refuse once any split is settled", func() {
			se.Splits[1].IsSettled = true

			_, err := service.RecomputeSplits(se.ID, settlement.RecomputeSplitsDTO{
				SplitMethod: splitcalc.MethodEqual,
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSplitAlreadySettled))
		})
	})

	Describe("DeriveDebts", func() {
		It("should create nothing when every split already has a debt", func() {
			se, err := service.CreateSharedExpense(validDTO())
			Expect(err).ToNot(HaveOccurred())

			created, err := service.DeriveDebts(se.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(Equal(0))
			Expect(repo.debts).To(HaveLen(2))
		})

		It("should backfill only the missing debts", func() {
			se, err := service.CreateSharedExpense(validDTO())
			Expect(err).ToNot(HaveOccurred())

			// drop one derived debt, keep the other
			m := repo.debts[:1]
			repo.debts = m

			created, err := service.DeriveDebts(se.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(Equal(1))
			Expect(repo.debts).To(HaveLen(2))
		})

		It("should return a not found error for an unknown shared expense", func() {
			_, err := service.DeriveDebts(404)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSharedExpenseNotFound))
		})
	})
})
