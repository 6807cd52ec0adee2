package report_test

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/group"
	"github.com/frahmantamala/finance-tracker/internal/report"
)

func TestReportService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ReportService Suite")
}

type mockReportRepo struct {
	paid       map[int64]int64
	owed       map[int64]int64
	total      int64
	debtTotals *report.DebtSummary
}

func (m *mockReportRepo) PaidByMember(groupID int64) (map[int64]int64, error) {
	return m.paid, nil
}

func (m *mockReportRepo) OwedByMember(groupID int64) (map[int64]int64, error) {
	return m.owed, nil
}

func (m *mockReportRepo) TotalShared(groupID int64) (int64, error) {
	return m.total, nil
}

func (m *mockReportRepo) DebtTotals(userID int64) (*report.DebtSummary, error) {
	return m.debtTotals, nil
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

var _ = Describe("ReportService", func() {
	var (
		repo    *mockReportRepo
		groups  *mockGroupAPI
		service *report.Service
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		repo = &mockReportRepo{
			paid: map[int64]int64{},
			owed: map[int64]int64{},
		}
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
		service = report.NewService(repo, groups, testLogger)
	})

	Describe("BalanceSummary", func() {
		It("should produce balances that sum to zero across the group", func() {
			// one 9000 expense fronted by user 1, split equally
			repo.total = 9000
			repo.paid = map[int64]int64{1: 9000}
			repo.owed = map[int64]int64{1: 3000, 2: 3000, 3: 3000}

			rep, err := service.BalanceSummary(1)

			Expect(err).ToNot(HaveOccurred())
			Expect(rep.TotalSharedCents).To(Equal(int64(9000)))
			Expect(rep.Members).To(HaveLen(3))

			var sum int64
			for _, m := range rep.Members {
				sum += m.BalanceCents
			}
			Expect(sum).To(Equal(int64(0)))
			Expect(rep.Members[0].BalanceCents).To(Equal(int64(6000)))
			Expect(rep.Members[1].BalanceCents).To(Equal(int64(-3000)))
		})

		It("should include members with no shared activity", func() {
			rep, err := service.BalanceSummary(1)

			Expect(err).ToNot(HaveOccurred())
			Expect(rep.Members).To(HaveLen(3))
			for _, m := range rep.Members {
				Expect(m.PaidCents).To(Equal(int64(0)))
				Expect(m.OwedCents).To(Equal(int64(0)))
				Expect(m.BalanceCents).To(Equal(int64(0)))
			}
		})

		It("should return a not found error for an unknown group", func() {
			_, err := service.BalanceSummary(404)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeGroupNotFound))
		})
	})

	Describe("UserDebtSummary", func() {
		It("should compute the net position from both sides", func() {
			repo.debtTotals = &report.DebtSummary{
				OwedToYouCents: 7000,
				YouOweCents:    2500,
				OpenDebtCount:  3,
			}

			summary, err := service.UserDebtSummary(1)

			Expect(err).ToNot(HaveOccurred())
			Expect(summary.UserID).To(Equal(int64(1)))
			Expect(summary.NetCents).To(Equal(int64(4500)))
			Expect(summary.OpenDebtCount).To(Equal(3))
		})
	})
})
