package group_test

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/group"
)

func TestGroupService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GroupService Suite")
}

type mockGroupRepo struct {
	groups map[int64]*group.ExpenseGroup
	nextID int64
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[int64]*group.ExpenseGroup)}
}

func (m *mockGroupRepo) Create(g *group.ExpenseGroup) error {
	m.nextID++
	g.ID = m.nextID
	for i := range g.Members {
		g.Members[i].GroupID = g.ID
	}
	m.groups[g.ID] = g
	return nil
}

func (m *mockGroupRepo) GetByID(id int64) (*group.ExpenseGroup, error) {
	g, ok := m.groups[id]
	if !ok || g.IsDeleted {
		return nil, group.ErrGroupNotFound
	}
	return g, nil
}

func (m *mockGroupRepo) AddMember(groupID, userID int64) error {
	g, ok := m.groups[groupID]
	if !ok {
		return group.ErrGroupNotFound
	}
	g.Members = append(g.Members, group.Member{GroupID: groupID, UserID: userID})
	return nil
}

func (m *mockGroupRepo) RemoveMember(groupID, userID int64) error {
	g, ok := m.groups[groupID]
	if !ok {
		return group.ErrGroupNotFound
	}
	kept := g.Members[:0]
	for _, mem := range g.Members {
		if mem.UserID != userID {
			kept = append(kept, mem)
		}
	}
	g.Members = kept
	return nil
}

func (m *mockGroupRepo) UpdateAdmin(groupID, newAdminID int64) error {
	g, ok := m.groups[groupID]
	if !ok {
		return group.ErrGroupNotFound
	}
	g.AdminID = newAdminID
	return nil
}

func (m *mockGroupRepo) SoftDelete(groupID int64) error {
	g, ok := m.groups[groupID]
	if !ok {
		return group.ErrGroupNotFound
	}
	g.IsDeleted = true
	return nil
}

func (m *mockGroupRepo) IsMember(groupID, userID int64) (bool, error) {
	g, ok := m.groups[groupID]
	if !ok {
		return false, group.ErrGroupNotFound
	}
	return g.HasMember(userID), nil
}

var _ = Describe("GroupService", func() {
	var (
		repo    *mockGroupRepo
		service *group.Service
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	createGroup := func() *group.ExpenseGroup {
		g, err := service.CreateGroup(group.CreateGroupDTO{
			Name:      "Flat 4B",
			AdminID:   1,
			MemberIDs: []int64{2, 3},
		})
		Expect(err).ToNot(HaveOccurred())
		return g
	}

	BeforeEach(func() {
		repo = newMockGroupRepo()
		service = group.NewService(repo, testLogger)
	})

	Describe("CreateGroup", func() {
		It("should always include the admin as a member", func() {
			g, err := service.CreateGroup(group.CreateGroupDTO{
				Name:      "Road trip",
				AdminID:   1,
				MemberIDs: []int64{2, 3},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(g.Members).To(HaveLen(3))
			Expect(g.HasMember(1)).To(BeTrue())
		})

		It("should deduplicate the member list", func() {
			g, err := service.CreateGroup(group.CreateGroupDTO{
				Name:      "Road trip",
				AdminID:   1,
				MemberIDs: []int64{1, 2, 2},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(g.Members).To(HaveLen(2))
		})

		It("should reject a group without a name", func() {
			_, err := service.CreateGroup(group.CreateGroupDTO{AdminID: 1})

			Expect(err).To(HaveOccurred())
			Expect(internal.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("AddMember", func() {
		It("should reject adding an existing member", func() {
			g := createGroup()

			err := service.AddMember(g.ID, group.MemberDTO{UserID: 2})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateMember))
		})

		It("should add a new member", func() {
			g := createGroup()

			err := service.AddMember(g.ID, group.MemberDTO{UserID: 4})

			Expect(err).ToNot(HaveOccurred())
			Expect(g.HasMember(4)).To(BeTrue())
		})
	})

	Describe("RemoveMember", func() {
		It("should refuse to remove the admin before reassignment", func() {
			g := createGroup()

			err := service.RemoveMember(g.ID, 1)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAdminStillMember))
		})

		It("should remove the former admin after reassignment", func() {
			g := createGroup()

			err := service.ReassignAdmin(g.ID, group.ReassignAdminDTO{NewAdminID: 2})
			Expect(err).ToNot(HaveOccurred())

			err = service.RemoveMember(g.ID, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(g.HasMember(1)).To(BeFalse())
		})

		It("should reject removing a non-member", func() {
			g := createGroup()

			err := service.RemoveMember(g.ID, 42)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotGroupMember))
		})
	})

	Describe("ReassignAdmin", func() {
		It("should reject a new admin who is not a member", func() {
			g := createGroup()

			err := service.ReassignAdmin(g.ID, group.ReassignAdminDTO{NewAdminID: 42})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAdminNotMember))
		})
	})

	Describe("DeleteGroup", func() {
		It("should soft delete and hide the group afterwards", func() {
			g := createGroup()

			Expect(service.DeleteGroup(g.ID)).To(Succeed())

			_, err := service.GetGroup(g.ID)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeGroupNotFound))
		})
	})
})
