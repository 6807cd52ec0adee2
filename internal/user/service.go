package user

import (
	"fmt"
	"strings"
)

type Repository interface {
	Create(u *User) error
	GetByID(userID int64) (*User, error)
	GetByEmail(email string) (*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// EmailForUser resolves the delivery address for a user; used by the
// notification handler.
func (s *Service) EmailForUser(userID int64) (email, name string, err error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve user email: %w", err)
	}
	return u.Email, u.Name, nil
}

func (s *Service) Register(email, name string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email")
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, fmt.Errorf("name is required")
	}

	u := &User{Email: email, Name: name, IsActive: true}
	if err := s.repo.Create(u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}
