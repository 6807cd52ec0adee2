package category

import (
	"log/slog"
)

type Repository interface {
	GetAll() ([]*Category, error)
	GetByName(name string) (*Category, error)
	Create(c *Category) error
	Deactivate(id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetAllCategories() ([]*Category, error) {
	categories, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get categories", "error", err)
		return nil, err
	}

	active := categories[:0]
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *Service) CreateCategory(name, description string) (*Category, error) {
	c := NewCategory(name, description)
	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", name)
		return nil, err
	}
	return c, nil
}

func (s *Service) DeactivateCategory(id int64) error {
	return s.repo.Deactivate(id)
}

// IsValidCategory reports whether name refers to an active catalog entry.
// Used as an optional guard on expense and budget creation.
func (s *Service) IsValidCategory(name string) bool {
	c, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Warn("error checking category validity", "name", name, "error", err)
		return false
	}
	return c != nil && c.IsActive
}
