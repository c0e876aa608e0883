package policymock

import (
	"context"

	domain "vehicle-affordability/internal/domain/policy"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByNameFn func(ctx context.Context, name string) (*domain.Policy, error)
	CreateFn    func(ctx context.Context, p *domain.Policy) error
}

func (m *Repo) GetByName(ctx context.Context, name string) (*domain.Policy, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Create(ctx context.Context, p *domain.Policy) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}
