package policy

import "context"

type Repository interface {
	// GetByName returns ErrNotFound when no policy carries the name.
	GetByName(ctx context.Context, name string) (*Policy, error)
	// Create stores the policy together with its tier rates.
	Create(ctx context.Context, p *Policy) error
}
