package mysql

import (
	"context"
	"errors"

	policyDomain "vehicle-affordability/internal/domain/policy"

	"gorm.io/gorm"
)

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

// Migrate creates or updates the policy tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&policyDomain.Policy{}, &policyDomain.TierRate{})
}

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *PolicyRepository) Tx(ctx context.Context, fn func(tx *PolicyRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PolicyRepository{db: tx})
	})
}

func (r *PolicyRepository) Create(ctx context.Context, p *policyDomain.Policy) error {
	// policy row and tier rates land together or not at all
	return r.Tx(ctx, func(tx *PolicyRepository) error {
		return tx.db.WithContext(ctx).Create(p).Error
	})
}

func (r *PolicyRepository) GetByName(ctx context.Context, name string) (*policyDomain.Policy, error) {
	var out policyDomain.Policy
	res := r.db.WithContext(ctx).
		Preload("Rates", func(db *gorm.DB) *gorm.DB { return db.Order("tier ASC") }).
		Where("name = ?", name).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, policyDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
