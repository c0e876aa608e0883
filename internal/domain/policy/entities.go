package policy

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"vehicle-affordability/internal/domain/affordability"
)

var ErrNotFound = errors.New("policy not found")

// Policy is the stored form of an affordability.Policy.
type Policy struct {
	ID        uint64  `gorm:"primaryKey;column:id"`
	Name      string  `gorm:"size:64;not null;uniqueIndex:ux_policies_name"`
	PrimeRate float64 `gorm:"type:decimal(6,3);not null"`

	MaxDTIRatio  float64 `gorm:"type:decimal(5,2);not null"`
	WarnDTIRatio float64 `gorm:"type:decimal(5,2);not null"`
	MaxTCORatio  float64 `gorm:"type:decimal(5,2);not null"`
	WarnTCORatio float64 `gorm:"type:decimal(5,2);not null"`

	DisposableIncomeBuffer float64 `gorm:"type:decimal(18,2);not null"`
	ExpensePerDependent    float64 `gorm:"type:decimal(18,2);not null"`

	MinApplicantAge             int     `gorm:"not null"`
	MaxApplicantAge             int     `gorm:"not null"`
	MinNonPermanentTenureMonths int     `gorm:"not null"`
	MaxVehicleAgeAtEnd          float64 `gorm:"type:decimal(5,2);not null"`
	MinDepositRatio             float64 `gorm:"type:decimal(5,4);not null"`

	// comma separated, e.g. "12,24,36"
	LoanTerms          string `gorm:"size:128"`
	BalloonPercentages string `gorm:"size:64"`

	CurrencySymbol string `gorm:"size:8;not null"`

	Rates []TierRate `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Policy) TableName() string { return "policies" }

// TierRate prices one credit tier. A NULL rate declines the tier.
type TierRate struct {
	ID         uint64   `gorm:"primaryKey;column:id"`
	PolicyID   uint64   `gorm:"not null;uniqueIndex:ux_tier_rates_policy_tier"`
	Tier       string   `gorm:"size:16;not null;uniqueIndex:ux_tier_rates_policy_tier"`
	AnnualRate *float64 `gorm:"type:decimal(6,3)"`
}

func (TierRate) TableName() string { return "policy_tier_rates" }

// FromDomain builds the stored form of p. Rates are ordered by tier name so
// the same policy always produces the same rows.
func FromDomain(p affordability.Policy) *Policy {
	rec := &Policy{
		Name:                        p.Name,
		PrimeRate:                   p.PrimeRate,
		MaxDTIRatio:                 p.MaxDTIRatio,
		WarnDTIRatio:                p.WarnDTIRatio,
		MaxTCORatio:                 p.MaxTCORatio,
		WarnTCORatio:                p.WarnTCORatio,
		DisposableIncomeBuffer:      p.DisposableIncomeBuffer,
		ExpensePerDependent:         p.ExpensePerDependent,
		MinApplicantAge:             p.MinApplicantAge,
		MaxApplicantAge:             p.MaxApplicantAge,
		MinNonPermanentTenureMonths: p.MinNonPermanentTenureMonths,
		MaxVehicleAgeAtEnd:          p.MaxVehicleAgeAtEnd,
		MinDepositRatio:             p.MinDepositRatio,
		LoanTerms:                   joinInts(p.LoanTerms),
		BalloonPercentages:          joinInts(p.BalloonPercentages),
		CurrencySymbol:              p.CurrencySymbol,
	}

	tiers := make([]string, 0, len(p.Rates))
	for tier := range p.Rates {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		row := TierRate{Tier: tier}
		if priced, ok := p.Rates[affordability.CreditTier(tier)].(affordability.Priced); ok {
			rate := priced.AnnualRate
			row.AnnualRate = &rate
		}
		rec.Rates = append(rec.Rates, row)
	}
	return rec
}

// ToDomain converts the record back and validates the result.
func (p *Policy) ToDomain() (affordability.Policy, error) {
	terms, err := splitInts(p.LoanTerms)
	if err != nil {
		return affordability.Policy{}, fmt.Errorf("policy %s loan terms: %w", p.Name, err)
	}
	balloons, err := splitInts(p.BalloonPercentages)
	if err != nil {
		return affordability.Policy{}, fmt.Errorf("policy %s balloon percentages: %w", p.Name, err)
	}

	rates := make(affordability.RateTable, len(p.Rates))
	for _, r := range p.Rates {
		if r.AnnualRate == nil {
			rates[affordability.CreditTier(r.Tier)] = affordability.Declined{}
			continue
		}
		rates[affordability.CreditTier(r.Tier)] = affordability.Priced{AnnualRate: *r.AnnualRate}
	}

	out := affordability.Policy{
		Name:                        p.Name,
		PrimeRate:                   p.PrimeRate,
		Rates:                       rates,
		MaxDTIRatio:                 p.MaxDTIRatio,
		WarnDTIRatio:                p.WarnDTIRatio,
		MaxTCORatio:                 p.MaxTCORatio,
		WarnTCORatio:                p.WarnTCORatio,
		DisposableIncomeBuffer:      p.DisposableIncomeBuffer,
		ExpensePerDependent:         p.ExpensePerDependent,
		MinApplicantAge:             p.MinApplicantAge,
		MaxApplicantAge:             p.MaxApplicantAge,
		MinNonPermanentTenureMonths: p.MinNonPermanentTenureMonths,
		MaxVehicleAgeAtEnd:          p.MaxVehicleAgeAtEnd,
		MinDepositRatio:             p.MinDepositRatio,
		LoanTerms:                   terms,
		BalloonPercentages:          balloons,
		CurrencySymbol:              p.CurrencySymbol,
	}
	if err := out.Validate(); err != nil {
		return affordability.Policy{}, err
	}
	return out, nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
