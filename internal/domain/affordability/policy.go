package affordability

import (
	"errors"
	"fmt"
)

var ErrInvalidPolicy = errors.New("invalid affordability policy")

// Pricing is what a credit tier is offered: either a rate or nothing.
// The only implementations are Priced and Declined.
type Pricing interface {
	pricing()
}

// Priced offers finance at AnnualRate percent (nominal, compounded monthly).
type Priced struct {
	AnnualRate float64
}

// Declined means the tier does not qualify for finance.
type Declined struct{}

func (Priced) pricing()   {}
func (Declined) pricing() {}

// RateTable maps credit tiers to pricing. Tiers missing from the table are
// declined.
type RateTable map[CreditTier]Pricing

func (t RateTable) Lookup(tier CreditTier) Pricing {
	if p, ok := t[tier]; ok && p != nil {
		return p
	}
	return Declined{}
}

// Policy holds every threshold and rate the engine applies. Values are read
// only once built; construct a new Policy to change them.
type Policy struct {
	Name      string
	PrimeRate float64
	Rates     RateTable

	MaxDTIRatio  float64
	WarnDTIRatio float64
	MaxTCORatio  float64
	WarnTCORatio float64

	DisposableIncomeBuffer float64
	ExpensePerDependent    float64

	MinApplicantAge             int
	MaxApplicantAge             int
	MinNonPermanentTenureMonths int
	MaxVehicleAgeAtEnd          float64

	// MinDepositRatio below which a larger deposit is recommended.
	MinDepositRatio float64

	LoanTerms          []int
	BalloonPercentages []int

	CurrencySymbol string
}

const (
	DefaultPolicyName = "za-vehicle-finance"
	DefaultPrimeRate  = 11.75
)

// DefaultPolicy is the standard vehicle finance policy priced off prime.
func DefaultPolicy() Policy {
	return Policy{
		Name:      DefaultPolicyName,
		PrimeRate: DefaultPrimeRate,
		Rates:     PrimeLinkedRates(DefaultPrimeRate),

		MaxDTIRatio:  40,
		WarnDTIRatio: 36,
		MaxTCORatio:  25,
		WarnTCORatio: 22,

		DisposableIncomeBuffer: 2500,
		ExpensePerDependent:    1500,

		MinApplicantAge:             18,
		MaxApplicantAge:             65,
		MinNonPermanentTenureMonths: 24,
		MaxVehicleAgeAtEnd:          12,

		MinDepositRatio: 0.10,

		LoanTerms:          []int{12, 24, 36, 48, 60, 72},
		BalloonPercentages: []int{0, 10, 20, 30},

		CurrencySymbol: "R",
	}
}

// PrimeLinkedRates prices each tier as a margin over prime; poor is declined.
func PrimeLinkedRates(prime float64) RateTable {
	return RateTable{
		CreditExcellent: Priced{AnnualRate: prime - 0.5},
		CreditGood:      Priced{AnnualRate: prime + 0.5},
		CreditFair:      Priced{AnnualRate: prime + 2.5},
		CreditPoor:      Declined{},
	}
}

func (p Policy) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidPolicy)
	case p.MaxDTIRatio <= 0 || p.MaxTCORatio <= 0:
		return fmt.Errorf("%w: ratio ceilings must be positive", ErrInvalidPolicy)
	case p.WarnDTIRatio > p.MaxDTIRatio || p.WarnTCORatio > p.MaxTCORatio:
		return fmt.Errorf("%w: warn thresholds above ceilings", ErrInvalidPolicy)
	case p.MinApplicantAge > p.MaxApplicantAge:
		return fmt.Errorf("%w: age range is empty", ErrInvalidPolicy)
	case p.DisposableIncomeBuffer < 0 || p.ExpensePerDependent < 0:
		return fmt.Errorf("%w: negative buffer or dependent expense", ErrInvalidPolicy)
	case p.MinNonPermanentTenureMonths < 0:
		return fmt.Errorf("%w: negative tenure requirement", ErrInvalidPolicy)
	case p.MaxVehicleAgeAtEnd < 0:
		return fmt.Errorf("%w: negative vehicle age limit", ErrInvalidPolicy)
	case p.MinDepositRatio < 0 || p.MinDepositRatio > 1:
		return fmt.Errorf("%w: deposit ratio outside [0, 1]", ErrInvalidPolicy)
	}
	for tier, pricing := range p.Rates {
		if priced, ok := pricing.(Priced); ok && priced.AnnualRate < 0 {
			return fmt.Errorf("%w: negative rate for tier %s", ErrInvalidPolicy, tier)
		}
	}
	return nil
}

// OffersTerm reports whether termMonths is one of the offered terms. An empty
// list accepts any term.
func (p Policy) OffersTerm(termMonths int) bool {
	return containsInt(p.LoanTerms, termMonths)
}

// OffersBalloon reports whether pct is one of the offered balloon options. An
// empty list accepts any percentage.
func (p Policy) OffersBalloon(pct int) bool {
	return containsInt(p.BalloonPercentages, pct)
}

func containsInt(list []int, v int) bool {
	if len(list) == 0 {
		return true
	}
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
