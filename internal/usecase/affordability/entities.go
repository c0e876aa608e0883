package affordability

import (
	"sort"
	"time"

	domain "vehicle-affordability/internal/domain/affordability"
)

type EvaluationDTO struct {
	EvaluationID string        `json:"evaluation_id"`
	EvaluatedAt  time.Time     `json:"evaluated_at"`
	Policy       string        `json:"policy"`
	Result       domain.Result `json:"result"`
}

type TierRateDTO struct {
	Tier       string   `json:"tier"`
	Band       string   `json:"band"`
	Eligible   bool     `json:"eligible"`
	AnnualRate *float64 `json:"annual_rate,omitempty"`
}

type PolicyDTO struct {
	Name                        string        `json:"name"`
	PrimeRate                   float64       `json:"prime_rate"`
	Rates                       []TierRateDTO `json:"rates"`
	MaxDTIRatio                 float64       `json:"max_dti_ratio"`
	WarnDTIRatio                float64       `json:"warn_dti_ratio"`
	MaxTCORatio                 float64       `json:"max_tco_ratio"`
	WarnTCORatio                float64       `json:"warn_tco_ratio"`
	DisposableIncomeBuffer      float64       `json:"disposable_income_buffer"`
	ExpensePerDependent         float64       `json:"expense_per_dependent"`
	MinApplicantAge             int           `json:"min_applicant_age"`
	MaxApplicantAge             int           `json:"max_applicant_age"`
	MinNonPermanentTenureMonths int           `json:"min_non_permanent_tenure_months"`
	MaxVehicleAgeAtEnd          float64       `json:"max_vehicle_age_at_end"`
	MinDepositRatio             float64       `json:"min_deposit_ratio"`
	LoanTerms                   []int         `json:"loan_terms"`
	BalloonPercentages          []int         `json:"balloon_percentages"`
	CurrencySymbol              string        `json:"currency_symbol"`
}

func toPolicyDTO(p domain.Policy) PolicyDTO {
	tiers := make([]string, 0, len(p.Rates))
	for tier := range p.Rates {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)

	rates := make([]TierRateDTO, 0, len(tiers))
	for _, t := range tiers {
		tier := domain.CreditTier(t)
		dto := TierRateDTO{Tier: t, Band: tier.Band()}
		if priced, ok := p.Rates.Lookup(tier).(domain.Priced); ok {
			rate := priced.AnnualRate
			dto.Eligible = true
			dto.AnnualRate = &rate
		}
		rates = append(rates, dto)
	}

	return PolicyDTO{
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
		LoanTerms:                   p.LoanTerms,
		BalloonPercentages:          p.BalloonPercentages,
		CurrencySymbol:              p.CurrencySymbol,
	}
}
