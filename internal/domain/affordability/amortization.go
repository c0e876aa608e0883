package affordability

import "math"

// monthlyRate converts a nominal annual percentage into the monthly rate.
func monthlyRate(annualRatePercent float64) float64 {
	return (annualRatePercent / 100) / 12
}

// Installment returns the fixed monthly payment that amortizes principal over
// termMonths at annualRatePercent (compounded monthly) and leaves balloon
// owing at term end:
//
//	payment = ((P - FV*(1+r)^-n) * r) / (1 - (1+r)^-n)
//
// A zero or negative rate falls back to a straight-line split.
func Installment(principal, annualRatePercent float64, termMonths int, balloon float64) float64 {
	if principal <= 0 || termMonths <= 0 {
		return 0
	}
	n := float64(termMonths)
	if annualRatePercent <= 0 {
		return principal / n
	}

	r := monthlyRate(annualRatePercent)
	if r == 0 {
		return (principal - balloon) / n
	}

	discount := math.Pow(1+r, -n)
	denominator := 1 - discount
	if denominator == 0 {
		return 0
	}
	return ((principal - balloon*discount) * r) / denominator
}

// MaxPrincipal is the present value of termMonths payments of maxInstallment,
// i.e. the largest loan those payments retire with no balloon.
func MaxPrincipal(maxInstallment, annualRatePercent float64, termMonths int) float64 {
	if maxInstallment <= 0 || annualRatePercent <= 0 || termMonths <= 0 {
		return 0
	}
	n := float64(termMonths)
	r := monthlyRate(annualRatePercent)
	if r == 0 {
		return maxInstallment * n
	}

	principal := (maxInstallment / r) * (1 - math.Pow(1+r, -n))
	if principal < 0 {
		return 0
	}
	return principal
}
