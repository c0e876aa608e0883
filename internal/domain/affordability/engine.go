package affordability

import (
	"fmt"
	"math"
	"time"
)

// Evaluate decides whether the applicant can afford the requested finance
// under pol. asOf supplies the calendar year used to age the vehicle. The
// function is pure: the same arguments always produce the same Result.
func Evaluate(p ApplicantProfile, pol Policy, asOf time.Time) Result {
	totalGross := p.TotalGrossIncome()
	if totalGross <= 0 || p.NetIncome <= 0 || p.PurchasePrice <= 0 {
		return PendingResult()
	}

	ev := &evaluation{
		profile:    p,
		policy:     pol,
		year:       asOf.Year(),
		totalGross: totalGross,
		checks:     []RuleCheck{},
		warnings:   []string{},
	}
	if !ev.runGates() {
		return Result{
			Status:       StatusNotApproved,
			Reasoning:    ev.checks,
			Warnings:     ev.warnings,
			IsCalculated: true,
		}
	}
	return ev.assess()
}

// assess runs the affordability ratios once every gate has passed.
func (ev *evaluation) assess() Result {
	p, pol := ev.profile, ev.policy

	requested := p.PurchasePrice - p.Deposit
	balloon := p.PurchasePrice * float64(p.BalloonPercentage) / 100
	installment := Installment(requested, ev.rate, p.TermMonths, balloon)
	running := p.RunningCosts()
	totalMonthlyCost := installment + running

	dti := (p.DebtRepayments + installment) / ev.totalGross * 100
	dtiCheck := RuleCheck{
		Label:     "Debt-to-Income Ratio",
		Value:     percent(dti),
		Threshold: "< " + number(pol.MaxDTIRatio) + "%",
		Pass:      dti <= pol.MaxDTIRatio,
	}

	dependentExpenses := float64(p.Dependents) * pol.ExpensePerDependent
	expenses := p.DebtRepayments + p.RentMortgage + dependentExpenses + running
	disposable := p.NetIncome - expenses - installment
	diCheck := RuleCheck{
		Label:     "Disposable Income Buffer",
		Value:     pol.money(disposable),
		Threshold: "> " + pol.money(pol.DisposableIncomeBuffer),
		Pass:      disposable >= pol.DisposableIncomeBuffer,
	}

	tco := totalMonthlyCost / ev.totalGross * 100
	tcoCheck := RuleCheck{
		Label:     "Total Cost of Ownership",
		Value:     percent(tco),
		Threshold: "< " + number(pol.MaxTCORatio) + "%",
		Pass:      tco <= pol.MaxTCORatio,
	}
	ev.checks = append(ev.checks, dtiCheck, diCheck, tcoCheck)

	ceilings := installmentCeilings{
		fromDTI: ev.totalGross*(pol.MaxDTIRatio/100) - p.DebtRepayments,
		fromTCO: ev.totalGross*(pol.MaxTCORatio/100) - running,
		fromDI:  p.NetIncome - expenses - pol.DisposableIncomeBuffer,
	}
	binding, maxInstallment := ceilings.binding()
	// Max loan assumes no balloon even when the request carries one.
	maxLoan := MaxPrincipal(maxInstallment, ev.rate, p.TermMonths)

	status := StatusApproved
	switch {
	case !dtiCheck.Pass || !diCheck.Pass || !tcoCheck.Pass:
		status = StatusNotApproved
		if requested > maxLoan {
			shortfall := math.Max(0, requested-maxLoan)
			ev.warn(fmt.Sprintf("The requested loan of %s exceeds your maximum affordable amount. To fix this, increase your deposit by at least %s or choose a cheaper vehicle.",
				pol.money(requested), pol.money(shortfall)))
		}
		if !dtiCheck.Pass {
			ev.warn("High Debt-to-Income Ratio: Your total debt is too high relative to your income. Try to pay down existing loans or credit cards to lower your monthly commitments.")
		}
		if !diCheck.Pass {
			ev.warn(fmt.Sprintf("Low Disposable Income: Your income after all expenses is below the required %s buffer. Review your budget to reduce monthly spending or lower the vehicle's running costs.",
				pol.moneyGrouped(pol.DisposableIncomeBuffer)))
		}
		if !tcoCheck.Pass {
			ev.warn(fmt.Sprintf("High Cost of Ownership: The vehicle's total monthly cost exceeds %s%% of your gross income. Consider a less expensive car, a larger deposit, or a model with lower insurance and fuel costs.",
				number(pol.MaxTCORatio)))
		}
	case dti > pol.WarnDTIRatio || tco > pol.WarnTCORatio:
		status = StatusApprovedWithConditions
	}

	if p.BalloonPercentage > 0 {
		ev.warn(fmt.Sprintf("A %d%% balloon payment requires a lump sum of %s at the end of the loan term. Ensure you plan for this.",
			p.BalloonPercentage, pol.money(balloon)))
	}
	if p.Deposit/p.PurchasePrice < pol.MinDepositRatio {
		ev.warn(fmt.Sprintf("A deposit of at least %s%% is recommended. A larger deposit reduces your monthly installment and loan risk.",
			number(pol.MinDepositRatio*100)))
	}

	return Result{
		Status:                status,
		MaxLoanAmount:         maxLoan,
		MonthlyInstallment:    installment,
		TotalMonthlyCost:      totalMonthlyCost,
		InterestRate:          ev.rate,
		DTIRatio:              dti,
		TCORatio:              tco,
		DisposableIncome:      disposable,
		Reasoning:             ev.checks,
		Warnings:              ev.warnings,
		MaxInstallmentFromDTI: ceilings.fromDTI,
		MaxInstallmentFromTCO: ceilings.fromTCO,
		MaxInstallmentFromDI:  ceilings.fromDI,
		BindingConstraint:     binding,
		IsCalculated:          true,
	}
}

func (ev *evaluation) warn(msg string) {
	ev.warnings = append(ev.warnings, msg)
}

// installmentCeilings are the largest installments each ratio still allows.
type installmentCeilings struct {
	fromDTI, fromTCO, fromDI float64
}

// binding picks the smallest ceiling, floored at zero. Ties go to the
// earlier constraint in DTI, TCO, DI order.
func (c installmentCeilings) binding() (Constraint, float64) {
	name, limit := ConstraintDebtToIncome, c.fromDTI
	if c.fromTCO < limit {
		name, limit = ConstraintCostOfOwnership, c.fromTCO
	}
	if c.fromDI < limit {
		name, limit = ConstraintDisposableIncome, c.fromDI
	}
	return name, math.Max(0, limit)
}

// Engine binds a policy and a clock so callers only pass the profile.
type Engine struct {
	policy Policy
	now    func() time.Time
}

type EngineOption func(*Engine)

// WithClock overrides the clock used to age the vehicle.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(policy Policy, opts ...EngineOption) *Engine {
	e := &Engine{policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Policy() Policy { return e.policy }

// Evaluate runs p against the bound policy and reports the instant it used.
func (e *Engine) Evaluate(p ApplicantProfile) (Result, time.Time) {
	asOf := e.now()
	return Evaluate(p, e.policy, asOf), asOf
}
