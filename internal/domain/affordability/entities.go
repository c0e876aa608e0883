package affordability

type Status string

const (
	StatusPending                Status = "PENDING"
	StatusNotApproved            Status = "Not Approved"
	StatusApprovedWithConditions Status = "Approved with Conditions"
	StatusApproved               Status = "Approved"
)

type EmploymentStatus string

const (
	EmploymentPermanent    EmploymentStatus = "permanent"
	EmploymentContract     EmploymentStatus = "contract"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
)

func (s EmploymentStatus) Label() string {
	switch s {
	case EmploymentPermanent:
		return "Permanent"
	case EmploymentContract:
		return "Contract"
	case EmploymentSelfEmployed:
		return "Self-employed"
	}
	return string(s)
}

// NonPermanent reports whether the tenure floor applies.
func (s EmploymentStatus) NonPermanent() bool {
	return s == EmploymentContract || s == EmploymentSelfEmployed
}

type CreditTier string

const (
	CreditPoor      CreditTier = "poor"
	CreditFair      CreditTier = "fair"
	CreditGood      CreditTier = "good"
	CreditExcellent CreditTier = "excellent"
)

// Band is the score range a tier stands for.
func (t CreditTier) Band() string {
	switch t {
	case CreditPoor:
		return "<580"
	case CreditFair:
		return "580-669"
	case CreditGood:
		return "670-739"
	case CreditExcellent:
		return "740+"
	}
	return string(t)
}

func (t CreditTier) Label() string {
	switch t {
	case CreditPoor:
		return "Poor"
	case CreditFair:
		return "Fair"
	case CreditGood:
		return "Good"
	case CreditExcellent:
		return "Excellent"
	}
	return string(t)
}

// ApplicantProfile is the full input of one evaluation. Amounts are monthly
// unless stated otherwise; percentages are whole numbers 0-100.
type ApplicantProfile struct {
	GrossIncome           float64          `json:"gross_income"`
	NetIncome             float64          `json:"net_income"`
	FreelanceIncomeMonth1 float64          `json:"freelance_income_month1"`
	FreelanceIncomeMonth2 float64          `json:"freelance_income_month2"`
	FreelanceIncomeMonth3 float64          `json:"freelance_income_month3"`
	EmploymentStatus      EmploymentStatus `json:"employment_status"`
	EmploymentMonths      int              `json:"employment_months"`
	ApplicantAge          int              `json:"applicant_age"`
	DebtRepayments        float64          `json:"debt_repayments"`
	RentMortgage          float64          `json:"rent_mortgage"`
	Dependents            int              `json:"dependents"`
	CreditTier            CreditTier       `json:"credit_tier"`
	AdverseRecord         bool             `json:"adverse_record"`
	PurchasePrice         float64          `json:"purchase_price"`
	VehicleYear           int              `json:"vehicle_year"`
	Deposit               float64          `json:"deposit"`
	TermMonths            int              `json:"term_months"`
	BalloonPercentage     int              `json:"balloon_percentage"`
	Insurance             float64          `json:"insurance"`
	Fuel                  float64          `json:"fuel"`
	Maintenance           float64          `json:"maintenance"`
}

// AverageFreelanceIncome is the mean of the three trailing freelance months.
func (p ApplicantProfile) AverageFreelanceIncome() float64 {
	return (p.FreelanceIncomeMonth1 + p.FreelanceIncomeMonth2 + p.FreelanceIncomeMonth3) / 3
}

func (p ApplicantProfile) TotalGrossIncome() float64 {
	return p.GrossIncome + p.AverageFreelanceIncome()
}

func (p ApplicantProfile) RunningCosts() float64 {
	return p.Insurance + p.Fuel + p.Maintenance
}

type RuleCheck struct {
	Pass      bool   `json:"pass"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Threshold string `json:"threshold"`
}

// Constraint names the affordability rule that caps the loan.
type Constraint string

const (
	ConstraintNone             Constraint = ""
	ConstraintDebtToIncome     Constraint = "debt_to_income"
	ConstraintCostOfOwnership  Constraint = "total_cost_of_ownership"
	ConstraintDisposableIncome Constraint = "disposable_income"
)

type Result struct {
	Status                Status      `json:"status"`
	MaxLoanAmount         float64     `json:"max_loan_amount"`
	MonthlyInstallment    float64     `json:"monthly_installment"`
	TotalMonthlyCost      float64     `json:"total_monthly_cost"`
	InterestRate          float64     `json:"interest_rate"`
	DTIRatio              float64     `json:"dti_ratio"`
	TCORatio              float64     `json:"tco_ratio"`
	DisposableIncome      float64     `json:"disposable_income"`
	Reasoning             []RuleCheck `json:"reasoning"`
	Warnings              []string    `json:"warnings"`
	MaxInstallmentFromDTI float64     `json:"max_installment_from_dti"`
	MaxInstallmentFromTCO float64     `json:"max_installment_from_tco"`
	MaxInstallmentFromDI  float64     `json:"max_installment_from_di"`
	BindingConstraint     Constraint  `json:"binding_constraint,omitempty"`
	IsCalculated          bool        `json:"is_calculated"`
}

// PendingResult is returned while required inputs are still missing.
func PendingResult() Result {
	return Result{
		Status:    StatusPending,
		Reasoning: []RuleCheck{},
		Warnings:  []string{},
	}
}
