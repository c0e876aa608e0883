package http

import (
	"net/http"

	domain "vehicle-affordability/internal/domain/affordability"
	"vehicle-affordability/internal/usecase/affordability"

	"github.com/labstack/echo/v4"
)

type AffordabilityHandler struct{ uc *affordability.Usecase }

func NewAffordabilityHandler(uc *affordability.Usecase) *AffordabilityHandler {
	return &AffordabilityHandler{uc: uc}
}

// Zero income or price is accepted and yields a PENDING result.
type evaluateReq struct {
	GrossIncome           float64 `json:"gross_income"            validate:"gte=0,dec2"`
	NetIncome             float64 `json:"net_income"              validate:"gte=0,dec2"`
	FreelanceIncomeMonth1 float64 `json:"freelance_income_month1" validate:"gte=0,dec2"`
	FreelanceIncomeMonth2 float64 `json:"freelance_income_month2" validate:"gte=0,dec2"`
	FreelanceIncomeMonth3 float64 `json:"freelance_income_month3" validate:"gte=0,dec2"`
	EmploymentStatus      string  `json:"employment_status"       validate:"required,employment"`
	EmploymentMonths      int     `json:"employment_months"       validate:"gte=0,lte=720"`
	ApplicantAge          int     `json:"applicant_age"           validate:"gte=0,lte=130"`
	DebtRepayments        float64 `json:"debt_repayments"         validate:"gte=0,dec2"`
	RentMortgage          float64 `json:"rent_mortgage"           validate:"gte=0,dec2"`
	Dependents            int     `json:"dependents"              validate:"gte=0,lte=30"`
	CreditTier            string  `json:"credit_tier"             validate:"required,credittier"`
	AdverseRecord         bool    `json:"adverse_record"`
	PurchasePrice         float64 `json:"purchase_price"          validate:"gte=0,dec2"`
	VehicleYear           int     `json:"vehicle_year"            validate:"gte=1900,lte=2200"`
	Deposit               float64 `json:"deposit"                 validate:"gte=0,dec2"`
	TermMonths            int     `json:"term_months"             validate:"gte=1,lte=600"`
	BalloonPercentage     int     `json:"balloon_percentage"      validate:"gte=0,lte=100"`
	Insurance             float64 `json:"insurance"               validate:"gte=0,dec2"`
	Fuel                  float64 `json:"fuel"                    validate:"gte=0,dec2"`
	Maintenance           float64 `json:"maintenance"             validate:"gte=0,dec2"`
}

func (r evaluateReq) toProfile() domain.ApplicantProfile {
	return domain.ApplicantProfile{
		GrossIncome:           r.GrossIncome,
		NetIncome:             r.NetIncome,
		FreelanceIncomeMonth1: r.FreelanceIncomeMonth1,
		FreelanceIncomeMonth2: r.FreelanceIncomeMonth2,
		FreelanceIncomeMonth3: r.FreelanceIncomeMonth3,
		EmploymentStatus:      domain.EmploymentStatus(r.EmploymentStatus),
		EmploymentMonths:      r.EmploymentMonths,
		ApplicantAge:          r.ApplicantAge,
		DebtRepayments:        r.DebtRepayments,
		RentMortgage:          r.RentMortgage,
		Dependents:            r.Dependents,
		CreditTier:            domain.CreditTier(r.CreditTier),
		AdverseRecord:         r.AdverseRecord,
		PurchasePrice:         r.PurchasePrice,
		VehicleYear:           r.VehicleYear,
		Deposit:               r.Deposit,
		TermMonths:            r.TermMonths,
		BalloonPercentage:     r.BalloonPercentage,
		Insurance:             r.Insurance,
		Fuel:                  r.Fuel,
		Maintenance:           r.Maintenance,
	}
}

// offeredOptionErrors rejects terms and balloons the active policy does not offer.
func offeredOptionErrors(pol domain.Policy, r evaluateReq) []FieldError {
	var out []FieldError
	if !pol.OffersTerm(r.TermMonths) {
		out = append(out, FieldError{Field: "term_months", Message: "must be one of " + joinInts(pol.LoanTerms)})
	}
	if !pol.OffersBalloon(r.BalloonPercentage) {
		out = append(out, FieldError{Field: "balloon_percentage", Message: "must be one of " + joinInts(pol.BalloonPercentages)})
	}
	return out
}

func (h *AffordabilityHandler) Evaluate(c echo.Context) error {
	var req evaluateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	pol, err := h.uc.ActivePolicy()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	}
	if details := offeredOptionErrors(pol, req); len(details) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
	}

	dto, err := h.uc.Evaluate(c.Request().Context(), req.toProfile())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AffordabilityHandler) Defaults(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.DefaultProfile())
}

func (h *AffordabilityHandler) Policy(c echo.Context) error {
	dto, err := h.uc.Policy()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, dto)
}
