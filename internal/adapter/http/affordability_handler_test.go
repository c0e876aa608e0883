package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "vehicle-affordability/internal/domain/affordability"
	"vehicle-affordability/internal/domain/policy"
	"vehicle-affordability/internal/testutil/policymock"
	uc "vehicle-affordability/internal/usecase/affordability"

	"github.com/labstack/echo/v4"
)

// -------- helpers --------

const testPolicyName = "handler-test"

var fixedNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newUsecase(repo policy.Repository) *uc.Usecase {
	return uc.NewUsecase(repo, testPolicyName,
		uc.WithClock(func() time.Time { return fixedNow }),
		uc.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func newLoadedUsecase(t *testing.T, repo policy.Repository) *uc.Usecase {
	t.Helper()
	u := newUsecase(repo)
	if err := u.LoadPolicy(context.Background()); err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	return u
}

func scenarioA() map[string]any {
	return map[string]any{
		"gross_income":       30000,
		"net_income":         24000,
		"employment_status":  "permanent",
		"employment_months":  24,
		"applicant_age":      30,
		"debt_repayments":    3000,
		"rent_mortgage":      6000,
		"dependents":         0,
		"credit_tier":        "good",
		"adverse_record":     false,
		"purchase_price":     250000,
		"vehicle_year":       2024,
		"deposit":            25000,
		"term_months":        72,
		"balloon_percentage": 0,
		"insurance":          1500,
		"fuel":               2000,
		"maintenance":        500,
	}
}

func postEvaluation(t *testing.T, h *AffordabilityHandler, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/v1/affordability/evaluations", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Evaluate(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	return out
}

// -------- tests --------

func TestEvaluate_ScenarioA(t *testing.T) {
	h := NewAffordabilityHandler(newLoadedUsecase(t, &policymock.Repo{}))

	rec := postEvaluation(t, h, mustJSON(scenarioA()))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}

	var out uc.EvaluationDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.EvaluationID) != 32 {
		t.Fatalf("evaluation_id = %q", out.EvaluationID)
	}
	if out.Policy != testPolicyName || !out.EvaluatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected envelope: %+v", out)
	}
	res := out.Result
	if res.Status != domain.StatusNotApproved || !res.IsCalculated {
		t.Fatalf("status = %q calculated=%v", res.Status, res.IsCalculated)
	}
	if res.InterestRate != 12.25 {
		t.Fatalf("interest rate = %v", res.InterestRate)
	}
	if d := res.MonthlyInstallment - 4428.0996; d > 1e-3 || d < -1e-3 {
		t.Fatalf("installment = %v", res.MonthlyInstallment)
	}
	if res.BindingConstraint != domain.ConstraintCostOfOwnership {
		t.Fatalf("binding constraint = %q", res.BindingConstraint)
	}
	if len(res.Reasoning) != 8 {
		t.Fatalf("reasoning = %d checks, want 8", len(res.Reasoning))
	}
}

func TestEvaluate_PendingWhenIncomeMissing(t *testing.T) {
	h := NewAffordabilityHandler(newLoadedUsecase(t, &policymock.Repo{}))

	body := scenarioA()
	body["gross_income"] = 0
	rec := postEvaluation(t, h, mustJSON(body))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	var out uc.EvaluationDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Result.Status != domain.StatusPending || out.Result.IsCalculated {
		t.Fatalf("expected PENDING, got %+v", out.Result)
	}
}

func TestEvaluate_InvalidJSON(t *testing.T) {
	h := NewAffordabilityHandler(newLoadedUsecase(t, &policymock.Repo{}))

	rec := postEvaluation(t, h, strings.NewReader(`{"gross_income":`))
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeErr(t, rec).Error; got != "invalid body" {
		t.Fatalf("error = %q", got)
	}
}

func TestEvaluate_ValidationFailed(t *testing.T) {
	h := NewAffordabilityHandler(newLoadedUsecase(t, &policymock.Repo{}))

	body := scenarioA()
	body["credit_tier"] = "great"
	body["employment_status"] = "freelance"
	body["deposit"] = 100.123
	body["applicant_age"] = -1
	rec := postEvaluation(t, h, mustJSON(body))
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	out := decodeErr(t, rec)
	if out.Error != "validation failed" {
		t.Fatalf("error = %q", out.Error)
	}
	for _, want := range []struct{ field, msg string }{
		{"credit_tier", "must be one of poor"},
		{"employment_status", "must be one of permanent"},
		{"deposit", "at most 2 decimal places"},
		{"applicant_age", "greater than or equal to 0"},
	} {
		if !containsFieldMsg(out.Details, want.field, want.msg) {
			t.Fatalf("missing %s: %q in %+v", want.field, want.msg, out.Details)
		}
	}
}

func TestEvaluate_RejectsTermsNotOffered(t *testing.T) {
	h := NewAffordabilityHandler(newLoadedUsecase(t, &policymock.Repo{}))

	body := scenarioA()
	body["term_months"] = 18
	body["balloon_percentage"] = 25
	rec := postEvaluation(t, h, mustJSON(body))
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	out := decodeErr(t, rec)
	if !containsFieldMsg(out.Details, "term_months", "must be one of 12, 24, 36, 48, 60, 72") {
		t.Fatalf("missing term_months detail: %+v", out.Details)
	}
	if !containsFieldMsg(out.Details, "balloon_percentage", "must be one of 0, 10, 20, 30") {
		t.Fatalf("missing balloon_percentage detail: %+v", out.Details)
	}
}

func TestEvaluate_StoredPolicyOffersOtherTerms(t *testing.T) {
	stored := domain.DefaultPolicy()
	stored.Name = testPolicyName
	stored.LoanTerms = []int{18}
	repo := &policymock.Repo{
		GetByNameFn: func(ctx context.Context, name string) (*policy.Policy, error) {
			return policy.FromDomain(stored), nil
		},
	}
	h := NewAffordabilityHandler(newLoadedUsecase(t, repo))

	body := scenarioA()
	body["term_months"] = 18
	if rec := postEvaluation(t, h, mustJSON(body)); rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestEvaluate_PolicyNotLoaded(t *testing.T) {
	h := NewAffordabilityHandler(newUsecase(&policymock.Repo{}))

	rec := postEvaluation(t, h, mustJSON(scenarioA()))
	if rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestDefaults_ReturnsSampleApplicant(t *testing.T) {
	e := newEchoWithValidator()
	h := NewAffordabilityHandler(newUsecase(&policymock.Repo{}))

	req := httptest.NewRequest(stdhttp.MethodGet, "/v1/affordability/defaults", nil)
	rec := httptest.NewRecorder()
	if err := h.Defaults(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got domain.ApplicantProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.GrossIncome != 30000 || got.CreditTier != domain.CreditGood || got.VehicleYear != 2024 {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestPolicy_Endpoint(t *testing.T) {
	e := newEchoWithValidator()

	h := NewAffordabilityHandler(newUsecase(&policymock.Repo{}))
	req := httptest.NewRequest(stdhttp.MethodGet, "/v1/affordability/policy", nil)
	rec := httptest.NewRecorder()
	_ = h.Policy(e.NewContext(req, rec))
	if rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 before load", rec.Code)
	}

	h = NewAffordabilityHandler(newLoadedUsecase(t, &policymock.Repo{}))
	rec = httptest.NewRecorder()
	if err := h.Policy(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got uc.PolicyDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Name != testPolicyName || got.MaxDTIRatio != 40 || len(got.Rates) != 4 {
		t.Fatalf("unexpected policy: %+v", got)
	}
}
