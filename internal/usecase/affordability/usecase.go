package affordability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domain "vehicle-affordability/internal/domain/affordability"
	"vehicle-affordability/internal/domain/policy"
	"vehicle-affordability/pkg/id"
)

var ErrPolicyNotLoaded = errors.New("affordability policy not loaded")

// Recorder receives one observation per completed evaluation.
type Recorder interface {
	ObserveEvaluation(status string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveEvaluation(string, time.Duration) {}

type Usecase struct {
	repo       policy.Repository
	policyName string
	now        func() time.Time
	rec        Recorder
	log        *slog.Logger

	mu     sync.RWMutex
	engine *domain.Engine
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func WithRecorder(r Recorder) Option {
	return func(u *Usecase) {
		if r != nil {
			u.rec = r
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.log = l } }

func NewUsecase(r policy.Repository, policyName string, opts ...Option) *Usecase {
	u := &Usecase{
		repo:       r,
		policyName: policyName,
		now:        time.Now,
		rec:        nopRecorder{},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// LoadPolicy reads the named policy from the store and makes it active. A
// missing policy is seeded from the defaults under that name first.
func (u *Usecase) LoadPolicy(ctx context.Context) error {
	rec, err := u.repo.GetByName(ctx, u.policyName)
	switch {
	case errors.Is(err, policy.ErrNotFound):
		seed := domain.DefaultPolicy()
		seed.Name = u.policyName
		rec = policy.FromDomain(seed)
		if err := u.repo.Create(ctx, rec); err != nil {
			// another instance may have seeded the same name first
			stored, getErr := u.repo.GetByName(ctx, u.policyName)
			if getErr != nil {
				return fmt.Errorf("seed policy %s: %w", u.policyName, err)
			}
			u.log.Info("policy seeded concurrently", "policy", u.policyName, "create_error", err)
			rec = stored
			break
		}
		u.log.Info("seeded default policy", "policy", u.policyName)
	case err != nil:
		return fmt.Errorf("load policy %s: %w", u.policyName, err)
	}

	pol, err := rec.ToDomain()
	if err != nil {
		return fmt.Errorf("load policy %s: %w", u.policyName, err)
	}

	u.mu.Lock()
	u.engine = domain.NewEngine(pol, domain.WithClock(u.now))
	u.mu.Unlock()
	u.log.Info("policy loaded", "policy", pol.Name, "prime_rate", pol.PrimeRate)
	return nil
}

func (u *Usecase) activeEngine() (*domain.Engine, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.engine == nil {
		return nil, ErrPolicyNotLoaded
	}
	return u.engine, nil
}

// ActivePolicy returns the policy evaluations currently run under.
func (u *Usecase) ActivePolicy() (domain.Policy, error) {
	eng, err := u.activeEngine()
	if err != nil {
		return domain.Policy{}, err
	}
	return eng.Policy(), nil
}

func (u *Usecase) Policy() (*PolicyDTO, error) {
	pol, err := u.ActivePolicy()
	if err != nil {
		return nil, err
	}
	dto := toPolicyDTO(pol)
	return &dto, nil
}

func (u *Usecase) Evaluate(ctx context.Context, p domain.ApplicantProfile) (*EvaluationDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	eng, err := u.activeEngine()
	if err != nil {
		return nil, err
	}
	pol := eng.Policy()

	began := time.Now()
	res, asOf := eng.Evaluate(p)
	u.rec.ObserveEvaluation(string(res.Status), time.Since(began))

	dto := &EvaluationDTO{
		EvaluationID: id.NewID32(),
		EvaluatedAt:  asOf.UTC(),
		Policy:       pol.Name,
		Result:       res,
	}
	u.log.InfoContext(ctx, "affordability evaluated",
		"evaluation_id", dto.EvaluationID,
		"policy", pol.Name,
		"status", res.Status,
		"max_loan_amount", res.MaxLoanAmount,
		"checks", len(res.Reasoning),
	)
	return dto, nil
}

// DefaultProfile is the sample applicant offered to a blank form.
func (u *Usecase) DefaultProfile() domain.ApplicantProfile {
	return domain.ApplicantProfile{
		GrossIncome:       30000,
		NetIncome:         24000,
		EmploymentStatus:  domain.EmploymentPermanent,
		EmploymentMonths:  24,
		ApplicantAge:      30,
		DebtRepayments:    3000,
		RentMortgage:      6000,
		CreditTier:        domain.CreditGood,
		PurchasePrice:     250000,
		VehicleYear:       u.now().Year() - 2,
		Deposit:           25000,
		TermMonths:        72,
		BalloonPercentage: 0,
		Insurance:         1500,
		Fuel:              2000,
		Maintenance:       500,
	}
}
