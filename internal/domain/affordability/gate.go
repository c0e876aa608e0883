package affordability

import (
	"fmt"
	"strconv"
)

// evaluation carries the inputs of one run through the gates and ratios.
type evaluation struct {
	profile    ApplicantProfile
	policy     Policy
	year       int
	totalGross float64

	// set by the credit gate once the tier is priced
	rate float64

	checks   []RuleCheck
	warnings []string
}

// gate is one hard pre-condition. A failing check ends the evaluation and
// advice becomes its only warning.
type gate func(ev *evaluation) (check RuleCheck, advice string)

// gates run in this order; the first failure wins.
var gates = []gate{
	adverseRecordGate,
	applicantAgeGate,
	employmentGate,
	vehicleAgeGate,
	creditTierGate,
}

// runGates returns false once a gate fails, leaving the failing check last in
// ev.checks.
func (ev *evaluation) runGates() bool {
	for _, g := range gates {
		check, advice := g(ev)
		ev.checks = append(ev.checks, check)
		if !check.Pass {
			ev.warnings = append(ev.warnings, advice)
			return false
		}
	}
	return true
}

func adverseRecordGate(ev *evaluation) (RuleCheck, string) {
	check := RuleCheck{Label: "Adverse Credit Record", Value: "No", Threshold: "Must be No", Pass: true}
	if ev.profile.AdverseRecord {
		check.Value = "Yes"
		check.Pass = false
	}
	return check, "An adverse credit record is a primary reason for decline. Focus on resolving any defaults or judgments before reapplying."
}

func applicantAgeGate(ev *evaluation) (RuleCheck, string) {
	pol := ev.policy
	age := ev.profile.ApplicantAge
	return RuleCheck{
			Label:     "Applicant Age",
			Value:     strconv.Itoa(age),
			Threshold: fmt.Sprintf("%d-%d", pol.MinApplicantAge, pol.MaxApplicantAge),
			Pass:      age >= pol.MinApplicantAge && age <= pol.MaxApplicantAge,
		},
		fmt.Sprintf("Applications can only be approved for individuals between the ages of %d and %d.",
			pol.MinApplicantAge, pol.MaxApplicantAge)
}

func employmentGate(ev *evaluation) (RuleCheck, string) {
	minMonths := ev.policy.MinNonPermanentTenureMonths
	status := ev.profile.EmploymentStatus
	tenure := ev.profile.EmploymentMonths

	check := RuleCheck{Label: "Employment Stability", Value: months(tenure), Threshold: "N/A", Pass: true}
	if status.NonPermanent() {
		check.Threshold = "> " + months(minMonths)
		check.Pass = tenure >= minMonths
	}
	return check, fmt.Sprintf("For %s status, lenders require at least %d months of history. Continue building your track record.",
		status.Label(), minMonths)
}

// vehicleAgeAtEnd is the projected age of the vehicle when the term ends.
func (ev *evaluation) vehicleAgeAtEnd() float64 {
	return float64(ev.year-ev.profile.VehicleYear) + float64(ev.profile.TermMonths)/12
}

func vehicleAgeGate(ev *evaluation) (RuleCheck, string) {
	ageAtEnd := ev.vehicleAgeAtEnd()
	maxAge := ev.policy.MaxVehicleAgeAtEnd
	return RuleCheck{
		Label:     "Vehicle Age at Term End",
		Value:     years(ageAtEnd),
		Threshold: "< " + number(maxAge) + " yrs",
		Pass:      ageAtEnd <= maxAge,
	}, "The vehicle will be too old at the end of the term. Please choose a newer vehicle or a shorter loan term."
}

func creditTierGate(ev *evaluation) (RuleCheck, string) {
	tier := ev.profile.CreditTier
	check := RuleCheck{Label: "Credit Score", Value: tier.Band(), Threshold: "> " + CreditPoor.Band()}

	switch pricing := ev.policy.Rates.Lookup(tier).(type) {
	case Priced:
		ev.rate = pricing.AnnualRate
		check.Pass = true
	case Declined:
		check.Pass = false
	}
	return check, fmt.Sprintf("A '%s' credit score indicates high risk. Work on improving your score by paying bills on time and reducing existing debt before applying for new credit.",
		tier.Label())
}
