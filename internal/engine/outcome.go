package engine

import "time"

// Step names one phase of a profile run, in execution order.
type Step string

const (
	StepStartSession   Step = "START_SESSION"
	StepGetDashboard   Step = "GET_DASHBOARD"
	StepPunchcards     Step = "PUNCHCARDS"
	StepPromotions     Step = "PROMOTIONS"
	StepPCSearches     Step = "PC_SEARCHES"
	StepMobileSearches Step = "MOBILE_SEARCHES"
	StepEndSession     Step = "END_SESSION"
)

// Outcome is the verdict of one step.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeSkipped Outcome = "SKIPPED"
)

// StepResult records how one step of a profile run went.
type StepResult struct {
	Step        Step
	Outcome     Outcome
	Explanation string
	Duration    time.Duration
}

// Aggregate folds step results into one profile verdict. A run where every
// step was skipped (or that ran nothing at all) is SKIPPED; one failing step
// fails the run; anything else is a success.
func Aggregate(steps []StepResult) Outcome {
	allSkipped := true
	for _, s := range steps {
		switch s.Outcome {
		case OutcomeFailure:
			return OutcomeFailure
		case OutcomeSkipped:
		default:
			allSkipped = false
		}
	}
	if allSkipped {
		return OutcomeSkipped
	}
	return OutcomeSuccess
}
