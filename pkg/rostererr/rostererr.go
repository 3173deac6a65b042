// Package rostererr defines the structured error kinds the scheduling core
// raises: InvalidInput and Infeasible before any solving is attempted,
// Unsatisfiable after the solver's budget is exhausted, and VerifierFailed
// when a produced schedule fails its own verification. None of these are
// ever swallowed or retried silently.
package rostererr

import "fmt"

// InvalidInput reports missing or negative fields in the doctor config, or
// an unrecognised month/year.
type InvalidInput struct {
	Reason string
}

func (e InvalidInput) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// Infeasible reports a mismatch between the aggregate enumerated slot count
// and the aggregate effective quota for one (period, post) bucket, found by
// the precheck before the solver is ever invoked.
type Infeasible struct {
	Period   string
	Post     string
	Expected int
	Got      int
}

func (e Infeasible) Error() string {
	return fmt.Sprintf("infeasible: %s/%s expects %d slots from aggregate quotas, enumerator produced %d",
		e.Period, e.Post, e.Expected, e.Got)
}

// Unsatisfiable reports that the solver could not find a hard-feasible
// assignment within its time or iteration budget.
type Unsatisfiable struct {
	Reason string
}

func (e Unsatisfiable) Error() string {
	if e.Reason == "" {
		return "unsatisfiable: no feasible assignment found within budget"
	}
	return fmt.Sprintf("unsatisfiable: %s", e.Reason)
}

// VerifierFailed reports that a produced schedule fails the verifier. This
// indicates a programming error in the solver; the run aborts rather than
// retrying.
type VerifierFailed struct {
	Violations []string
}

func (e VerifierFailed) Error() string {
	return fmt.Sprintf("verifier failed: %d violation(s), first: %s", len(e.Violations), firstOrEmpty(e.Violations))
}

func firstOrEmpty(v []string) string {
	if len(v) == 0 {
		return "(none recorded)"
	}
	return v[0]
}
