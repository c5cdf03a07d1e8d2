// internal/pipeline/decide/decide.go

// Package decide maps an evaluation result onto a candidature status
// and the notification variant to send.
package decide

import (
	"cv-screening/internal/pipeline/candidacy"
	"cv-screening/internal/pipeline/evaluate"
)

// Variant selects the notification template family.
type Variant string

const (
	VariantAccepted Variant = "accepted"
	VariantRejected Variant = "rejected"
	VariantError    Variant = "error"
)

// Decision is the one-shot outcome of the engine. There are no other
// transitions.
type Decision struct {
	Status  candidacy.Status
	Variant Variant
}

// Decide applies the decision rules. A failed evaluation is routed to
// manual review rather than rejected, so candidates are never refused
// because the evaluator was down.
func Decide(result *evaluate.EvaluationResult) Decision {
	switch {
	case !result.Success:
		return Decision{Status: candidacy.StatusEnCours, Variant: VariantError}
	case result.Passed:
		return Decision{Status: candidacy.StatusEnCours, Variant: VariantAccepted}
	default:
		return Decision{Status: candidacy.StatusRefusee, Variant: VariantRejected}
	}
}
