package vcf

// Outcome is the aggregate result of an export.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"      // every contact was exported
	OutcomePartial Outcome = "partial" // some contacts failed
	OutcomeFail    Outcome = "fail"    // nothing was exported
)

// Failure records why a single contact was left out of an export.
type Failure struct {
	Index     int    `json:"index"`
	ContactID string `json:"contact_id,omitempty"`
	Err       error  `json:"-"`
	Message   string `json:"message"`
}

// Result is returned by Encoder.Encode.
//
// Succeeded and Failed count contacts; they are both zero when the export
// could not start. Err is set only for whole-export errors (sink unavailable,
// serialization failure, cancellation) and is a *errors.RolodexError.
type Result struct {
	Outcome   Outcome   `json:"outcome"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
	Err       error     `json:"-"`
}

// computeOutcome derives the outcome from the final counters.
func computeOutcome(succeeded, failed int) Outcome {
	switch {
	case succeeded == 0:
		return OutcomeFail
	case failed > 0:
		return OutcomePartial
	default:
		return OutcomeOK
	}
}
