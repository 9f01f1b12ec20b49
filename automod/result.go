package automod

// Outcome of classifying a single message.
//
// A result is either "ok" (the category came from the denylist or a valid oracle answer) or "degraded" (the oracle failed, and the category is the neutral fallback). Degraded results behave exactly like Plain for users; the Cause is only for operators.
type Result struct {
	Category Category
	// non-nil when the result is degraded
	Cause error
}

func Ok(c Category) Result {
	return Result{Category: c}
}

// Fallback result for a failed classification. Always resolves to Plain.
func Degraded(cause error) Result {
	return Result{Category: Plain, Cause: cause}
}

func (r Result) IsDegraded() bool {
	return r.Cause != nil
}
