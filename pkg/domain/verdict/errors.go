package verdict

import "errors"

var (
	// ErrClassifierFailure marks a Tier-1 call that could not produce a label.
	// The router treats the prompt as SUSPICIOUS and reports the failure with
	// reason "classifier"; the cause stays wrapped.
	ErrClassifierFailure = errors.New("tier-1 classifier failure")

	// ErrAnalysisParse is returned when a Tier-2 response carries no usable
	// structured verdict. It is never downgraded to a default verdict.
	ErrAnalysisParse = errors.New("tier-2 analysis parse error")

	// ErrAnalyzerUnavailable wraps Tier-2 transport failures and timeouts.
	ErrAnalyzerUnavailable = errors.New("tier-2 analyzer unavailable")
)
