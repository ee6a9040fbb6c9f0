package stresstest

import "errors"

// Verdict is the assessment of a finished run
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictWarning Verdict = "WARNING"
	VerdictFail    Verdict = "FAIL"
)

// Success rate bands
const (
	PassThreshold    = 0.95
	WarningThreshold = 0.80
)

// ErrBelowThreshold is returned when the success rate is below WarningThreshold
var ErrBelowThreshold = errors.New("load test success rate below threshold")

// Assess grades a run by its success rate
func Assess(s Summary) Verdict {
	rate := s.SuccessRate()
	switch {
	case rate >= PassThreshold:
		return VerdictPass
	case rate >= WarningThreshold:
		return VerdictWarning
	default:
		return VerdictFail
	}
}

// ExitFailed reports whether the run should fail the calling process. The
// warning band still exits successfully.
func (s Summary) ExitFailed() bool {
	return s.SuccessRate() < WarningThreshold
}
