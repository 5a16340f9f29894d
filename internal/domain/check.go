package domain

import "time"

// Outcome is the pass/fail state of a single check or unit.
type Outcome string

const (
	OutcomeOk   Outcome = "ok"
	OutcomeFail Outcome = "fail"
)

// Severity decides whether a failing finding fails the whole run.
type Severity int

const (
	// HardFail checks fail the run when their finding fails.
	HardFail Severity = iota
	// WarnOnly checks are advisory: their finding is printed but never fails the run.
	WarnOnly
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case HardFail:
		return "hard"
	case WarnOnly:
		return "warn"
	default:
		return "unknown"
	}
}

// Finding is what a probe actually observed, before the severity policy applies.
type Finding struct {
	Outcome Outcome
	Message string
}

// Pass builds a passing finding.
func Pass(message string) Finding {
	return Finding{Outcome: OutcomeOk, Message: message}
}

// Failed builds a failing finding.
func Failed(message string) Finding {
	return Finding{Outcome: OutcomeFail, Message: message}
}

// OK reports whether the finding passed.
func (f Finding) OK() bool {
	return f.Outcome == OutcomeOk
}

// Effective applies the severity policy. Advisory checks always pass.
func (s Severity) Effective(raw Outcome) Outcome {
	if s == WarnOnly {
		return OutcomeOk
	}
	return raw
}

// CheckResult is produced once per check invocation and never mutated afterwards.
type CheckResult struct {
	Number      int
	Description string
	Severity    Severity
	Raw         Outcome
	Outcome     Outcome
	Message     string
	Duration    time.Duration
}

// OK reports whether the check counts as passing for the run verdict.
func (r CheckResult) OK() bool {
	return r.Outcome == OutcomeOk
}

// Warning reports whether an advisory check found something worth printing.
func (r CheckResult) Warning() bool {
	return r.Outcome == OutcomeOk && r.Raw == OutcomeFail
}
