package domain

// LineStatus is the status label printed for a report line.
type LineStatus string

const (
	LineOK   LineStatus = "ok"
	LineWarn LineStatus = "warn"
	LineFail LineStatus = "fail"
)

// Status maps a check result to its printed status.
func (r CheckResult) Status() LineStatus {
	switch {
	case !r.OK():
		return LineFail
	case r.Warning():
		return LineWarn
	default:
		return LineOK
	}
}
