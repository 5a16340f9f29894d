// Package report turns check and test results into the human-readable
// report and the process verdict.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bitrise-io/go-utils/colorstring"

	"github.com/nuniesmith/fks-main/internal/domain"
)

// Options controls rendering.
type Options struct {
	// Color wraps status labels in ANSI colors.
	Color bool
}

// Verdict is the aggregated outcome of a pre-flight run.
type Verdict struct {
	ExitCode int
	Passed   int
	Failed   int
	Total    int
	Report   string
}

// Aggregate renders the pre-flight report and decides the exit status. The
// results are re-sorted by check number; only effective Fail outcomes count.
func Aggregate(results []domain.CheckResult, opts Options) (Verdict, error) {
	sorted := append([]domain.CheckResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	var b strings.Builder
	rule := strings.Repeat("-", domain.SeparatorWidth)

	fmt.Fprintln(&b, "Running pre-flight checks")
	fmt.Fprintln(&b, rule)

	var failed []domain.CheckResult
	for _, r := range sorted {
		fmt.Fprintf(&b, "%02d %s %s (%.2fs)\n", r.Number, label(r.Status(), opts), r.Description, r.Duration.Seconds())
		if r.Message != "" {
			fmt.Fprintf(&b, "    %s\n", r.Message)
		}
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	fmt.Fprintln(&b, rule)

	v := Verdict{Total: len(sorted), Failed: len(failed), Passed: len(sorted) - len(failed)}
	if len(failed) == 0 {
		fmt.Fprintln(&b, paint(fmt.Sprintf("ALL GREEN (%d/%d)", v.Passed, v.Total), green, opts))
		v.Report = b.String()
		return v, nil
	}

	fmt.Fprintln(&b, paint(fmt.Sprintf("%d checks failed - fix before proceeding:", len(failed)), red, opts))
	for _, r := range failed {
		fmt.Fprintf(&b, "  %02d %s: %s\n", r.Number, r.Description, r.Message)
	}
	v.ExitCode = 1
	v.Report = b.String()
	return v, &domain.CountError{Kind: domain.ErrHardCheckFailure, Count: len(failed)}
}

func label(status domain.LineStatus, opts Options) string {
	switch status {
	case domain.LineFail:
		return paint("[FAIL]", red, opts)
	case domain.LineWarn:
		return paint("[WARN]", yellow, opts)
	default:
		return paint("[OK]  ", green, opts)
	}
}

func green(s string) string  { return colorstring.Green(s) }
func red(s string) string    { return colorstring.Red(s) }
func yellow(s string) string { return colorstring.Yellow(s) }

func paint(s string, color func(string) string, opts Options) string {
	if !opts.Color {
		return s
	}
	return color(s)
}
