package report

import (
	"fmt"
	"strings"

	"github.com/nuniesmith/fks-main/internal/domain"
)

// RenderTests renders the test run report. Results are printed in the order given.
func RenderTests(run domain.TestRunReport, opts Options) string {
	var b strings.Builder
	rule := strings.Repeat("-", domain.SeparatorWidth)

	if len(run.Dependencies) > 0 {
		names := make([]string, 0, len(run.Dependencies))
		for _, dep := range run.Dependencies {
			names = append(names, dep.Name)
		}
		fmt.Fprintf(&b, "Test dependencies: %s\n", strings.Join(names, ", "))
		for _, dep := range run.Dependencies {
			state := "not detected"
			if dep.Present {
				state = "present"
			}
			fmt.Fprintf(&b, "    %s: %s (%s)\n", dep.Name, state, dep.Detail)
		}
	}

	fmt.Fprintln(&b, "Test results")
	fmt.Fprintln(&b, rule)
	for _, r := range run.Results {
		status := paint("[PASS]", green, opts)
		if !r.Success {
			status = paint("[FAIL]", red, opts)
		}
		fmt.Fprintf(&b, "%s %s (%.2fs)", status, r.Service, r.Duration.Seconds())
		if !r.Success && r.ExitCode != nil {
			fmt.Fprintf(&b, " exit %d", *r.ExitCode)
		}
		fmt.Fprintln(&b)
		if !r.Success {
			for _, line := range stderrPreview(r.Stderr, domain.StderrPreviewLines) {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total time: %.2fs\n", run.Total.Seconds())

	passed, total := run.Passed(), len(run.Results)
	if run.Failed() == 0 {
		fmt.Fprintln(&b, paint(fmt.Sprintf("All tests passed! (%d/%d services)", passed, total), green, opts))
	} else {
		fmt.Fprintln(&b, paint(fmt.Sprintf("%d test(s) failed (%d/%d passed)", run.Failed(), passed, total), red, opts))
	}
	if run.CoverageDir != "" {
		fmt.Fprintf(&b, "Coverage reports: %s\n", run.CoverageDir)
	}
	return b.String()
}

// stderrPreview returns the first n raw lines, blank ones included.
func stderrPreview(stderr string, n int) []string {
	if stderr == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(stderr, "\n"), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
