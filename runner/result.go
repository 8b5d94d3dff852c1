package runner

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Status classifies the outcome of a subtest, a suite, or a whole run.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

func (s Status) String() string {
	return string(s)
}

// SubtestResult is the outcome of one Test or SkipTest call.
type SubtestResult struct {
	Name     string
	Status   Status
	Passes   int
	Failures []string
	Duration time.Duration
}

// SuiteResult is the outcome of one suite execution.
type SuiteResult struct {
	Name     string
	Category string
	Status   Status
	Subtests []SubtestResult
	Error    error // init/shutdown failure or escaped panic
	Duration time.Duration
}

// Stats aggregates subtest outcomes across a run.
type Stats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// Result is everything one run produced.
type Result struct {
	RunID    string
	Seed     int64
	Status   Status
	Suites   []SuiteResult
	Stats    Stats
	Start    time.Time
	Duration time.Duration
}

// finalize derives the aggregate stats and overall status from the
// already-closed suite results. A run with no suites counts as a pass;
// a run where every suite skipped counts as a skip.
func (r *Result) finalize() {
	r.Status = StatusPass
	skippedSuites := 0
	for _, sr := range r.Suites {
		if sr.Status == StatusFail {
			r.Status = StatusFail
		}
		if sr.Status == StatusSkip {
			skippedSuites++
		}
		for _, sub := range sr.Subtests {
			r.Stats.Total++
			switch sub.Status {
			case StatusPass:
				r.Stats.Passed++
			case StatusFail:
				r.Stats.Failed++
			case StatusSkip:
				r.Stats.Skipped++
			}
		}
	}
	if r.Status == StatusPass && len(r.Suites) > 0 && skippedSuites == len(r.Suites) {
		r.Status = StatusSkip
	}
}

// suiteStatus is fail on any failed subtest or suite-level error, skip
// when every subtest was skipped, pass otherwise.
func suiteStatus(sr *SuiteResult) Status {
	if sr.Error != nil {
		return StatusFail
	}
	skipped := 0
	for _, sub := range sr.Subtests {
		switch sub.Status {
		case StatusFail:
			return StatusFail
		case StatusSkip:
			skipped++
		}
	}
	if len(sr.Subtests) > 0 && skipped == len(sr.Subtests) {
		return StatusSkip
	}
	return StatusPass
}

// Summary renders the run as a table: one row per suite, subtests
// indented beneath it, and an aggregate footer.
func (r *Result) Summary() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Self-Test Results (run %s, seed %d)", r.RunID, r.Seed))

	t.AppendHeader(table.Row{
		"Suite", "Subtest", "Duration", "Passed", "Failed", "Skipped", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Subtest", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, sr := range r.Suites {
		suiteErr := ""
		if sr.Error != nil {
			suiteErr = sr.Error.Error()
		}
		t.AppendRow(table.Row{
			sr.Name,
			"",
			formatDuration(sr.Duration),
			"-",
			"-",
			"-",
			getResultString(sr.Status),
			suiteErr,
		})

		for i, sub := range sr.Subtests {
			prefix := "├─"
			if i == len(sr.Subtests)-1 {
				prefix = "└─"
			}
			t.AppendRow(table.Row{
				"",
				fmt.Sprintf("%s %s", prefix, sub.Name),
				formatDuration(sub.Duration),
				sub.Passes,
				len(sub.Failures),
				boolToInt(sub.Status == StatusSkip),
				getResultString(sub.Status),
				firstFailure(sub.Failures),
			})
		}
		t.AppendSeparator()
	}

	switch r.Status {
	case StatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case StatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d subtests", r.Stats.Total),
		formatDuration(r.Duration),
		r.Stats.Passed,
		r.Stats.Failed,
		r.Stats.Skipped,
		getResultString(r.Status),
		"",
	})

	return t.Render()
}

func firstFailure(failures []string) string {
	if len(failures) == 0 {
		return ""
	}
	return failures[0]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// getResultString returns the status glyph shown in the results table.
func getResultString(status Status) string {
	switch status {
	case StatusPass:
		return "✓ pass"
	case StatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// formatDuration formats a duration to seconds with 1 decimal place.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
