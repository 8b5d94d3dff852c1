package suite

// Definition describes one registered suite: its identity plus the code
// the runner executes for it.
type Definition struct {
	// Name identifies the suite. Required, unique within a registry.
	Name string

	// Category optionally groups related suites.
	Category string

	// Init, when set, runs once before the suite body. An error fails
	// the suite and skips both Run and Shutdown. Use it for resources
	// that live across all subtests; per-subtest state belongs in a
	// Setup hook.
	Init func() error

	// Run is the suite body. Required.
	Run func(s *S)

	// Shutdown, when set, runs once after the suite body whenever Init
	// succeeded, even when the body aborted.
	Shutdown func() error
}

// Reporter receives everything a running suite observes: subtest
// boundaries, per-check outcomes, and plain-text log lines. The runner
// implements it.
type Reporter interface {
	// BeginSubtest marks the start of the named subtest.
	BeginSubtest(name string)

	// SkipSubtest accounts a skipped subtest. Implementations must not
	// emit log lines here; SkipTest writes its own.
	SkipSubtest(name string)

	// RecordPass tallies a passing check in the current subtest.
	RecordPass()

	// RecordFailure tallies a failing check with its detail.
	RecordFailure(detail string)

	// Log emits one plain-text line.
	Log(message string)
}

// Discard is a Reporter that ignores everything. Handy for exercising a
// suite body from a regular unit test.
var Discard Reporter = discard{}

type discard struct{}

func (discard) BeginSubtest(string)  {}
func (discard) SkipSubtest(string)   {}
func (discard) RecordPass()          {}
func (discard) RecordFailure(string) {}
func (discard) Log(string)           {}
