package suite

import (
	"fmt"
	"math/rand"

	"github.com/google/go-cmp/cmp"
)

// noOp is the default setup/teardown hook.
var noOp = func() {}

const skipSeparator = "-----------------------------------------------------------------"

// S is the harness handed to a suite body while it runs. It carries the
// active setup/teardown hooks, the reporting channel back to the runner,
// and a deterministic random source derived from the run seed.
//
// An S is only valid for the duration of one suite execution and must not
// be shared across goroutines.
type S struct {
	name     string
	category string

	onSetup    func()
	onTearDown func()

	rep Reporter
	rnd *rand.Rand
}

// New builds a harness for one execution of the named suite. A nil
// reporter falls back to Discard, which makes suite bodies directly
// callable from ordinary unit tests; a nil random source is seeded
// with zero.
func New(name, category string, rep Reporter, rnd *rand.Rand) *S {
	if rep == nil {
		rep = Discard
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(0))
	}
	return &S{
		name:       name,
		category:   category,
		onSetup:    noOp,
		onTearDown: noOp,
		rep:        rep,
		rnd:        rnd,
	}
}

// Name returns the suite name.
func (s *S) Name() string { return s.name }

// Category returns the suite category, which may be empty.
func (s *S) Category() string { return s.category }

// Setup replaces the hook invoked before each subsequent subtest. The
// hook stays active until replaced again; passing nil restores the
// default no-op, so the active hook is always callable.
func (s *S) Setup(fn func()) {
	if fn == nil {
		fn = noOp
	}
	s.onSetup = fn
}

// TearDown replaces the hook invoked after each subsequent subtest,
// with the same contract as Setup.
//
// A teardown hook is a good place to check an invariant of the value
// under test, so every subtest also proves it left the value in a
// consistent state.
func (s *S) TearDown(fn func()) {
	if fn == nil {
		fn = noOp
	}
	s.onTearDown = fn
}

// Test runs one named subtest: it announces the subtest to the runner,
// invokes the active setup hook, then fn, then the active teardown hook,
// in that order. The teardown hook is looked up after fn finishes and
// runs even when fn panics or a failing check aborts the run.
func (s *S) Test(name string, fn func()) {
	s.rep.BeginSubtest(name)
	s.onSetup()
	defer func() { s.onTearDown() }()
	fn()
}

// SkipTest is a drop-in replacement for Test while a subtest is
// temporarily out of order. fn is never invoked and neither are the
// setup/teardown hooks; the skip leaves a separator and a warning line
// in the run log so disabled subtests stay visible in the output.
func (s *S) SkipTest(name string, fn func()) {
	_ = fn
	s.rep.Log(skipSeparator)
	s.rep.Log("WARNING: Skipping " + s.name + " / " + name)
	s.rep.SkipSubtest(name)
}

// Expect records one check: a pass when cond holds, otherwise a failure
// carrying detail. It reports whether the check passed.
func (s *S) Expect(cond bool, detail string) bool {
	if cond {
		s.rep.RecordPass()
		return true
	}
	s.rep.RecordFailure(detail)
	return false
}

// Expectf is Expect with a formatted failure detail.
func (s *S) Expectf(cond bool, format string, args ...interface{}) bool {
	if cond {
		s.rep.RecordPass()
		return true
	}
	s.rep.RecordFailure(fmt.Sprintf(format, args...))
	return false
}

// ExpectEqual records a pass when got and want compare equal, otherwise
// a failure carrying detail plus a value diff.
func (s *S) ExpectEqual(got, want interface{}, detail string) bool {
	if cmp.Equal(got, want) {
		s.rep.RecordPass()
		return true
	}
	s.rep.RecordFailure(fmt.Sprintf("%s (-want +got):\n%s", detail, cmp.Diff(want, got)))
	return false
}

// ExpectNoError records a pass when err is nil, otherwise a failure
// carrying detail and the error.
func (s *S) ExpectNoError(err error, detail string) bool {
	if err == nil {
		s.rep.RecordPass()
		return true
	}
	s.rep.RecordFailure(fmt.Sprintf("%s: %v", detail, err))
	return false
}

// Log sends one plain-text line to the run log.
func (s *S) Log(msg string) {
	s.rep.Log(msg)
}

// Logf sends one formatted line to the run log.
func (s *S) Logf(format string, args ...interface{}) {
	s.rep.Log(fmt.Sprintf(format, args...))
}

// Random returns the suite's random source. Every suite in a run is
// seeded with the same run seed, so replaying a logged seed replays the
// exact sequence.
func (s *S) Random() *rand.Rand { return s.rnd }
