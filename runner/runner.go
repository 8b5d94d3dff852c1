// Package runner executes registered self-test suites strictly
// sequentially, in registration order, and collects their results. It
// is the collaborator behind suite.Reporter: suites report subtest
// boundaries, check outcomes, and log lines back into it.
package runner

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime/debug"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/treetop-labs/selftest/metrics"
	"github.com/treetop-labs/selftest/registry"
	"github.com/treetop-labs/selftest/suite"
)

// Config carries the runner's policy and wiring.
type Config struct {
	// Registry supplies the suites to run. Required.
	Registry *registry.Registry

	// Log receives structured progress plus the plain-text lines suites
	// emit. Defaults to the root logger.
	Log log.Logger

	// Out receives the rendered summary table. Defaults to stdout.
	Out io.Writer

	// AssertOnFailure stops the run at the first failing check.
	AssertOnFailure bool

	// LogPasses logs passing checks too, not only failures.
	LogPasses bool
}

// Runner runs suites one at a time on the calling goroutine. It is not
// safe for concurrent use; one Run call at a time.
type Runner struct {
	cfg Config
	log log.Logger

	curSuite *SuiteResult
	curSub   *SubtestResult
	subStart time.Time
}

// failFast is the panic value that unwinds a suite body when
// AssertOnFailure stops the run. Teardown hooks run during the unwind;
// the value is recovered at the suite boundary.
type failFast struct {
	err *FailFastError
}

// New validates cfg and builds a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Runner{cfg: cfg, log: cfg.Log}, nil
}

// Run executes every registered suite and reports the collected
// results. Seed 0 is replaced by a random non-zero seed; the seed in
// use is logged and recorded on the result so a failing run can be
// replayed. The returned error is a *FailFastError when an
// AssertOnFailure abort stopped the run, or a wrapped context error
// when ctx was cancelled between suites. Tallied check failures alone
// do not produce an error; they are reflected in the result status.
func (r *Runner) Run(ctx context.Context, seed int64) (*Result, error) {
	for seed == 0 {
		seed = int64(rand.Int31())
	}

	res := &Result{
		RunID: uuid.New().String(),
		Seed:  seed,
		Start: time.Now(),
	}

	suites := r.cfg.Registry.Suites()
	r.log.Info("starting self-test run", "run_id", res.RunID, "seed", seed, "suites", len(suites))

	var runErr error
	for _, def := range suites {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("self-test run interrupted: %w", err)
			break
		}
		sr, ff := r.runSuite(def, seed)
		res.Suites = append(res.Suites, sr)
		if ff != nil {
			runErr = ff
			break
		}
	}

	r.finish(res)
	return res, runErr
}

func (r *Runner) runSuite(def suite.Definition, seed int64) (SuiteResult, *FailFastError) {
	start := time.Now()
	r.curSuite = &SuiteResult{Name: def.Name, Category: def.Category}
	r.curSub = nil

	r.log.Info("running suite", "suite", def.Name, "category", def.Category)

	if def.Init != nil {
		if err := def.Init(); err != nil {
			r.curSuite.Error = fmt.Errorf("init: %w", err)
			r.log.Error("suite init failed", "suite", def.Name, "err", err)
			return r.closeSuite(start), nil
		}
	}

	s := suite.New(def.Name, def.Category, r, rand.New(rand.NewSource(seed)))

	var ff *FailFastError
	func() {
		defer func() {
			if p := recover(); p != nil {
				if f, ok := p.(failFast); ok {
					ff = f.err
				} else {
					if r.curSub != nil {
						r.curSub.Failures = append(r.curSub.Failures, fmt.Sprintf("panic: %v", p))
					}
					r.curSuite.Error = fmt.Errorf("suite panic: %v\n%s", p, debug.Stack())
					r.log.Error("suite panicked", "suite", def.Name, "panic", p)
				}
			}
			r.closeSubtest()
		}()
		def.Run(s)
	}()

	if def.Shutdown != nil {
		if err := def.Shutdown(); err != nil {
			if r.curSuite.Error == nil {
				r.curSuite.Error = fmt.Errorf("shutdown: %w", err)
			}
			r.log.Error("suite shutdown failed", "suite", def.Name, "err", err)
		}
	}

	return r.closeSuite(start), ff
}

func (r *Runner) closeSuite(start time.Time) SuiteResult {
	sr := r.curSuite
	sr.Duration = time.Since(start)
	sr.Status = suiteStatus(sr)
	metrics.RecordSuite(sr.Name, sr.Category, sr.Status.String())
	r.log.Info("suite finished",
		"suite", sr.Name,
		"status", sr.Status,
		"subtests", len(sr.Subtests),
		"duration", sr.Duration,
	)
	r.curSuite = nil
	return *sr
}

func (r *Runner) finish(res *Result) {
	res.Duration = time.Since(res.Start)
	res.finalize()
	metrics.RecordRun(res.Status.String(), res.Duration)
	r.log.Info("self-test run complete",
		"run_id", res.RunID,
		"status", res.Status,
		"total", res.Stats.Total,
		"passed", res.Stats.Passed,
		"failed", res.Stats.Failed,
		"skipped", res.Stats.Skipped,
		"duration", res.Duration,
	)
	fmt.Fprintln(r.cfg.Out, res.Summary())
}

// BeginSubtest implements suite.Reporter.
func (r *Runner) BeginSubtest(name string) {
	r.closeSubtest()
	r.log.Debug("beginning subtest", "suite", r.curSuite.Name, "subtest", name)
	r.curSuite.Subtests = append(r.curSuite.Subtests, SubtestResult{Name: name, Status: StatusPass})
	r.curSub = &r.curSuite.Subtests[len(r.curSuite.Subtests)-1]
	r.subStart = time.Now()
}

// SkipSubtest implements suite.Reporter. It only accounts the skip;
// the suite harness already wrote the skip lines to the log.
func (r *Runner) SkipSubtest(name string) {
	r.closeSubtest()
	r.curSuite.Subtests = append(r.curSuite.Subtests, SubtestResult{Name: name, Status: StatusSkip})
	metrics.RecordSubtest(r.curSuite.Name, StatusSkip.String())
}

// RecordPass implements suite.Reporter.
func (r *Runner) RecordPass() {
	sub := r.ensureSubtest()
	sub.Passes++
	metrics.RecordCheck(StatusPass.String())
	if r.cfg.LogPasses {
		r.log.Info("check passed", "suite", r.curSuite.Name, "subtest", sub.Name)
	}
}

// RecordFailure implements suite.Reporter. Under AssertOnFailure it
// aborts the run by unwinding the suite body; the current subtest's
// teardown and the suite's Shutdown still get to run.
func (r *Runner) RecordFailure(detail string) {
	sub := r.ensureSubtest()
	sub.Failures = append(sub.Failures, detail)
	metrics.RecordCheck(StatusFail.String())
	r.log.Error("check failed", "suite", r.curSuite.Name, "subtest", sub.Name, "detail", detail)

	if r.cfg.AssertOnFailure {
		panic(failFast{err: &FailFastError{
			Suite:   r.curSuite.Name,
			Subtest: sub.Name,
			Detail:  detail,
		}})
	}
}

// Log implements suite.Reporter.
func (r *Runner) Log(message string) {
	r.log.Info(message)
}

// ensureSubtest opens an unnamed subtest for checks recorded before any
// Test call, instead of dropping them.
func (r *Runner) ensureSubtest() *SubtestResult {
	if r.curSub == nil {
		r.BeginSubtest("")
	}
	return r.curSub
}

func (r *Runner) closeSubtest() {
	if r.curSub == nil {
		return
	}
	r.curSub.Duration = time.Since(r.subStart)
	if len(r.curSub.Failures) > 0 {
		r.curSub.Status = StatusFail
	}
	metrics.RecordSubtest(r.curSuite.Name, r.curSub.Status.String())
	r.curSub = nil
}
