// Package selftest runs an application's registered self-test suites
// during start-up, with the behavior chosen by flags on the process
// command line rather than by a separate test binary.
//
// Suites register themselves, typically from init functions, and the
// application calls Run first thing in main. Whether anything actually
// executes depends on the configured mode and the command line: release
// mode keeps the tests off unless --enableTests is present, debug mode
// keeps them on unless --disableTests is present. Independent of that,
// --quitAfterTests tells the caller to stop start-up once the entry
// point returns.
package selftest

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/log"

	"github.com/treetop-labs/selftest/registry"
	"github.com/treetop-labs/selftest/runner"
)

// Config controls how Run interprets the command line and where the
// run output goes.
type Config struct {
	// Mode selects the debug or release flag defaults.
	Mode Mode

	// Disabled switches the capability off entirely: Run parses
	// nothing, runs nothing, and reports that start-up should continue.
	Disabled bool

	// Log receives run output. Defaults to the root logger.
	Log log.Logger

	// Out receives the summary table. Defaults to stdout.
	Out io.Writer

	// Registry overrides the default suite registry.
	Registry *registry.Registry

	// OnResult observes the outcome of a completed run, for feeding
	// health probes or custom reporting.
	OnResult func(*runner.Result)
}

// Run applies the command-line run policy and reports whether the
// application should continue starting up. When the policy enables
// tests it executes every registered suite in registration order.
//
// A failing check under the assert-on-fail policy is fatal: it is
// logged at crit level, which exits the process. Failures without that
// policy only show up in the logs, the metrics and the summary; the
// return value is controlled solely by --quitAfterTests.
//
//	if !selftest.Run(ctx, strings.Join(os.Args[1:], " "), selftest.Config{Mode: selftest.ModeDebug}) {
//		return
//	}
func Run(ctx context.Context, commandLine string, cfg Config) bool {
	if cfg.Disabled {
		return true
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Default
	}

	policy := ParsePolicy(commandLine, cfg.Mode)
	cfg.Log.Debug("resolved self-test policy",
		"mode", cfg.Mode,
		"run_tests", policy.RunTests,
		"assert_on_fail", policy.AssertOnFail,
		"log_passes", policy.LogPasses,
		"seed", policy.Seed,
		"continue_running", policy.ContinueRunning)

	if policy.RunTests {
		r, err := runner.New(runner.Config{
			Registry:        cfg.Registry,
			Log:             cfg.Log,
			Out:             cfg.Out,
			AssertOnFailure: policy.AssertOnFail,
			LogPasses:       policy.LogPasses,
		})
		if err != nil {
			cfg.Log.Error("self-test runner unavailable", "err", err)
			return policy.ContinueRunning
		}

		res, err := r.Run(ctx, policy.Seed)
		if err != nil {
			if runner.IsFailFast(err) {
				cfg.Log.Crit("self-test failure", "err", err)
			} else {
				cfg.Log.Error("self-test run did not complete", "err", err)
			}
		}
		if res != nil && cfg.OnResult != nil {
			cfg.OnResult(res)
		}
	}

	return policy.ContinueRunning
}
