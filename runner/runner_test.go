package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treetop-labs/selftest/registry"
	"github.com/treetop-labs/selftest/suite"
)

func newTestRunner(t *testing.T, reg *registry.Registry, mutate func(*Config)) *Runner {
	t.Helper()
	cfg := Config{
		Registry: reg,
		Log:      log.New(),
		Out:      &bytes.Buffer{},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry is required")

	r, err := New(Config{Registry: registry.New()})
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestRunExecutesSuitesInRegistrationOrder(t *testing.T) {
	executionOrder := []string{}

	reg := registry.New()
	for _, name := range []string{"first", "second", "third"} {
		name := name
		reg.MustRegister(suite.Definition{
			Name: name,
			Run: func(s *suite.S) {
				s.Test("noop", func() {
					executionOrder = append(executionOrder, name)
					s.Expect(true, "")
				})
			},
		})
	}

	r := newTestRunner(t, reg, nil)
	res, err := r.Run(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, executionOrder)
	assert.Equal(t, StatusPass, res.Status)
	require.Len(t, res.Suites, 3)
	assert.Equal(t, "first", res.Suites[0].Name)
	assert.Equal(t, "third", res.Suites[2].Name)
	assert.Equal(t, Stats{Total: 3, Passed: 3}, res.Stats)
	assert.NotEmpty(t, res.RunID)
}

func TestRunRecordsFailures(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(suite.Definition{
		Name:     "mixed",
		Category: "storage",
		Run: func(s *suite.S) {
			s.Test("good", func() { s.Expect(true, "") })
			s.Test("bad", func() {
				s.Expect(false, "checksum mismatch")
				s.Expect(false, "length mismatch")
			})
		},
	})

	r := newTestRunner(t, reg, nil)
	res, err := r.Run(context.Background(), 1)

	require.NoError(t, err, "without AssertOnFailure, failures are tallied, not returned")
	assert.Equal(t, StatusFail, res.Status)

	require.Len(t, res.Suites, 1)
	sr := res.Suites[0]
	assert.Equal(t, StatusFail, sr.Status)
	assert.Equal(t, "storage", sr.Category)
	require.Len(t, sr.Subtests, 2)
	assert.Equal(t, StatusPass, sr.Subtests[0].Status)
	assert.Equal(t, StatusFail, sr.Subtests[1].Status)
	assert.Equal(t, []string{"checksum mismatch", "length mismatch"}, sr.Subtests[1].Failures)
	assert.Equal(t, Stats{Total: 2, Passed: 1, Failed: 1}, res.Stats)
}

func TestRunFailFast(t *testing.T) {
	var (
		tornDown     bool
		shutdownRan  bool
		laterSubtest bool
		laterSuite   bool
	)

	reg := registry.New()
	reg.MustRegister(suite.Definition{
		Name: "aborter",
		Run: func(s *suite.S) {
			s.TearDown(func() { tornDown = true })
			s.Test("fails", func() {
				s.Expect(false, "broken invariant")
				laterSubtest = true
			})
			s.Test("never reached", func() { laterSubtest = true })
		},
		Shutdown: func() error {
			shutdownRan = true
			return nil
		},
	})
	reg.MustRegister(suite.Definition{
		Name: "skipped entirely",
		Run:  func(s *suite.S) { laterSuite = true },
	})

	r := newTestRunner(t, reg, func(cfg *Config) { cfg.AssertOnFailure = true })
	res, err := r.Run(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, IsFailFast(err))

	var ffe *FailFastError
	require.True(t, errors.As(err, &ffe))
	assert.Equal(t, "aborter", ffe.Suite)
	assert.Equal(t, "fails", ffe.Subtest)
	assert.Equal(t, "broken invariant", ffe.Detail)

	assert.True(t, tornDown, "teardown must run through the abort")
	assert.True(t, shutdownRan, "shutdown must run through the abort")
	assert.False(t, laterSubtest)
	assert.False(t, laterSuite)

	require.Len(t, res.Suites, 1)
	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, Stats{Total: 1, Failed: 1}, res.Stats)
}

func TestRunContainsSuitePanics(t *testing.T) {
	secondRan := false

	reg := registry.New()
	reg.MustRegister(suite.Definition{
		Name: "panicky",
		Run: func(s *suite.S) {
			s.Test("explodes", func() { panic("kaboom") })
		},
	})
	reg.MustRegister(suite.Definition{
		Name: "healthy",
		Run: func(s *suite.S) {
			s.Test("fine", func() {
				secondRan = true
				s.Expect(true, "")
			})
		},
	})

	r := newTestRunner(t, reg, nil)
	res, err := r.Run(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, secondRan, "a panicking suite must not stop the run")

	require.Len(t, res.Suites, 2)
	assert.Equal(t, StatusFail, res.Suites[0].Status)
	require.Error(t, res.Suites[0].Error)
	assert.Contains(t, res.Suites[0].Error.Error(), "kaboom")
	require.Len(t, res.Suites[0].Subtests, 1)
	assert.Equal(t, StatusFail, res.Suites[0].Subtests[0].Status)
	assert.Equal(t, StatusPass, res.Suites[1].Status)
	assert.Equal(t, StatusFail, res.Status)
}

func TestRunSuiteLifecycle(t *testing.T) {
	t.Run("init error skips body and shutdown", func(t *testing.T) {
		bodyRan := false
		shutdownRan := false
		secondRan := false

		reg := registry.New()
		reg.MustRegister(suite.Definition{
			Name:     "unready",
			Init:     func() error { return errors.New("resource unavailable") },
			Run:      func(s *suite.S) { bodyRan = true },
			Shutdown: func() error { shutdownRan = true; return nil },
		})
		reg.MustRegister(suite.Definition{
			Name: "after",
			Run:  func(s *suite.S) { s.Test("t", func() { secondRan = true }) },
		})

		r := newTestRunner(t, reg, nil)
		res, err := r.Run(context.Background(), 1)

		require.NoError(t, err)
		assert.False(t, bodyRan)
		assert.False(t, shutdownRan)
		assert.True(t, secondRan)

		require.Len(t, res.Suites, 2)
		assert.Equal(t, StatusFail, res.Suites[0].Status)
		require.Error(t, res.Suites[0].Error)
		assert.Contains(t, res.Suites[0].Error.Error(), "resource unavailable")
	})

	t.Run("shutdown error fails the suite", func(t *testing.T) {
		reg := registry.New()
		reg.MustRegister(suite.Definition{
			Name: "leaky",
			Run: func(s *suite.S) {
				s.Test("t", func() { s.Expect(true, "") })
			},
			Shutdown: func() error { return errors.New("dangling handle") },
		})

		r := newTestRunner(t, reg, nil)
		res, err := r.Run(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, res.Suites, 1)
		assert.Equal(t, StatusFail, res.Suites[0].Status)
		assert.Contains(t, res.Suites[0].Error.Error(), "dangling handle")
	})

	t.Run("init and shutdown bracket the body", func(t *testing.T) {
		var order []string

		reg := registry.New()
		reg.MustRegister(suite.Definition{
			Name: "bracketed",
			Init: func() error { order = append(order, "init"); return nil },
			Run: func(s *suite.S) {
				s.Test("t", func() { order = append(order, "body") })
			},
			Shutdown: func() error { order = append(order, "shutdown"); return nil },
		})

		r := newTestRunner(t, reg, nil)
		_, err := r.Run(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"init", "body", "shutdown"}, order)
	})
}

func TestRunSkipAccounting(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(suite.Definition{
		Name: "partially skipped",
		Run: func(s *suite.S) {
			s.Test("live", func() { s.Expect(true, "") })
			s.SkipTest("dormant", func() { t.Fatal("skipped body must not run") })
		},
	})
	reg.MustRegister(suite.Definition{
		Name: "fully skipped",
		Run: func(s *suite.S) {
			s.SkipTest("a", func() {})
			s.SkipTest("b", func() {})
		},
	})

	r := newTestRunner(t, reg, nil)
	res, err := r.Run(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, StatusPass, res.Status, "skips do not fail a run")
	assert.Equal(t, Stats{Total: 4, Passed: 1, Skipped: 3}, res.Stats)

	require.Len(t, res.Suites, 2)
	assert.Equal(t, StatusPass, res.Suites[0].Status)
	assert.Equal(t, StatusSkip, res.Suites[1].Status)
	require.Len(t, res.Suites[0].Subtests, 2)
	assert.Equal(t, StatusSkip, res.Suites[0].Subtests[1].Status)
	assert.Equal(t, "dormant", res.Suites[0].Subtests[1].Name)
}

func TestRunSeeds(t *testing.T) {
	t.Run("explicit seed is carried through", func(t *testing.T) {
		reg := registry.New()
		reg.MustRegister(suite.Definition{Name: "s", Run: func(s *suite.S) {}})

		r := newTestRunner(t, reg, nil)
		res, err := r.Run(context.Background(), 42)

		require.NoError(t, err)
		assert.EqualValues(t, 42, res.Seed)
	})

	t.Run("zero seed is replaced with a usable one", func(t *testing.T) {
		reg := registry.New()
		reg.MustRegister(suite.Definition{Name: "s", Run: func(s *suite.S) {}})

		r := newTestRunner(t, reg, nil)
		res, err := r.Run(context.Background(), 0)

		require.NoError(t, err)
		assert.NotZero(t, res.Seed)
	})

	t.Run("fixed seed yields identical random sequences", func(t *testing.T) {
		runOnce := func() []int64 {
			var seq []int64
			reg := registry.New()
			reg.MustRegister(suite.Definition{
				Name: "rand",
				Run: func(s *suite.S) {
					s.Test("draw", func() {
						for i := 0; i < 8; i++ {
							seq = append(seq, s.Random().Int63())
						}
					})
				},
			})
			r := newTestRunner(t, reg, nil)
			_, err := r.Run(context.Background(), 1234)
			require.NoError(t, err)
			return seq
		}

		assert.Equal(t, runOnce(), runOnce())
	})
}

func TestRunHonorsContext(t *testing.T) {
	ran := false

	reg := registry.New()
	reg.MustRegister(suite.Definition{
		Name: "never",
		Run:  func(s *suite.S) { ran = true },
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, reg, nil)
	res, err := r.Run(ctx, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
	assert.Empty(t, res.Suites)
}

func TestSummaryRendering(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(suite.Definition{
		Name:     "renderme",
		Category: "output",
		Run: func(s *suite.S) {
			s.Test("ok", func() { s.Expect(true, "") })
			s.Test("broken", func() { s.Expect(false, "value drifted") })
			s.SkipTest("later", func() {})
		},
	})

	out := &bytes.Buffer{}
	r := newTestRunner(t, reg, func(cfg *Config) { cfg.Out = out })
	res, err := r.Run(context.Background(), 7)
	require.NoError(t, err)

	summary := res.Summary()
	assert.Contains(t, summary, "renderme")
	assert.Contains(t, summary, "broken")
	assert.Contains(t, summary, "✗ fail")
	assert.Contains(t, summary, "- skip")
	assert.Contains(t, summary, "value drifted")
	assert.Contains(t, summary, "TOTAL")

	assert.Contains(t, out.String(), "renderme", "runner writes the summary to Out")
}

func TestFailFastErrorMessage(t *testing.T) {
	err := &FailFastError{Suite: "wallet", Subtest: "balance", Detail: "off by one"}
	assert.Contains(t, err.Error(), "wallet")
	assert.Contains(t, err.Error(), "balance")
	assert.Contains(t, err.Error(), "off by one")
	assert.False(t, IsFailFast(errors.New("other")))
	assert.False(t, IsFailFast(nil))
}
