package main

import (
	"fmt"
	"time"

	"github.com/treetop-labs/selftest/registry"
	"github.com/treetop-labs/selftest/suite"
)

func init() {
	registry.MustRegister(suite.Definition{
		Name:     "SessionCache",
		Category: "storage",
		Run:      runSessionCache,
	})
	registry.MustRegister(suite.Definition{
		Name:     "RetryBackoff",
		Category: "networking",
		Run:      runRetryBackoff,
	})
}

// sessionCache is the toy component under test.
type sessionCache struct {
	entries map[string]string
}

func (c *sessionCache) put(k, v string) { c.entries[k] = v }

func (c *sessionCache) get(k string) (string, bool) {
	v, ok := c.entries[k]
	return v, ok
}

func (c *sessionCache) size() int { return len(c.entries) }

func runSessionCache(s *suite.S) {
	var cache *sessionCache

	s.Setup(func() {
		cache = &sessionCache{entries: map[string]string{}}
	})
	s.TearDown(func() {
		cache = nil
	})

	s.Test("stores and returns entries", func() {
		cache.put("alice", "token-1")
		got, ok := cache.get("alice")
		s.Expect(ok, "entry should exist after put")
		s.ExpectEqual(got, "token-1", "stored token")
	})

	s.Test("starts empty for every subtest", func() {
		s.ExpectEqual(cache.size(), 0, "setup hands out a fresh cache")
	})

	s.Test("round-trips randomized keys", func() {
		rnd := s.Random()
		for i := 0; i < 32; i++ {
			k := fmt.Sprintf("key-%d", rnd.Intn(1000))
			cache.put(k, "v")
			_, ok := cache.get(k)
			s.Expectf(ok, "key %s must be readable after write", k)
		}
	})
}

func backoff(attempt int) time.Duration {
	d := time.Second << attempt
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

func runRetryBackoff(s *suite.S) {
	s.Test("grows exponentially", func() {
		s.ExpectEqual(backoff(0), time.Second, "first retry")
		s.ExpectEqual(backoff(2), 4*time.Second, "third retry")
	})

	s.Test("caps at thirty seconds", func() {
		s.ExpectEqual(backoff(10), 30*time.Second, "large attempts clamp")
	})

	s.SkipTest("survives clock steps", func() {
		// needs a host whose clock the test may adjust
	})
}
