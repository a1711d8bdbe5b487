package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 5
	testWindow = time.Minute
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore()
	s.store.now = func() time.Time { return s.now }
}

func (s *InMemoryStoreSuite) TestAllow() {
	s.Run("requests up to the limit pass", func() {
		var result Result
		for i := range testLimit {
			var err error
			result, err = s.store.Allow(s.ctx, "login:a", testLimit, testWindow)
			s.Require().NoError(err)
			s.True(result.Allowed, "hit %d", i)
		}
		s.Equal(0, result.Remaining)
		s.Equal(testLimit, result.Limit)
	})

	s.Run("the next request is denied until the oldest hit leaves the window", func() {
		result, err := s.store.Allow(s.ctx, "login:a", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
		s.Equal(60, result.RetryAfter(s.now))

		s.now = s.now.Add(testWindow + time.Second)
		result, err = s.store.Allow(s.ctx, "login:a", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})

	s.Run("keys are independent", func() {
		result, err := s.store.Allow(s.ctx, "login:b", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})
}

func (s *InMemoryStoreSuite) TestConcurrentHitsNeverExceedLimit() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, "login:burst", testLimit, testWindow)
			s.NoError(err)
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}

func TestRetryAfterFloor(t *testing.T) {
	now := time.Now()
	r := Result{ResetAt: now.Add(-time.Second)}
	if got := r.RetryAfter(now); got != 1 {
		t.Fatalf("RetryAfter = %d, want 1", got)
	}
}
