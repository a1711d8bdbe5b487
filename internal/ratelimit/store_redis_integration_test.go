//go:build integration

package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tickethub/internal/ratelimit"
	"tickethub/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.store = ratelimit.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) TestWindowFillsAndExpires() {
	ctx := context.Background()
	for i := range 3 {
		result, err := s.store.Allow(ctx, "tickethub:ratelimit:test:a", 3, 500*time.Millisecond)
		s.Require().NoError(err)
		s.True(result.Allowed, "hit %d", i)
	}

	result, err := s.store.Allow(ctx, "tickethub:ratelimit:test:a", 3, 500*time.Millisecond)
	s.Require().NoError(err)
	s.False(result.Allowed)

	members, err := s.redis.Client.ZCard(ctx, "tickethub:ratelimit:test:a").Result()
	s.Require().NoError(err)
	s.EqualValues(3, members, "denied hits are not recorded")

	s.Eventually(func() bool {
		result, err := s.store.Allow(ctx, "tickethub:ratelimit:test:a", 3, 500*time.Millisecond)
		return err == nil && result.Allowed
	}, 3*time.Second, 100*time.Millisecond)
}

func (s *RedisStoreSuite) TestConcurrentHitsNeverExceedLimit() {
	ctx := context.Background()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(ctx, "tickethub:ratelimit:test:burst", 5, time.Minute)
			s.NoError(err)
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.LessOrEqual(allowed, 5)
	s.Positive(allowed)
}
