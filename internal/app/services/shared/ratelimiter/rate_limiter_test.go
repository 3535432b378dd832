package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRedisRepository struct {
	mock.Mock
}

func (m *MockRedisRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}

func (m *MockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRedisRepository) Increment(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockRedisRepository) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int, error) {
	args := m.Called(ctx, key, ttl)
	return args.Int(0), args.Error(1)
}

func (m *MockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedisRepository) CompareAndDelete(ctx context.Context, key string, value interface{}) (int64, error) {
	args := m.Called(ctx, key, value)
	return args.Get(0).(int64), args.Error(1)
}

func TestResourceLimiter_ApplyResourceLimiter(t *testing.T) {
	now := time.Unix(1_700_000_010, 0).UTC()
	windowID := now.Unix() / 600
	expectedKey := "OTP_REQUEST:+97450001234:" + itoa(windowID)

	input := func() *ApplyResourceLimiterInput {
		return &ApplyResourceLimiterInput{
			ResourceName:      "+97450001234",
			LimiterGroupName:  "otp_request",
			WindowDurationSec: 600,
			MaxQuota:          3,
			NowUTC:            now,
		}
	}

	t.Run("within quota", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("IncrementWithTTL", mock.Anything, expectedKey, 601*time.Second).Return(3, nil)
		limiter := NewResourceLimiter(repo, zap.NewNop())

		out, err := limiter.ApplyResourceLimiter(context.Background(), input())

		require.NoError(t, err)
		assert.True(t, out.Allowed)
		repo.AssertExpectations(t)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("IncrementWithTTL", mock.Anything, expectedKey, mock.Anything).Return(4, nil)
		limiter := NewResourceLimiter(repo, zap.NewNop())

		out, err := limiter.ApplyResourceLimiter(context.Background(), input())

		require.NoError(t, err)
		assert.False(t, out.Allowed)
		nextWindow := (windowID + 1) * 600
		assert.Equal(t, int(nextWindow-now.Unix())+1, out.RetryAfterSecs)
	})

	t.Run("disabled when quota is zero", func(t *testing.T) {
		repo := new(MockRedisRepository)
		limiter := NewResourceLimiter(repo, zap.NewNop())
		in := input()
		in.MaxQuota = 0

		out, err := limiter.ApplyResourceLimiter(context.Background(), in)

		require.NoError(t, err)
		assert.True(t, out.Allowed)
		repo.AssertNotCalled(t, "IncrementWithTTL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("redis failure", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("IncrementWithTTL", mock.Anything, expectedKey, mock.Anything).Return(0, errors.New("timeout"))
		limiter := NewResourceLimiter(repo, zap.NewNop())

		out, err := limiter.ApplyResourceLimiter(context.Background(), input())

		assert.Error(t, err)
		assert.False(t, out.Allowed)
	})
}

func itoa(v int64) string {
	return fmt.Sprintf("%d", v)
}
