package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialPolicy_ComputeNextInterval(t *testing.T) {
	p := ExponentialPolicy{
		InitialInterval: 100 * time.Millisecond,
		BackoffFactor:   2.0,
		MaxInterval:     1 * time.Second,
		MaxRetries:      4,
	}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}
	for i, w := range want {
		got, err := p.nextInterval(i)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	_, err := p.nextInterval(4)
	assert.Equal(t, ErrRetriesExhausted, err)
}

func TestExponentialPolicy_CapsAtMaxInterval(t *testing.T) {
	p := NewExponentialPolicy(1 * time.Second)
	got, err := p.nextInterval(10)
	require.NoError(t, err)
	assert.Equal(t, p.MaxInterval, got)
}

func TestRetrier_NextWaitsAndReset(t *testing.T) {
	r := NewRetrier(ExponentialPolicy{
		InitialInterval: time.Millisecond,
		BackoffFactor:   2.0,
		MaxInterval:     10 * time.Millisecond,
		MaxRetries:      2,
	})

	ctx := context.Background()
	require.NoError(t, r.Next(ctx, nil))
	require.NoError(t, r.Next(ctx, nil))
	require.Equal(t, ErrRetriesExhausted, r.Next(ctx, nil))

	r.Reset()
	require.NoError(t, r.Next(ctx, nil))
}

func TestRetrier_NextRespectsCancellation(t *testing.T) {
	r := NewRetrier(NewExponentialPolicy(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Next(ctx, nil)
	assert.Equal(t, ErrOperationCanceled, err)
}
