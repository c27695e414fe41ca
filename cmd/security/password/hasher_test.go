package password

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestHasher(t *testing.T, maxConcurrent int, opts ...HasherOption) *Hasher {
	t.Helper()
	cfg := testConfig(AlgorithmBcrypt)
	cfg.MaxConcurrent = maxConcurrent
	h, err := NewHasher(cfg, opts...)
	require.NoError(t, err)
	return h
}

func TestNewHasher_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(AlgorithmBcrypt)
	cfg.Bcrypt.Cost = 99
	_, err := NewHasher(cfg)
	assert.Error(t, err)

	cfg = testConfig("scrypt")
	_, err = NewHasher(cfg)
	assert.Error(t, err)
}

func TestHasher_HashVerify(t *testing.T) {
	h := newTestHasher(t, 2)
	ctx := context.Background()

	enc, err := h.Hash(ctx, "secret123")
	require.NoError(t, err)

	ok, err := h.Verify(ctx, enc, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, enc, "nope-nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_PolicyFailsWithoutSlot(t *testing.T) {
	h := newTestHasher(t, 1)
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	// All slots are taken, yet policy errors come back immediately.
	_, err := h.Hash(context.Background(), strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHasher_WaitHonorsContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newTestHasher(t, 1)
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Verify(ctx, "$2a$04$abcdefghijklmnopqrstuuvwxyzabcdefghijklmnopqrstuvwxyzab", "secret123")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	_, err = h.Hash(ctx, "secret123")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestHasher_ConcurrentCallers(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newTestHasher(t, 2)
	enc, err := h.Hash(context.Background(), "secret123")
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := h.Verify(context.Background(), enc, "secret123")
			if err == nil && !ok {
				err = errors.New("mismatch")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestHasher_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestHasher(t, 1, WithMetrics(reg))
	ctx := context.Background()

	enc, err := h.Hash(ctx, "secret123")
	require.NoError(t, err)
	_, err = h.Verify(ctx, enc, "secret123")
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(h.duration))
	n, err := testutil.GatherAndCount(reg, "authgate_password_hash_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
