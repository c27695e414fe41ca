package password

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"
)

// Hasher runs Config.Hash and Config.Verify under a weighted semaphore.
//
// bcrypt and Argon2id are CPU-bound; a burst of logins would otherwise occupy
// every core. Callers wait for a slot and give up when ctx is done.
type Hasher struct {
	cfg      Config
	sem      *semaphore.Weighted
	duration *prometheus.HistogramVec
}

// HasherOption configures optional Hasher dependencies.
type HasherOption func(*Hasher)

// WithMetrics records hash/verify durations on reg.
func WithMetrics(reg prometheus.Registerer) HasherOption {
	return func(h *Hasher) {
		if reg == nil {
			return
		}
		h.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "authgate",
			Name:      "password_hash_seconds",
			Help:      "Time spent computing password hashes and verifications.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op", "algorithm"})
		reg.MustRegister(h.duration)
	}
}

// NewHasher validates cfg and returns a Hasher.
func NewHasher(cfg Config, opts ...HasherOption) (*Hasher, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	n := cfg.MaxConcurrent
	if n <= 0 {
		n = 1
	}

	h := &Hasher{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(n)),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Config returns the effective configuration.
func (h *Hasher) Config() Config { return h.cfg }

// Validate checks a new password against the policy without hashing it.
func (h *Hasher) Validate(password string) error { return h.cfg.Validate(password) }

// Hash validates and hashes password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	// Policy failures are cheap; report them without queueing.
	if err := h.cfg.Validate(password); err != nil {
		return "", err
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	start := time.Now()
	out, err := h.cfg.Hash(password)
	h.observe("hash", h.cfg.Algorithm, start)
	return out, err
}

// Verify compares password with encodedHash. See Config.Verify for results.
func (h *Hasher) Verify(ctx context.Context, encodedHash, password string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	start := time.Now()
	ok, err := h.cfg.Verify(encodedHash, password)
	h.observe("verify", AlgorithmOf(encodedHash), start)
	return ok, err
}

func (h *Hasher) observe(op string, alg Algorithm, start time.Time) {
	if h.duration == nil {
		return
	}
	if alg == "" {
		alg = "unknown"
	}
	h.duration.WithLabelValues(op, string(alg)).Observe(time.Since(start).Seconds())
}
