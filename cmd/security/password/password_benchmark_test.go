package password

import (
	"context"
	"testing"
)

const benchPassword = "correct horse battery staple"

// Benchmarks run at production cost so results track real login latency.
func benchConfigs() map[string]Config {
	bc := DefaultConfig()
	ac := DefaultConfig()
	ac.Algorithm = AlgorithmArgon2id
	return map[string]Config{"bcrypt": bc, "argon2id": ac}
}

func BenchmarkHash(b *testing.B) {
	for name, cfg := range benchConfigs() {
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				if _, err := cfg.Hash(benchPassword); err != nil {
					b.Fatalf("Hash: %v", err)
				}
			}
		})
	}
}

func BenchmarkHasherVerify_Parallel(b *testing.B) {
	for name, cfg := range benchConfigs() {
		b.Run(name, func(b *testing.B) {
			h, err := NewHasher(cfg)
			if err != nil {
				b.Fatalf("NewHasher: %v", err)
			}
			encoded, err := cfg.Hash(benchPassword)
			if err != nil {
				b.Fatalf("Hash: %v", err)
			}

			ctx := context.Background()
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if ok, err := h.Verify(ctx, encoded, benchPassword); err != nil || !ok {
						b.Errorf("Verify: ok=%v err=%v", ok, err)
						return
					}
				}
			})
		})
	}
}
