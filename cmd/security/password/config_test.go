package password

import (
	"os"
	"testing"
)

var passwordEnvKeys = []string{
	"AUTHGATE_PASSWORD_ALGORITHM",
	"AUTHGATE_BCRYPT_COST",
	"AUTHGATE_PASSWORD_MIN_LEN",
	"AUTHGATE_PASSWORD_MAX_LEN",
	"AUTHGATE_PASSWORD_REJECT_VERY_WEAK",
	"AUTHGATE_ARGON2_MEMORY_KIB",
	"AUTHGATE_ARGON2_ITERATIONS",
	"AUTHGATE_ARGON2_PARALLELISM",
	"AUTHGATE_ARGON2_SALT_LEN",
	"AUTHGATE_ARGON2_KEY_LEN",
	"AUTHGATE_HASH_CONCURRENCY",
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range passwordEnvKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	if cfg.Algorithm != AlgorithmBcrypt {
		t.Fatalf("default algorithm=%q want bcrypt", cfg.Algorithm)
	}
	if cfg.Bcrypt.Cost != 10 {
		t.Fatalf("default bcrypt cost=%d want 10", cfg.Bcrypt.Cost)
	}
	def := DefaultConfig()
	if cfg.Policy.MinLength != def.Policy.MinLength {
		t.Fatalf("min length mismatch")
	}
	if cfg.Params.MemoryKiB != def.Params.MemoryKiB {
		t.Fatalf("memory mismatch")
	}
	if cfg.MaxConcurrent < 1 {
		t.Fatalf("max concurrent must be positive, got %d", cfg.MaxConcurrent)
	}
}

func TestFromEnv_Override(t *testing.T) {
	t.Setenv("AUTHGATE_PASSWORD_ALGORITHM", "Argon2id")
	t.Setenv("AUTHGATE_BCRYPT_COST", "12")
	t.Setenv("AUTHGATE_PASSWORD_MIN_LEN", "10")
	t.Setenv("AUTHGATE_PASSWORD_MAX_LEN", "200")
	t.Setenv("AUTHGATE_PASSWORD_REJECT_VERY_WEAK", "true")
	t.Setenv("AUTHGATE_ARGON2_MEMORY_KIB", "32768")
	t.Setenv("AUTHGATE_ARGON2_ITERATIONS", "4")
	t.Setenv("AUTHGATE_ARGON2_PARALLELISM", "2")
	t.Setenv("AUTHGATE_ARGON2_SALT_LEN", "24")
	t.Setenv("AUTHGATE_ARGON2_KEY_LEN", "32")
	t.Setenv("AUTHGATE_HASH_CONCURRENCY", "3")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	if cfg.Algorithm != AlgorithmArgon2id || cfg.Bcrypt.Cost != 12 {
		t.Fatalf("algorithm override failed: %q cost=%d", cfg.Algorithm, cfg.Bcrypt.Cost)
	}
	if cfg.Policy.MinLength != 10 || cfg.Policy.MaxLength != 200 || !cfg.Policy.RejectVeryWeak {
		t.Fatalf("policy override failed: %+v", cfg.Policy)
	}
	if cfg.Params.MemoryKiB != 32768 || cfg.Params.Iterations != 4 || cfg.Params.Parallelism != 2 {
		t.Fatalf("argon2 override failed: %+v", cfg.Params)
	}
	if cfg.Params.SaltLength != 24 || cfg.Params.KeyLength != 32 {
		t.Fatalf("len override failed: %+v", cfg.Params)
	}
	if cfg.MaxConcurrent != 3 {
		t.Fatalf("concurrency override failed: %d", cfg.MaxConcurrent)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "min above max", env: map[string]string{"AUTHGATE_PASSWORD_MIN_LEN": "20", "AUTHGATE_PASSWORD_MAX_LEN": "10"}},
		{name: "bcrypt cost too low", env: map[string]string{"AUTHGATE_BCRYPT_COST": "3"}},
		{name: "bcrypt cost too high", env: map[string]string{"AUTHGATE_BCRYPT_COST": "17"}},
		{name: "unknown algorithm", env: map[string]string{"AUTHGATE_PASSWORD_ALGORITHM": "md5"}},
		{name: "bad bool", env: map[string]string{"AUTHGATE_PASSWORD_REJECT_VERY_WEAK": "maybe"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
