package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func parses(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

func TestNewULID_SortsByTime(t *testing.T) {
	t.Parallel()

	a, err := NewULID(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	b, err := NewULID(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	if len(a) != 26 || !parses(a) || !parses(b) {
		t.Fatalf("invalid ulids: %q %q", a, b)
	}
	if a >= b {
		t.Fatalf("expected %q < %q", a, b)
	}
}

func TestNewULID_ZeroTime(t *testing.T) {
	t.Parallel()

	id, err := NewULID(time.Time{})
	if err != nil || !parses(id) {
		t.Fatalf("NewULID(zero)=%q err=%v", id, err)
	}
}

func TestNewULID_Unique(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, _ := NewULID(now)
	b, _ := NewULID(now)
	if a == b {
		t.Fatalf("same timestamp produced identical ids %q", a)
	}
	if a[:10] != b[:10] {
		t.Fatalf("timestamp prefix differs: %q %q", a, b)
	}
}
