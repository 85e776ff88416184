package iphash

import "testing"

func TestHash_Deterministic(t *testing.T) {
	got := Hash("127.0.0.1", "test-salt")
	want := "bdbb9fe01a7cea10"
	if got != want {
		t.Errorf("Hash(127.0.0.1, test-salt) = %q, want %q", got, want)
	}

	if again := Hash("127.0.0.1", "test-salt"); again != got {
		t.Errorf("Hash is not deterministic: %q vs %q", again, got)
	}
}

func TestHash_DefaultSaltFallback(t *testing.T) {
	got := Hash("127.0.0.1", "")
	want := "165e2bb85429fd34"
	if got != want {
		t.Errorf("Hash with default salt = %q, want %q", got, want)
	}
}

func TestHash_DifferentInputsDiffer(t *testing.T) {
	a := Hash("127.0.0.1", "test-salt")
	b := Hash("127.0.0.2", "test-salt")
	c := Hash("127.0.0.1", "other-salt")
	if a == b {
		t.Error("different IPs produced the same hash")
	}
	if a == c {
		t.Error("different salts produced the same hash")
	}
}

func TestHash_Length(t *testing.T) {
	if got := Hash("2001:db8::1", "s"); len(got) != 16 {
		t.Errorf("expected 16 hex chars, got %d (%q)", len(got), got)
	}
}
