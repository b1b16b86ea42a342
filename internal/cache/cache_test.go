package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetAndGetWithHash(t *testing.T) {
	c := New[string](time.Hour)
	c.SetWithHash("/kb", "h1", "corpus")

	got, ok := c.GetWithHash("/kb", "h1")
	if !ok || got != "corpus" {
		t.Fatalf("GetWithHash() = %q, %v; want corpus, true", got, ok)
	}
	if _, ok := c.GetWithHash("/kb", "h2"); ok {
		t.Error("GetWithHash() should miss on a different hash")
	}
	if _, ok := c.GetWithHash("/other", "h1"); ok {
		t.Error("GetWithHash() should miss on an unknown key")
	}
}

func TestReplace(t *testing.T) {
	c := New[int](0)
	c.SetWithHash("k", "a", 1)
	c.SetWithHash("k", "b", 2)

	if _, ok := c.GetWithHash("k", "a"); ok {
		t.Error("old state should be gone")
	}
	if got, _ := c.GetWithHash("k", "b"); got != 2 {
		t.Errorf("GetWithHash() = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestTTLExpiration(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[int](time.Minute)
	c.now = func() time.Time { return now }
	c.SetWithHash("k", "h", 1)

	now = now.Add(30 * time.Second)
	if _, ok := c.GetWithHash("k", "h"); !ok {
		t.Fatal("entry should still be valid")
	}

	now = now.Add(time.Minute)
	if _, ok := c.GetWithHash("k", "h"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be removed")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int](0)
	c.SetWithHash("k", "h", 1)
	c.Invalidate("k")
	if _, ok := c.GetWithHash("k", "h"); ok {
		t.Error("entry should be invalidated")
	}
	c.Invalidate("missing")
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	first, err := Fingerprint([]string{a, b})
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	reordered, err := Fingerprint([]string{b, a})
	if err != nil {
		t.Fatal(err)
	}
	if first != reordered {
		t.Error("Fingerprint() should not depend on order")
	}

	if err := os.WriteFile(a, []byte("longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	edited, _ := Fingerprint([]string{a, b})
	if edited == first {
		t.Error("Fingerprint() should change after an edit")
	}

	removed, _ := Fingerprint([]string{a})
	if removed == edited {
		t.Error("Fingerprint() should change when a file disappears")
	}

	if _, err := Fingerprint([]string{filepath.Join(dir, "gone.md")}); err == nil {
		t.Error("Fingerprint() should fail on a missing file")
	}
}
