package fileproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestMapFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "a.md", "alpha"),
		createTestFile(t, tmpDir, "b.md", "beta"),
		createTestFile(t, tmpDir, "c.md", "gamma"),
	}

	results, errs := MapFiles(context.Background(), files, 2, func(path string) (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	}, nil)

	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	want := []string{"alpha", "beta", "gamma"}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %q, want %q", i, results[i], want[i])
		}
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results, errs := MapFiles(context.Background(), nil, 0, func(path string) (string, error) {
		return path, nil
	}, nil)

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestMapFiles_CollectsErrors(t *testing.T) {
	files := []string{"z.md", "ok.md", "a.md"}
	boom := errors.New("boom")

	results, errs := MapFiles(context.Background(), files, 0, func(path string) (int, error) {
		if path == "ok.md" {
			return 1, nil
		}
		return 0, boom
	}, nil)

	if errs == nil {
		t.Fatal("Expected errors")
	}
	if len(errs.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errs.Errors))
	}
	if !errors.Is(errs.First(), boom) {
		t.Errorf("First() = %v, want boom", errs.First())
	}
	if errs.Errors[0].Path != "a.md" {
		t.Errorf("First() should sort by path, got %s first", errs.Errors[0].Path)
	}
	if results[1] != 1 {
		t.Errorf("results[1] = %d, want 1", results[1])
	}
	if !strings.Contains(errs.Error(), "2 files failed") {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestMapFiles_Progress(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	var ticks int32

	_, _ = MapFiles(context.Background(), files, 0, func(path string) (string, error) {
		if path == "c" {
			return "", errors.New("fail")
		}
		return path, nil
	}, func() { atomic.AddInt32(&ticks, 1) })

	if got := atomic.LoadInt32(&ticks); got != int32(len(files)) {
		t.Errorf("progress called %d times, want %d", got, len(files))
	}
}

func TestMapFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := MapFiles(ctx, []string{"a", "b"}, 1, func(path string) (string, error) {
		return path, nil
	}, nil)

	if errs == nil {
		t.Fatal("Expected context errors")
	}
	if !errors.Is(errs.First(), context.Canceled) {
		t.Errorf("First() = %v, want context.Canceled", errs.First())
	}
}
