//go:build linux || darwin

package lister

import (
	"path/filepath"
	"syscall"
	"testing"
)

// specialFileCases returns non-directory paths that must fail without blocking
func specialFileCases(t *testing.T, dir string) []errorCase {
	t.Helper()
	fifo := filepath.Join(dir, "pipe")
	if err := syscall.Mkfifo(fifo, 0o644); err != nil {
		t.Fatalf("Mkfifo() error = %v", err)
	}
	return []errorCase{
		{"named pipe", fifo, KindNotADirectory},
	}
}
