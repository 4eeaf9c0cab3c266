package core

import (
	"testing"
	"time"
)

func TestRequestTracker_RejectsAfterShutdown(t *testing.T) {
	tr := NewRequestTracker()
	if !tr.Add() {
		t.Fatal("Add() = false before shutdown")
	}
	tr.Done()

	if !tr.GracefulShutdown(time.Second) {
		t.Error("GracefulShutdown() = false with no active invocations")
	}
	if tr.Add() {
		t.Error("Add() = true after shutdown")
	}
}

func TestRequestTracker_WaitsForActive(t *testing.T) {
	tr := NewRequestTracker()
	tr.Add()

	go func() {
		time.Sleep(50 * time.Millisecond)
		tr.Done()
	}()

	if !tr.GracefulShutdown(5 * time.Second) {
		t.Error("GracefulShutdown() = false, want true after Done")
	}
	if tr.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", tr.ActiveCount())
	}
}

func TestRequestTracker_Timeout(t *testing.T) {
	tr := NewRequestTracker()
	tr.Add()
	defer tr.Done()

	if tr.GracefulShutdown(20 * time.Millisecond) {
		t.Error("GracefulShutdown() = true, want timeout")
	}
}

func TestRequestTracker_Reopen(t *testing.T) {
	tr := NewRequestTracker()
	tr.GracefulShutdown(0)
	tr.Reopen()
	if !tr.Add() {
		t.Error("Add() = false after Reopen")
	}
	tr.Done()
}

func TestRequestTracker_ReopenAfterTimeout(t *testing.T) {
	tr := NewRequestTracker()
	if !tr.Add() {
		t.Fatal("Add() = false")
	}

	// the first invocation is still running when shutdown gives up
	if tr.GracefulShutdown(20 * time.Millisecond) {
		t.Fatal("GracefulShutdown() = true, want timeout")
	}

	tr.Reopen()
	if !tr.Add() {
		t.Fatal("Add() = false after Reopen")
	}
	if got := tr.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount() = %d, want 2", got)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.Done()
		tr.Done()
	}()
	if !tr.GracefulShutdown(5 * time.Second) {
		t.Error("GracefulShutdown() = false, want both invocations drained")
	}
	if got := tr.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() = %d, want 0", got)
	}
}
