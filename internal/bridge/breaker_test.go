package bridge

import (
	"testing"
	"time"
)

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	cb.RecordFailure()
	cb.RecordFailure()
	if !cb.Allow() {
		t.Fatal("breaker tripped below threshold")
	}
}

func TestBreakerTripsAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	if cb.Allow() {
		t.Fatal("breaker should be open")
	}
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	if !cb.Allow() {
		t.Fatal("non-consecutive failures must not trip the breaker")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(20 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("cooldown elapsed, probe should be allowed")
	}
	// Only one probe runs at a time.
	if cb.Allow() {
		t.Fatal("second call during the probe should be refused")
	}

	cb.RecordSuccess()
	if !cb.Allow() {
		t.Fatal("successful probe should close the breaker")
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("probe should be allowed")
	}
	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("failed probe should re-open the breaker")
	}
}

func TestBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker(0, 0)
	if cb.threshold != 5 || cb.cooldown != 10*time.Second {
		t.Fatalf("got threshold %d, cooldown %s", cb.threshold, cb.cooldown)
	}
}
