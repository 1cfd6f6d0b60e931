package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Timeout:          10 * time.Millisecond,
		ResetTimeout:     time.Minute,
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	cb := New(testConfig())
	ctx := context.Background()
	fail := func() error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, fail); err == nil {
			t.Fatal("expected failure")
		}
	}

	err := cb.Execute(ctx, func() error {
		t.Fatal("function must not run while open")
		return nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Errorf("error = %v, want ErrOpen", err)
	}
	if cb.GetState() != StateOpen {
		t.Errorf("state = %v, want open", cb.GetState())
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := New(testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, func() error { return errors.New("boom") })
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}

	time.Sleep(15 * time.Millisecond)

	if err := cb.Execute(ctx, func() error { return nil }); err != nil {
		t.Fatalf("half-open probe failed: %v", err)
	}
	if err := cb.Execute(ctx, func() error { return nil }); err != nil {
		t.Fatalf("Execute() after recovery error = %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", cb.GetState())
	}
}

func TestBreakerClosedOnSuccess(t *testing.T) {
	cb := New(testConfig())
	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed", cb.GetState())
	}
	if cb.Failures() != 0 {
		t.Errorf("failures = %d, want 0", cb.Failures())
	}
}

func TestStateString(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half-open" {
		t.Error("unexpected state names")
	}
}
