package domain

import (
	"errors"
	"testing"
)

func TestOrderTransitions(t *testing.T) {
	o := &Order{ID: "ord-1", State: OrderSubmitted}

	steps := []OrderState{OrderPolling, OrderSucceeded, OrderDownloading, OrderPackaged}
	for _, next := range steps {
		if err := o.Transition(next); err != nil {
			t.Fatalf("Transition(%s) error = %v", next, err)
		}
		if o.State != next {
			t.Fatalf("expected state %s, got %s", next, o.State)
		}
	}

	if !o.State.Terminal() {
		t.Error("packaged order should be terminal")
	}
	if err := o.Transition(OrderPolling); err == nil {
		t.Error("expected error when leaving a terminal state")
	}
}

func TestOrderTransitionToFailed(t *testing.T) {
	o := &Order{ID: "ord-2", State: OrderSubmitted}
	if err := o.Transition(OrderPolling); err != nil {
		t.Fatalf("Transition(polling) error = %v", err)
	}
	if err := o.Transition(OrderFailed); err != nil {
		t.Fatalf("Transition(failed) error = %v", err)
	}
	if !o.State.Terminal() {
		t.Error("failed order should be terminal")
	}
	if err := o.Transition(OrderSucceeded); err == nil {
		t.Error("expected error re-entering the state machine after failure")
	}
}

func TestOrderInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from OrderState
		to   OrderState
	}{
		{"submitted cannot succeed directly", OrderSubmitted, OrderSucceeded},
		{"polling cannot package", OrderPolling, OrderPackaged},
		{"succeeded cannot fail", OrderSucceeded, OrderFailed},
		{"downloading cannot re-poll", OrderDownloading, OrderPolling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{ID: "ord-x", State: tt.from}
			if err := o.Transition(tt.to); err == nil {
				t.Errorf("Transition(%s -> %s) expected error", tt.from, tt.to)
			}
		})
	}
}

func TestParseProductBundle(t *testing.T) {
	for _, valid := range []string{"visual", "analytic", "analytic_sr"} {
		if _, err := ParseProductBundle(valid); err != nil {
			t.Errorf("ParseProductBundle(%q) error = %v", valid, err)
		}
	}

	_, err := ParseProductBundle("thermal")
	if err == nil {
		t.Fatal("expected error for unknown bundle")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}
