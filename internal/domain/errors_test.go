package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		base error
	}{
		{"geometry error", &GeometryError{Reason: "empty"}, ErrInvalidInput},
		{"search error", &SearchError{StatusCode: 500, Body: "boom"}, ErrProvider},
		{"submit error", &OrderSubmitError{StatusCode: 400, Body: "bad"}, ErrProvider},
		{"order failed", &OrderFailedError{OrderID: "o1", Payload: "{}"}, ErrProvider},
		{"no results", &NoResultsError{OrderID: "o1"}, ErrProvider},
		{"config error", &ConfigError{Field: "order.bundle", Message: "bad"}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.base) {
				t.Errorf("expected %v to wrap %v", tt.err, tt.base)
			}
			if tt.err.Error() == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestOrderPollErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("status fetch: %w", ErrProvider)
	err := &OrderPollError{OrderID: "o2", Err: inner}

	if !errors.Is(err, ErrProvider) {
		t.Error("expected poll error to unwrap to the inner error")
	}
	if !strings.Contains(err.Error(), "o2") {
		t.Errorf("expected order id in message, got %q", err.Error())
	}
}

func TestErrorBodyTruncation(t *testing.T) {
	body := strings.Repeat("x", 2000)
	err := &SearchError{StatusCode: 502, Body: body}

	if len(err.Error()) > 600 {
		t.Errorf("expected truncated message, got %d bytes", len(err.Error()))
	}
	if !strings.Contains(err.Error(), "...") {
		t.Error("expected ellipsis in truncated message")
	}
}
