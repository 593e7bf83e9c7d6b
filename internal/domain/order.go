package domain

import "fmt"

// OrderState is a lifecycle state of a clip-and-package order.
type OrderState string

// Order lifecycle states. Transitions move strictly forward:
// Submitted -> Polling -> {Succeeded, Failed}; Succeeded -> Downloading ->
// Packaged. Failed and Packaged are terminal.
const (
	OrderSubmitted   OrderState = "submitted"
	OrderPolling     OrderState = "polling"
	OrderSucceeded   OrderState = "succeeded"
	OrderFailed      OrderState = "failed"
	OrderDownloading OrderState = "downloading"
	OrderPackaged    OrderState = "packaged"
)

// Terminal reports whether no further transition occurs from s.
func (s OrderState) Terminal() bool {
	return s == OrderFailed || s == OrderPackaged
}

// Order is the mutable order entity. It is created by submission and
// mutated only by polling responses and packaging progress.
type Order struct {
	ID         string
	Name       string
	State      OrderState
	StatusURL  string // Self-link for status polling
	Results    []ResultFile
	PollsTaken int
}

// ResultFile describes one downloadable file of a completed order.
type ResultFile struct {
	Location string // Remote download location
	Name     string // Provider-suggested name, may contain directories
}

// Transition advances the order to the next state. Moving out of a
// terminal state or backwards is a programming error.
func (o *Order) Transition(next OrderState) error {
	if o.State.Terminal() {
		return fmt.Errorf("%w: order %s is already %s", ErrInternal, o.ID, o.State)
	}
	if !validTransition(o.State, next) {
		return fmt.Errorf("%w: order %s cannot move %s -> %s", ErrInternal, o.ID, o.State, next)
	}
	o.State = next
	return nil
}

func validTransition(from, to OrderState) bool {
	switch from {
	case OrderSubmitted:
		return to == OrderPolling
	case OrderPolling:
		return to == OrderSucceeded || to == OrderFailed
	case OrderSucceeded:
		return to == OrderDownloading
	case OrderDownloading:
		return to == OrderPackaged
	default:
		return false
	}
}

// ProductBundle is a named set of output file types requested for an order.
type ProductBundle string

// Supported product bundles.
const (
	BundleVisual     ProductBundle = "visual"
	BundleAnalytic   ProductBundle = "analytic"
	BundleAnalyticSR ProductBundle = "analytic_sr"
)

// ParseProductBundle validates a bundle name.
func ParseProductBundle(s string) (ProductBundle, error) {
	switch ProductBundle(s) {
	case BundleVisual, BundleAnalytic, BundleAnalyticSR:
		return ProductBundle(s), nil
	default:
		return "", &ConfigError{Field: "order.bundle", Message: fmt.Sprintf("unknown product bundle %q", s)}
	}
}
