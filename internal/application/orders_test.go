package application

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satclip/satclip/internal/domain"
	"github.com/satclip/satclip/internal/ports/output"
)

func newTestOrder() *domain.Order {
	return &domain.Order{
		ID:        "order-1",
		Name:      "AOI_001_001",
		State:     domain.OrderSubmitted,
		StatusURL: "https://orders.example.com/v2/orders/order-1",
	}
}

func testSubmission() output.OrderSubmission {
	return output.OrderSubmission{
		Name:     "AOI_001_001",
		ItemID:   "scene-1",
		ItemType: "PSScene",
		Bundle:   domain.BundleVisual,
		AOI:      squareAOI(),
	}
}

func newTestService(orders *mockOrders, factory *mockBundleFactory, sink *mockSink, clock *fakeClock, cfg OrderServiceConfig) *OrderService {
	return NewOrderService(orders, factory, sink, clock, &output.NoOpMetrics{}, testLogger(), cfg)
}

func TestExecuteFullLifecycle(t *testing.T) {
	orders := &mockOrders{
		submitOrder: newTestOrder(),
		pollStates: []output.OrderStatus{
			{State: "queued"},
			{State: "running"},
			{State: "success", Results: []domain.ResultFile{
				{Location: "https://dl/1", Name: "files/scene_visual.tif"},
				{Location: "https://dl/2", Name: "manifest.json"},
			}},
		},
		downloads: map[string]string{
			"https://dl/1": "tif-bytes",
			"https://dl/2": `{"ok":true}`,
		},
	}
	factory := &mockBundleFactory{}
	sink := &mockSink{}
	clock := &fakeClock{now: time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC)}

	svc := newTestService(orders, factory, sink, clock, OrderServiceConfig{PollInterval: 10 * time.Second})
	order, dest, err := svc.Execute(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if order.State != domain.OrderPackaged {
		t.Errorf("final state = %s, want %s", order.State, domain.OrderPackaged)
	}
	if order.PollsTaken != 3 {
		t.Errorf("polls = %d, want 3", order.PollsTaken)
	}
	if clock.sleeps != 2 {
		t.Errorf("sleeps = %d, want 2 (one per non-terminal poll)", clock.sleeps)
	}
	if dest != "AOI_001_001_bundle.zip" {
		t.Errorf("destination = %q", dest)
	}

	writer := factory.writer
	if !writer.committed {
		t.Fatal("archive was not committed")
	}
	if len(writer.entries) != 2 {
		t.Fatalf("archive has %d entries, want 2", len(writer.entries))
	}
	if !bytes.Equal(writer.entries["files/scene_visual.tif"], []byte("tif-bytes")) {
		t.Error("entry content does not match downloaded bytes")
	}
	if len(sink.stored) != 1 || sink.stored[0] != "AOI_001_001_bundle.zip" {
		t.Errorf("sink stored %v", sink.stored)
	}
}

func TestExecuteSubmitRejected(t *testing.T) {
	orders := &mockOrders{submitErr: &domain.OrderSubmitError{StatusCode: 400, Body: "bad request"}}
	svc := newTestService(orders, &mockBundleFactory{}, &mockSink{}, &fakeClock{}, OrderServiceConfig{PollInterval: time.Second})

	_, _, err := svc.Execute(context.Background(), testSubmission())

	var submitErr *domain.OrderSubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("expected OrderSubmitError, got %v", err)
	}
}

func TestExecuteOrderFails(t *testing.T) {
	orders := &mockOrders{
		submitOrder: newTestOrder(),
		pollStates: []output.OrderStatus{
			{State: "failed", Raw: `{"state":"failed","error_hints":["no access"]}`},
		},
	}
	factory := &mockBundleFactory{}
	svc := newTestService(orders, factory, &mockSink{}, &fakeClock{}, OrderServiceConfig{PollInterval: time.Second})

	order, _, err := svc.Execute(context.Background(), testSubmission())

	var failedErr *domain.OrderFailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("expected OrderFailedError, got %v", err)
	}
	if failedErr.Payload == "" {
		t.Error("failure payload must carry the provider status document")
	}
	if order.State != domain.OrderFailed {
		t.Errorf("state = %s, want %s", order.State, domain.OrderFailed)
	}
	if len(factory.names) != 0 {
		t.Error("no archive may be created for a failed order")
	}
}

func TestExecutePollErrorIsFatalForOrder(t *testing.T) {
	orders := &mockOrders{
		submitOrder: newTestOrder(),
		pollErr:     errors.New("connection reset"),
	}
	svc := newTestService(orders, &mockBundleFactory{}, &mockSink{}, &fakeClock{}, OrderServiceConfig{PollInterval: time.Second})

	_, _, err := svc.Execute(context.Background(), testSubmission())

	var pollErr *domain.OrderPollError
	if !errors.As(err, &pollErr) {
		t.Fatalf("expected OrderPollError, got %v", err)
	}
	if pollErr.OrderID != "order-1" {
		t.Errorf("OrderID = %q", pollErr.OrderID)
	}
}

func TestExecuteBoundedPolling(t *testing.T) {
	orders := &mockOrders{
		submitOrder: newTestOrder(),
		pollStates:  []output.OrderStatus{{State: "running"}},
	}
	clock := &fakeClock{}
	svc := newTestService(orders, &mockBundleFactory{}, &mockSink{}, clock, OrderServiceConfig{
		PollInterval:    time.Second,
		MaxPollAttempts: 5,
	})

	_, _, err := svc.Execute(context.Background(), testSubmission())

	var pollErr *domain.OrderPollError
	if !errors.As(err, &pollErr) {
		t.Fatalf("expected OrderPollError after exhausting attempts, got %v", err)
	}
	if orders.polls != 5 {
		t.Errorf("polls = %d, want 5", orders.polls)
	}
}

func TestExecuteCanceledDuringPollSleep(t *testing.T) {
	orders := &mockOrders{
		submitOrder: newTestOrder(),
		pollStates:  []output.OrderStatus{{State: "running"}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(orders, &mockBundleFactory{}, &mockSink{}, &fakeClock{}, OrderServiceConfig{PollInterval: time.Second})
	_, _, err := svc.Execute(ctx, testSubmission())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteSuccessWithoutResults(t *testing.T) {
	orders := &mockOrders{
		submitOrder: newTestOrder(),
		pollStates:  []output.OrderStatus{{State: "success"}},
	}
	svc := newTestService(orders, &mockBundleFactory{}, &mockSink{}, &fakeClock{}, OrderServiceConfig{PollInterval: time.Second})

	_, _, err := svc.Execute(context.Background(), testSubmission())

	var noResults *domain.NoResultsError
	if !errors.As(err, &noResults) {
		t.Fatalf("expected NoResultsError, got %v", err)
	}
}

func TestExecuteDownloadFailureDiscardsBundle(t *testing.T) {
	orders := &mockOrders{
		submitOrder: newTestOrder(),
		pollStates: []output.OrderStatus{
			{State: "success", Results: []domain.ResultFile{{Location: "https://dl/1", Name: "a.tif"}}},
		},
		downloadErr: errors.New("connection reset"),
	}
	factory := &mockBundleFactory{}
	svc := newTestService(orders, factory, &mockSink{}, &fakeClock{}, OrderServiceConfig{PollInterval: time.Second})

	_, _, err := svc.Execute(context.Background(), testSubmission())
	if err == nil {
		t.Fatal("expected download error")
	}
	if factory.writer == nil || !factory.writer.discarded {
		t.Error("partial bundle must be discarded on download failure")
	}
}
