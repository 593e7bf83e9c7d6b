package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/satclip/satclip/internal/domain"
	"github.com/satclip/satclip/internal/ports/output"
)

// OrderServiceConfig holds configuration for the order service.
type OrderServiceConfig struct {
	// PollInterval is the fixed sleep between status polls.
	PollInterval time.Duration

	// MaxPollAttempts bounds the polling loop. Zero means unbounded, in
	// which case only a terminal order state or context cancellation
	// ends the wait.
	MaxPollAttempts int
}

// OrderService drives one clip-and-package order through its lifecycle:
// submit, poll to a terminal state, download the result files, and
// package them into a single archive.
type OrderService struct {
	orders  output.OrdersAPI
	bundles output.BundleFactory
	sink    output.BundleSink
	clock   Clock
	metrics output.MetricsCollector
	logger  *slog.Logger
	cfg     OrderServiceConfig
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders output.OrdersAPI,
	bundles output.BundleFactory,
	sink output.BundleSink,
	clock Clock,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg OrderServiceConfig,
) *OrderService {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 15 * time.Second
	}

	return &OrderService{
		orders:  orders,
		bundles: bundles,
		sink:    sink,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Execute runs the full order lifecycle and returns the stored archive
// destination. No archive is produced unless the order reaches its
// success state and every result file downloads cleanly.
func (s *OrderService) Execute(ctx context.Context, sub output.OrderSubmission) (*domain.Order, string, error) {
	order, err := s.orders.Submit(ctx, sub)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("order submitted",
		"order_id", order.ID,
		"order_name", order.Name,
		"item_id", sub.ItemID,
	)

	if err := order.Transition(domain.OrderPolling); err != nil {
		return order, "", err
	}

	status, err := s.waitForCompletion(ctx, order)
	if err != nil {
		return order, "", err
	}

	if err := order.Transition(domain.OrderDownloading); err != nil {
		return order, "", err
	}
	order.Results = status.Results

	dest, err := s.downloadAndPackage(ctx, order)
	if err != nil {
		return order, "", err
	}

	if err := order.Transition(domain.OrderPackaged); err != nil {
		return order, "", err
	}
	return order, dest, nil
}

// waitForCompletion polls the order's status link at a fixed interval
// until the provider reports a terminal state. Only "success" and
// "failed" end the loop; any other state sleeps and polls again.
func (s *OrderService) waitForCompletion(ctx context.Context, order *domain.Order) (*output.OrderStatus, error) {
	for {
		if s.cfg.MaxPollAttempts > 0 && order.PollsTaken >= s.cfg.MaxPollAttempts {
			return nil, &domain.OrderPollError{
				OrderID: order.ID,
				Err:     fmt.Errorf("no terminal state after %d polls", order.PollsTaken),
			}
		}

		status, err := s.orders.Status(ctx, order.StatusURL)
		if err != nil {
			return nil, &domain.OrderPollError{OrderID: order.ID, Err: err}
		}
		order.PollsTaken++
		s.metrics.IncPollCycle(status.State)

		switch status.State {
		case "success":
			if err := order.Transition(domain.OrderSucceeded); err != nil {
				return nil, err
			}
			if len(status.Results) == 0 {
				return nil, &domain.NoResultsError{OrderID: order.ID}
			}
			s.logger.Info("order completed",
				"order_id", order.ID,
				"polls", order.PollsTaken,
				"results", len(status.Results),
			)
			return status, nil

		case "failed":
			if err := order.Transition(domain.OrderFailed); err != nil {
				return nil, err
			}
			return nil, &domain.OrderFailedError{OrderID: order.ID, Payload: status.Raw}

		default:
			s.logger.Debug("order not ready",
				"order_id", order.ID,
				"state", status.State,
				"polls", order.PollsTaken,
			)
			if err := s.clock.Sleep(ctx, s.cfg.PollInterval); err != nil {
				return nil, &domain.OrderPollError{OrderID: order.ID, Err: err}
			}
		}
	}
}

// downloadAndPackage streams every result file into one archive and
// stores the committed archive at its destination. The archive only
// becomes visible after all entries are written.
func (s *OrderService) downloadAndPackage(ctx context.Context, order *domain.Order) (string, error) {
	writer, err := s.bundles.New(order.Name)
	if err != nil {
		return "", err
	}
	defer func() { _ = writer.Discard() }()

	for _, rf := range order.Results {
		n, err := s.downloadResult(ctx, writer, rf)
		if err != nil {
			return "", fmt.Errorf("downloading %s for order %s: %w", rf.Name, order.ID, err)
		}
		s.metrics.AddDownloadedBytes(n)
	}

	path, err := writer.Commit()
	if err != nil {
		return "", fmt.Errorf("committing archive for order %s: %w", order.ID, err)
	}
	s.metrics.IncBundlesWritten()

	dest, err := s.sink.Store(ctx, path, order.Name+"_bundle.zip")
	if err != nil {
		return "", fmt.Errorf("storing archive for order %s: %w", order.ID, err)
	}
	s.logger.Info("archive stored", "order_id", order.ID, "destination", dest)
	return dest, nil
}

func (s *OrderService) downloadResult(ctx context.Context, writer output.BundleWriter, rf domain.ResultFile) (int64, error) {
	rc, length, err := s.orders.Download(ctx, rf.Location)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	counted := &countingReader{r: rc}
	if err := writer.Add(rf.Name, counted); err != nil {
		return counted.n, err
	}

	s.logger.Info("downloaded result file",
		"name", rf.Name,
		"bytes", counted.n,
		"advertised", length,
	)
	return counted.n, nil
}

// countingReader counts the bytes passed through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
