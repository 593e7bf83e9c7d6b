package planet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/satclip/satclip/internal/domain"
	"github.com/satclip/satclip/internal/ports/output"
)

// Config holds provider endpoint and transport configuration. The retry
// policy is transport-level and shared by every call: capped attempts,
// exponential backoff, server-provided retry delays honored.
type Config struct {
	DataURL      string
	OrdersURL    string
	APIKey       string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client implements the CatalogAPI and OrdersAPI ports against the
// provider's REST endpoints.
type Client struct {
	http    *retryablehttp.Client
	cfg     Config
	logger  *slog.Logger
	metrics output.MetricsCollector
}

// NewClient creates a provider client with a shared retrying transport.
func NewClient(cfg Config, logger *slog.Logger, metrics output.MetricsCollector) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = 500 * time.Millisecond
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = 30 * time.Second
	}
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = &retryLogger{logger: logger}

	return &Client{
		http:    rc,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// searchRequest is the quick-search POST body.
type searchRequest struct {
	ItemTypes []string  `json:"item_types"`
	Filter    AndFilter `json:"filter"`
}

// sceneProperties are the scene property fields the tool consumes.
type sceneProperties struct {
	Acquired   time.Time `json:"acquired"`
	CloudCover float64   `json:"cloud_cover"`
	Instrument string    `json:"instrument"`
	ItemType   string    `json:"item_type"`
}

type sceneFeature struct {
	ID         string            `json:"id"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties sceneProperties   `json:"properties"`
}

type searchResponse struct {
	Features []sceneFeature `json:"features"`
}

// QuickSearch implements the CatalogAPI port. One request, first page only;
// a non-success response fails with *domain.SearchError carrying the
// provider status and body. No retry at this layer beyond the transport's.
func (c *Client) QuickSearch(ctx context.Context, aoi orb.Polygon, params domain.SearchParams) (*domain.SearchResult, error) {
	payload := searchRequest{
		ItemTypes: params.ItemTypes,
		Filter:    BuildSearchFilter(aoi, params),
	}

	c.logger.Info("searching items",
		"item_types", params.ItemTypes,
		"start", params.StartDate.Format("2006-01-02"),
		"end", params.EndDate.Format("2006-01-02"),
	)

	body, status, err := c.postJSON(ctx, c.cfg.DataURL+"/quick-search", payload, "quick-search")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &domain.SearchError{StatusCode: status, Body: string(body)}
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding quick-search response: %w", err)
	}

	result := &domain.SearchResult{Returned: len(resp.Features)}
	for _, f := range resp.Features {
		scene := domain.Scene{
			ID:         f.ID,
			ItemType:   f.Properties.ItemType,
			Acquired:   f.Properties.Acquired,
			CloudCover: f.Properties.CloudCover,
			Instrument: f.Properties.Instrument,
		}
		if f.Geometry != nil {
			scene.Geometry = f.Geometry.Geometry()
		}
		result.Scenes = append(result.Scenes, scene)
	}
	return result, nil
}

// Order wire types.

type orderProduct struct {
	ItemIDs       []string `json:"item_ids"`
	ItemType      string   `json:"item_type"`
	ProductBundle string   `json:"product_bundle"`
}

type clipTool struct {
	AOI *geojson.Geometry `json:"aoi"`
}

type orderTool struct {
	Clip *clipTool `json:"clip,omitempty"`
}

type orderRequest struct {
	Name     string         `json:"name"`
	Products []orderProduct `json:"products"`
	Tools    []orderTool    `json:"tools"`
}

type orderLinks struct {
	Self    string             `json:"_self"`
	Results []orderResultsLink `json:"results"`
}

type orderResultsLink struct {
	Location string `json:"location"`
	Name     string `json:"name"`
}

type orderDocument struct {
	ID    string     `json:"id"`
	State string     `json:"state"`
	Links orderLinks `json:"_links"`
}

// Submit implements the OrdersAPI port. The provider acknowledges accepted
// orders with HTTP 202; any other status is a hard failure.
func (c *Client) Submit(ctx context.Context, sub output.OrderSubmission) (*domain.Order, error) {
	payload := orderRequest{
		Name: sub.Name,
		Products: []orderProduct{{
			ItemIDs:       []string{sub.ItemID},
			ItemType:      sub.ItemType,
			ProductBundle: string(sub.Bundle),
		}},
		Tools: []orderTool{{
			Clip: &clipTool{AOI: geojson.NewGeometry(sub.AOI)},
		}},
	}

	body, status, err := c.postJSON(ctx, c.cfg.OrdersURL, payload, "order-submit")
	if err != nil {
		return nil, err
	}
	if status != http.StatusAccepted {
		return nil, &domain.OrderSubmitError{StatusCode: status, Body: string(body)}
	}

	var doc orderDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding order acknowledgment: %w", err)
	}

	c.logger.Info("order placed", "order_id", doc.ID)

	return &domain.Order{
		ID:        doc.ID,
		Name:      sub.Name,
		State:     domain.OrderSubmitted,
		StatusURL: doc.Links.Self,
	}, nil
}

// Status implements the OrdersAPI port.
func (c *Client) Status(ctx context.Context, statusURL string) (*output.OrderStatus, error) {
	body, status, err := c.getBody(ctx, statusURL, "order-status")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: order status fetch returned %d %s",
			domain.ErrProvider, status, string(body))
	}

	var doc orderDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding order status: %w", err)
	}

	out := &output.OrderStatus{State: doc.State, Raw: string(body)}
	for _, r := range doc.Links.Results {
		out.Results = append(out.Results, domain.ResultFile{
			Location: r.Location,
			Name:     r.Name,
		})
	}
	return out, nil
}

// Download implements the OrdersAPI port. The caller owns the returned
// reader.
func (c *Client) Download(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, 0, err
	}
	req.SetBasicAuth(c.cfg.APIKey, "")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveAPIDuration("download", time.Since(start))
	if err != nil {
		c.metrics.IncAPIRequest("download", false)
		return nil, 0, fmt.Errorf("downloading result: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		c.metrics.IncAPIRequest("download", false)
		return nil, 0, fmt.Errorf("%w: download returned %d %s",
			domain.ErrProvider, resp.StatusCode, string(body))
	}

	c.metrics.IncAPIRequest("download", true)
	return resp.Body, resp.ContentLength, nil
}

// postJSON issues one POST with basic auth and returns the response body
// and status.
func (c *Client) postJSON(ctx context.Context, url string, payload any, endpoint string) ([]byte, int, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encoding %s request: %w", endpoint, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.APIKey, "")

	return c.do(req, endpoint)
}

func (c *Client) getBody(ctx context.Context, url string, endpoint string) ([]byte, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.SetBasicAuth(c.cfg.APIKey, "")

	return c.do(req, endpoint)
}

func (c *Client) do(req *retryablehttp.Request, endpoint string) ([]byte, int, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveAPIDuration(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncAPIRequest(endpoint, false)
		return nil, 0, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncAPIRequest(endpoint, false)
		return nil, resp.StatusCode, fmt.Errorf("reading %s response: %w", endpoint, err)
	}

	c.metrics.IncAPIRequest(endpoint, resp.StatusCode >= 200 && resp.StatusCode <= 299)
	return body, resp.StatusCode, nil
}

// retryLogger adapts slog to the retrying transport's leveled logger.
type retryLogger struct {
	logger *slog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
