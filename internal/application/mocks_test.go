package application

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/satclip/satclip/internal/domain"
	"github.com/satclip/satclip/internal/ports/output"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockCatalog implements output.CatalogAPI for testing.
type mockCatalog struct {
	result *domain.SearchResult
	err    error
	calls  int
}

func (m *mockCatalog) QuickSearch(_ context.Context, _ orb.Polygon, _ domain.SearchParams) (*domain.SearchResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	// Copy so the service's cap truncation does not mutate the fixture.
	cp := *m.result
	cp.Scenes = append([]domain.Scene(nil), m.result.Scenes...)
	return &cp, nil
}

// mockOrders implements output.OrdersAPI for testing. Poll states are
// served in sequence; the last state repeats.
type mockOrders struct {
	submitOrder *domain.Order
	submitErr   error
	submissions []output.OrderSubmission

	pollStates []output.OrderStatus
	pollErr    error
	polls      int

	downloads   map[string]string
	downloadErr error
}

func (m *mockOrders) Submit(_ context.Context, sub output.OrderSubmission) (*domain.Order, error) {
	m.submissions = append(m.submissions, sub)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	cp := *m.submitOrder
	return &cp, nil
}

func (m *mockOrders) Status(_ context.Context, _ string) (*output.OrderStatus, error) {
	if m.pollErr != nil {
		return nil, m.pollErr
	}
	i := m.polls
	if i >= len(m.pollStates) {
		i = len(m.pollStates) - 1
	}
	m.polls++
	st := m.pollStates[i]
	return &st, nil
}

func (m *mockOrders) Download(_ context.Context, location string) (io.ReadCloser, int64, error) {
	if m.downloadErr != nil {
		return nil, 0, m.downloadErr
	}
	content := m.downloads[location]
	return io.NopCloser(strings.NewReader(content)), int64(len(content)), nil
}

// mockBundleWriter records entries in memory.
type mockBundleWriter struct {
	entries   map[string][]byte
	order     []string
	committed bool
	discarded bool
	commitErr error
	path      string
}

func (m *mockBundleWriter) Add(name string, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	if _, exists := m.entries[name]; !exists {
		m.order = append(m.order, name)
	}
	m.entries[name] = buf.Bytes()
	return nil
}

func (m *mockBundleWriter) Commit() (string, error) {
	if m.commitErr != nil {
		return "", m.commitErr
	}
	m.committed = true
	return m.path, nil
}

func (m *mockBundleWriter) Discard() error {
	if !m.committed {
		m.discarded = true
	}
	return nil
}

// mockBundleFactory hands out a single recording writer.
type mockBundleFactory struct {
	writer *mockBundleWriter
	err    error
	names  []string
}

func (m *mockBundleFactory) New(name string) (output.BundleWriter, error) {
	m.names = append(m.names, name)
	if m.err != nil {
		return nil, m.err
	}
	if m.writer == nil {
		m.writer = &mockBundleWriter{path: name + "_bundle.zip"}
	}
	return m.writer, nil
}

// mockSink implements output.BundleSink for testing.
type mockSink struct {
	stored []string
	err    error
}

func (m *mockSink) Store(_ context.Context, localPath, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.stored = append(m.stored, key)
	return localPath, nil
}

// fakeClock advances instantly and counts sleeps.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps++
	c.now = c.now.Add(d)
	return nil
}

// mockAOIReader implements output.AOIReader for testing.
type mockAOIReader struct {
	geoms []orb.Geometry
	err   error
}

func (m *mockAOIReader) Read(_ context.Context, _ string) ([]orb.Geometry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.geoms, nil
}

// mockPreview implements output.PreviewRenderer for testing.
type mockPreview struct {
	paths []string
	err   error
}

func (m *mockPreview) Render(_ orb.Polygon, _ []domain.Scene, outPath string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.paths = append(m.paths, outPath)
	return outPath, nil
}
