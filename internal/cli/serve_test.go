package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"

	"github.com/scottvr/phart/pkg/cache"
	"github.com/scottvr/phart/pkg/graph"
	"github.com/scottvr/phart/pkg/layout"
)

func newTestRouter(c cache.Cache) http.Handler {
	s := &server{
		cache: c,
		keyer: cache.NewDefaultKeyer(),
		ttl:   time.Minute,
	}
	r := chi.NewRouter()
	r.Use(requestID)
	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	return r
}

func postRender(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/render", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func testGraphFile() graph.File {
	g := graph.New(true)
	g.AddEdge("A", "B", nil)
	return graph.ToFile(g)
}

func TestHandleHealth(t *testing.T) {
	h := newTestRouter(cache.NewNullCache())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestHandleRenderText(t *testing.T) {
	h := newTestRouter(cache.NewNullCache())

	rec := postRender(t, h, renderRequest{Graph: testGraphFile()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Format != "text" {
		t.Errorf("format = %q, want text", resp.Format)
	}
	if resp.Cached {
		t.Error("first render should not be cached")
	}
	if !strings.Contains(resp.Diagram, "[A]") || !strings.Contains(resp.Diagram, "[B]") {
		t.Errorf("diagram missing nodes:\n%s", resp.Diagram)
	}
}

func TestHandleRenderOptions(t *testing.T) {
	h := newTestRouter(cache.NewNullCache())

	style := "round"
	ascii := true
	rec := postRender(t, h, renderRequest{
		Graph:   testGraphFile(),
		Options: &optionsPayload{Style: &style, ASCII: &ascii},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Diagram, "(A)") {
		t.Errorf("round style not applied:\n%s", resp.Diagram)
	}
	if strings.ContainsRune(resp.Diagram, '│') {
		t.Errorf("ascii option not applied:\n%s", resp.Diagram)
	}
}

func TestHandleRenderDot(t *testing.T) {
	h := newTestRouter(cache.NewNullCache())

	rec := postRender(t, h, renderRequest{Graph: testGraphFile(), Format: "dot"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Diagram, `"A" -> "B";`) {
		t.Errorf("DOT output missing edge:\n%s", resp.Diagram)
	}
}

func TestHandleRenderCachesOnRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	c := cache.NewRedisCache(mr.Addr(), "", 0)
	defer c.Close()
	h := newTestRouter(c)

	first := postRender(t, h, renderRequest{Graph: testGraphFile()})
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", first.Code, first.Body)
	}
	second := postRender(t, h, renderRequest{Graph: testGraphFile()})

	var resp1, resp2 renderResponse
	if err := json.Unmarshal(first.Body.Bytes(), &resp1); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &resp2); err != nil {
		t.Fatal(err)
	}
	if resp1.Cached {
		t.Error("first render should miss the cache")
	}
	if !resp2.Cached {
		t.Error("second render should hit the cache")
	}
	if resp1.Diagram != resp2.Diagram {
		t.Error("cached diagram differs from fresh render")
	}
}

// flakyCache fails its first Get calls with a retryable error, then behaves
// like an in-memory store.
type flakyCache struct {
	store    map[string][]byte
	getFails int
	getCalls int
}

func newFlakyCache(getFails int) *flakyCache {
	return &flakyCache{store: map[string][]byte{}, getFails: getFails}
}

func (c *flakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.getCalls++
	if c.getCalls <= c.getFails {
		return nil, false, cache.Retryable(errors.New("connection reset"))
	}
	data, ok := c.store[key]
	return data, ok, nil
}

func (c *flakyCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.store[key] = data
	return nil
}

func (c *flakyCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *flakyCache) Close() error { return nil }

func TestServerKeyerScoping(t *testing.T) {
	plain := serverKeyer("").RenderKey("hash123", cache.RenderKeyOpts{})
	if plain != cache.NewDefaultKeyer().RenderKey("hash123", cache.RenderKeyOpts{}) {
		t.Error("empty prefix should use the default key scheme")
	}

	a := serverKeyer("staging").RenderKey("hash123", cache.RenderKeyOpts{})
	b := serverKeyer("prod").RenderKey("hash123", cache.RenderKeyOpts{})
	if a == b || a == plain {
		t.Errorf("prefixed keys should not collide: %s / %s / %s", a, b, plain)
	}
	if !strings.HasPrefix(a, "staging:") {
		t.Errorf("key should carry its namespace: %s", a)
	}
}

func TestProduceRetriesTransientCacheFailure(t *testing.T) {
	fc := newFlakyCache(1)
	s := &server{cache: fc, keyer: cache.NewDefaultKeyer(), ttl: time.Minute}

	g := graph.New(true)
	g.AddEdge("A", "B", nil)
	ctx := context.Background()

	out, cached, err := s.produce(ctx, g, layout.Default(), "text")
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if cached {
		t.Error("first render should miss the cache")
	}
	if fc.getCalls != 2 {
		t.Errorf("Get calls = %d, want a retry after the transient failure", fc.getCalls)
	}

	out2, cached, err := s.produce(ctx, g, layout.Default(), "text")
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if !cached {
		t.Error("second render should hit the cache")
	}
	if out != out2 {
		t.Error("cached diagram differs from fresh render")
	}
}

func TestHandleRenderBadRequests(t *testing.T) {
	h := newTestRouter(cache.NewNullCache())

	// Malformed body
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}

	// Unknown format
	rec = postRender(t, h, renderRequest{Graph: testGraphFile(), Format: "png"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad format: status = %d, want 422", rec.Code)
	}

	// Invalid options
	badStyle := "oval"
	rec = postRender(t, h, renderRequest{
		Graph:   testGraphFile(),
		Options: &optionsPayload{Style: &badStyle},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad style: status = %d, want 400", rec.Code)
	}
}
