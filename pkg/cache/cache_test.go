package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before set
	if _, hit, err := c.Get(ctx, "diagram"); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	// Round trip
	if err := c.Set(ctx, "diagram", []byte("[A]"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "diagram")
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if string(data) != "[A]" {
		t.Errorf("got %q, want %q", data, "[A]")
	}

	// Expired entry is a miss
	if err := c.Set(ctx, "fleeting", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "fleeting"); hit {
		t.Error("expired entry should miss")
	}

	// Delete
	if err := c.Delete(ctx, "diagram"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "diagram"); hit {
		t.Error("deleted entry should miss")
	}
	// Deleting a missing key is fine
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	c := NewRedisCache(mr.Addr(), "", 0)
	defer c.Close()

	if _, hit, err := c.Get(ctx, "diagram"); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "diagram", []byte("[A]\n │\n ↓\n[B]"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "diagram")
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if string(data) != "[A]\n │\n ↓\n[B]" {
		t.Errorf("got %q", data)
	}

	// TTL expiry
	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "diagram"); hit {
		t.Error("entry should expire after TTL")
	}

	// Delete
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry should miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Every option field participates in the key: any field that changes
	// output bytes must force a re-render.
	base := RenderKeyOpts{Style: "square", NodeSpacing: 4, LayerSpacing: 2}
	rk1 := k.RenderKey("hash123", base)
	if rk1 != k.RenderKey("hash123", base) {
		t.Error("RenderKey should be deterministic")
	}

	variants := map[string]RenderKeyOpts{
		"style":             {Style: "round", NodeSpacing: 4, LayerSpacing: 2},
		"ascii":             {Style: "square", ASCII: true, NodeSpacing: 4, LayerSpacing: 2},
		"arrows":            {Style: "square", ShowArrows: true, NodeSpacing: 4, LayerSpacing: 2},
		"node spacing":      {Style: "square", NodeSpacing: 6, LayerSpacing: 2},
		"layer spacing":     {Style: "square", NodeSpacing: 4, LayerSpacing: 3},
		"left padding":      {Style: "square", NodeSpacing: 4, LayerSpacing: 2, LeftPadding: 6},
		"binary tree":       {Style: "square", NodeSpacing: 4, LayerSpacing: 2, BinaryTree: true},
		"density threshold": {Style: "square", NodeSpacing: 4, LayerSpacing: 2, DensityThreshold: 0.3},
	}
	for name, opts := range variants {
		if k.RenderKey("hash123", opts) == rk1 {
			t.Errorf("changing %s should produce a different key", name)
		}
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("different formats should produce different keys")
	}
	if ak1 == rk1 {
		t.Error("artifact and render keys should not collide")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:42:")

	key := scoped.RenderKey("hash123", RenderKeyOpts{})
	if key[:10] != "tenant:42:" {
		t.Errorf("RenderKey should be prefixed: %s", key)
	}
	if inner := NewDefaultKeyer().RenderKey("hash123", RenderKeyOpts{}); key != "tenant:42:"+inner {
		t.Errorf("scoped key should wrap the inner key: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "dot"})
	if got := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "dot"}); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	transport := errors.New("connection refused")
	err := Retryable(transport)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != transport.Error() {
		t.Errorf("error message should be preserved: %s", err.Error())
	}
	if IsRetryable(transport) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("should call once: %d", calls)
	}

	fatal := errors.New("bad key")
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return fatal
	})
	if err != fatal {
		t.Errorf("should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("should not retry non-retryable error: %d", calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("timeout"))
		}
		return nil
	})
	if err != nil {
		t.Errorf("should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("timeout"))
	})
	if err != context.Canceled {
		t.Errorf("should return context error: %v", err)
	}
}
