package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get = %v, %v, want miss", ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Error(err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("\x89PNG\r\n\x1a\nline1\nline2")
	if err := c.Set(ctx, "seal:abc", data, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, ok, err := c.Get(ctx, "seal:abc")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, want hit", ok, err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get = %q, want %q", got, data)
	}

	if err := c.Delete(ctx, "seal:abc"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "seal:abc"); ok {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "seal:abc"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	os.MkdirAll(filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get = %v, %v, want silent miss", ok, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear = %d, %v, want 3", n, err)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("entry survived Clear")
	}
}

func TestFileCacheSharding(t *testing.T) {
	c := &FileCache{dir: "/cache"}
	p := c.path("seal:x")
	rel, _ := filepath.Rel("/cache", p)
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || len(parts[0]) != 2 || !strings.HasSuffix(parts[1], ".entry") {
		t.Errorf("path = %s, want <2 hex>/<hash>.entry", rel)
	}
}

func TestArtifactKey(t *testing.T) {
	k := NewDefaultKeyer()
	base := ArtifactKeyOpts{SettingsHash: "s", Size: 600, Fidelity: "baseline", Mode: "export", Format: "png"}

	a := k.ArtifactKey("layout", base)
	if !strings.HasPrefix(a, "seal:") || len(a) != len("seal:")+64 {
		t.Errorf("key = %q, want seal:<sha256>", a)
	}
	if k.ArtifactKey("layout", base) != a {
		t.Error("key not deterministic")
	}

	variants := []ArtifactKeyOpts{base, base, base, base, base}
	variants[0].Size = 1200
	variants[1].Fidelity = "high"
	variants[2].Format = "svg"
	variants[3].Debug = []int{1}
	variants[4].SettingsHash = "other"
	for i, v := range variants {
		if k.ArtifactKey("layout", v) == a {
			t.Errorf("variant %d shares the base key", i)
		}
	}
	if k.ArtifactKey("other", base) == a {
		t.Error("different layouts share a key")
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := ArtifactKeyOpts{Size: 600}
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:")
	got := scoped.ArtifactKey("l", opts)
	if got != "tenant:"+inner.ArtifactKey("l", opts) {
		t.Errorf("ArtifactKey = %q, want tenant prefix", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	opts := ArtifactKeyOpts{Size: 600}
	got := NewScopedKeyer(nil, "p:").ArtifactKey("l", opts)
	if want := "p:" + NewDefaultKeyer().ArtifactKey("l", opts); got != want {
		t.Errorf("ArtifactKey = %q, want %q", got, want)
	}
}

func TestHashJSON(t *testing.T) {
	a, err := HashJSON(map[string]int{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(map[string]int{"x": 1})
	if a != b || len(a) != 64 {
		t.Errorf("HashJSON = %q / %q", a, b)
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON(func) should fail")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = time.Second })
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"recovers", 2, true, 3, false},
		{"exhausted", 5, true, 3, true},
		{"permanent", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, 3, func() error {
				calls++
				if calls <= tt.failures {
					e := errors.New("boom")
					if tt.retryable {
						return Retryable(e)
					}
					return e
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, 3, func() error { return Retryable(errors.New("x")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	base := errors.New("x")
	if err := Retryable(base); !IsRetryable(err) || !errors.Is(err, base) {
		t.Error("Retryable should wrap and mark the error")
	}
	if IsRetryable(base) {
		t.Error("plain error reported retryable")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("SEALFORGE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SEALFORGE_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{URL: url, Prefix: "sealforge-test:", DialAttempts: 1})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v, %v", got, ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry present after Delete")
	}
}

func TestRedisBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{URL: "http://nope"}); err == nil {
		t.Error("non-redis URL should fail")
	}
}
