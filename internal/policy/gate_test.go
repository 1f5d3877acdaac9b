package policy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clearseek/clearseek/internal/config"
)

// TestGateAuthorize tests allow/deny decisions against a served robots.txt.
func TestGateAuthorize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\nCrawl-delay: 3\n")
	}))
	defer srv.Close()

	gate := NewGate(config.DefaultUserAgent,
		WithHTTPClient(srv.Client()),
		WithDelayFloor(time.Second),
	)
	defer gate.Close()

	ctx := context.Background()

	t.Run("allowed path", func(t *testing.T) {
		d := gate.Authorize(ctx, srv.URL+"/public/page")
		if !d.Allowed {
			t.Fatalf("expected allow, got denial: %s", d.Reason)
		}
		if d.Delay != 3*time.Second {
			t.Errorf("Delay = %v, want crawl-delay 3s", d.Delay)
		}
	})

	t.Run("denied path", func(t *testing.T) {
		d := gate.Authorize(ctx, srv.URL+"/private/x")
		if d.Allowed {
			t.Fatal("expected denial for /private/x")
		}
		if d.Reason == "" {
			t.Error("denial must carry a reason")
		}
	})
}

// TestGateFailOpen tests that unreachable or missing policies allow
// fetching with a conservative delay.
func TestGateFailOpen(t *testing.T) {
	t.Parallel()

	t.Run("404 robots means no restrictions", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		gate := NewGate(config.DefaultUserAgent, WithHTTPClient(srv.Client()), WithDelayFloor(time.Second))
		defer gate.Close()

		d := gate.Authorize(context.Background(), srv.URL+"/anything")
		if !d.Allowed {
			t.Fatalf("expected fail-open allow, got: %s", d.Reason)
		}
		if d.Delay != time.Second {
			t.Errorf("Delay = %v, want floor 1s", d.Delay)
		}
	})

	t.Run("server error keeps conservative delay", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		gate := NewGate(config.DefaultUserAgent, WithHTTPClient(srv.Client()), WithDelayFloor(time.Second))
		defer gate.Close()

		d := gate.Authorize(context.Background(), srv.URL+"/anything")
		if !d.Allowed {
			t.Fatalf("expected fail-open allow, got: %s", d.Reason)
		}
		if d.Delay != DefaultConservativeDelay {
			t.Errorf("Delay = %v, want conservative %v", d.Delay, DefaultConservativeDelay)
		}
	})
}

// TestGateCaches tests that a domain's robots.txt is fetched once per TTL.
func TestGateCaches(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
		}
		fmt.Fprint(w, "User-agent: *\nDisallow: /none/\n")
	}))
	defer srv.Close()

	gate := NewGate(config.DefaultUserAgent,
		WithHTTPClient(srv.Client()),
		WithTTL(time.Hour),
	)
	defer gate.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		gate.Authorize(ctx, fmt.Sprintf("%s/page-%d", srv.URL, i))
	}

	if got := fetches.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}

// TestGateCollapsesConcurrentRefreshes tests the at-most-one in-flight
// policy fetch per domain guarantee.
func TestGateCollapsesConcurrentRefreshes(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
			time.Sleep(50 * time.Millisecond) // widen the race window
		}
		fmt.Fprint(w, "User-agent: *\nDisallow: /none/\n")
	}))
	defer srv.Close()

	gate := NewGate(config.DefaultUserAgent,
		WithHTTPClient(srv.Client()),
		WithTTL(time.Hour),
	)
	defer gate.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			gate.Authorize(context.Background(), fmt.Sprintf("%s/p%d", srv.URL, i))
		}()
	}
	wg.Wait()

	if got := fetches.Load(); got != 1 {
		t.Errorf("concurrent refreshes caused %d fetches, want 1", got)
	}
}

// TestGateSiteOverrides tests config-file deny prefixes and delay floors.
func TestGateSiteOverrides(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow:\n")
	}))
	defer srv.Close()

	overrides := &config.File{Sites: map[string]config.SiteConfig{}}
	// The test server's host:port is only known at runtime.
	u := srv.URL[len("http://"):]
	overrides.Sites[u] = config.SiteConfig{
		Delay:    5 * time.Second,
		Disallow: []string{"/internal/"},
	}

	gate := NewGate(config.DefaultUserAgent,
		WithHTTPClient(srv.Client()),
		WithOverrides(overrides),
		WithDelayFloor(time.Second),
	)
	defer gate.Close()

	ctx := context.Background()

	if d := gate.Authorize(ctx, srv.URL+"/internal/secret"); d.Allowed {
		t.Error("site-config disallow prefix must deny")
	}
	if d := gate.Authorize(ctx, srv.URL+"/public"); !d.Allowed || d.Delay != 5*time.Second {
		t.Errorf("override delay not applied: %+v", d)
	}
}

// TestGateRespectDisabled tests bypassing robots enforcement.
func TestGateRespectDisabled(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
	}))
	defer srv.Close()

	gate := NewGate(config.DefaultUserAgent,
		WithHTTPClient(srv.Client()),
		WithRespectRobots(false),
		WithDelayFloor(time.Second),
	)
	defer gate.Close()

	d := gate.Authorize(context.Background(), srv.URL+"/anything")
	if !d.Allowed {
		t.Fatal("expected allow when robots enforcement is off")
	}
	if fetches.Load() != 0 {
		t.Error("robots.txt must not be fetched when enforcement is off")
	}
}
