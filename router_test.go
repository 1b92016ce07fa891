// Copyright 2025 Agentwork, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pagehound

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeBackend satisfies both fetcher interfaces for router tests.
type fakeBackend struct {
	mu     sync.Mutex
	method Method
	calls  []string
	// fetch overrides the default canned behavior when set.
	fetch func(ctx context.Context, url string) (*FetchResult, error)
}

func (f *fakeBackend) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.fetch != nil {
		return f.fetch(ctx, url)
	}
	return &FetchResult{
		URL:     url,
		Status:  StatusSuccess,
		Method:  f.method,
		HTML:    strings.Repeat("<p>server rendered body</p>", 100),
		Content: strings.Repeat("words ", 200),
	}, nil
}

func (f *fakeBackend) RunActions(ctx context.Context, url string, _ []Action) (*FetchResult, error) {
	return f.Fetch(ctx, url)
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestRouter(robots *RobotsPolicy) (*Router, *fakeBackend, *fakeBackend) {
	lightweight := &fakeBackend{method: MethodLightweight}
	rendered := &fakeBackend{method: MethodRendered}
	return NewRouter(lightweight, rendered, robots), lightweight, rendered
}

func TestRouterPolicyGateBlocksBeforeAnyBackend(t *testing.T) {
	robots := NewRobotsPolicy(DefaultRobotsTTL, nil)
	installRules(robots, "example.com", RobotsRuleSet{Disallow: []string{"/private"}})

	router, lightweight, rendered := newTestRouter(robots)
	result := router.Scrape(context.Background(), "https://example.com/private/x", DefaultScrapeOptions())

	if result.Status != StatusBlocked {
		t.Fatalf("status = %s, want blocked", result.Status)
	}
	if result.Error == "" {
		t.Fatal("blocked result should carry a reason")
	}
	if lightweight.callCount() != 0 || rendered.callCount() != 0 {
		t.Fatal("no backend may run for a blocked URL")
	}
}

func TestRouterForceBrowserSkipsLightweight(t *testing.T) {
	router, lightweight, rendered := newTestRouter(nil)

	opts := DefaultScrapeOptions()
	opts.ForceBrowser = true
	result := router.Scrape(context.Background(), "https://example.com/app", opts)

	if result.Method != MethodRendered {
		t.Fatalf("method = %s, want rendered", result.Method)
	}
	if result.FallbackFrom != "" {
		t.Fatal("a direct rendered fetch is not a fallback")
	}
	if lightweight.callCount() != 0 {
		t.Fatal("lightweight backend must be skipped when forced to browser")
	}
	if rendered.callCount() != 1 {
		t.Fatalf("rendered calls = %d, want 1", rendered.callCount())
	}
}

func TestRouterJSRequiredDomainRoutesRendered(t *testing.T) {
	router, lightweight, rendered := newTestRouter(nil)

	router.Scrape(context.Background(), "https://twitter.com/somebody", DefaultScrapeOptions())

	if lightweight.callCount() != 0 {
		t.Fatal("JavaScript-required domains skip the lightweight attempt")
	}
	if rendered.callCount() != 1 {
		t.Fatalf("rendered calls = %d, want 1", rendered.callCount())
	}
}

func TestRouterFallsBackOnThinContent(t *testing.T) {
	router, lightweight, rendered := newTestRouter(nil)
	lightweight.fetch = func(_ context.Context, url string) (*FetchResult, error) {
		return &FetchResult{URL: url, Status: StatusSuccess, Method: MethodLightweight, HTML: strings.Repeat("x", 200)}, nil
	}

	result := router.Scrape(context.Background(), "https://example.com/spa", DefaultScrapeOptions())

	if result.Method != MethodRendered {
		t.Fatalf("method = %s, want rendered after fallback", result.Method)
	}
	if result.FallbackFrom != MethodLightweight {
		t.Fatalf("fallbackFrom = %q, want lightweight", result.FallbackFrom)
	}
	if rendered.callCount() != 1 {
		t.Fatalf("rendered calls = %d, want 1", rendered.callCount())
	}
}

func TestRouterDoesNotFallBackOnPermanentError(t *testing.T) {
	router, lightweight, rendered := newTestRouter(nil)
	lightweight.fetch = func(_ context.Context, url string) (*FetchResult, error) {
		return &FetchResult{URL: url, Status: StatusError, Method: MethodLightweight, Error: "HTTP error 404 Not Found"}, nil
	}

	result := router.Scrape(context.Background(), "https://example.com/gone", DefaultScrapeOptions())

	if result.Status != StatusError || result.Method != MethodLightweight {
		t.Fatalf("permanent failure should be returned as-is, got %+v", result)
	}
	if rendered.callCount() != 0 {
		t.Fatal("rendered backend must not run for a permanent failure")
	}
}

func TestRouterFallbackDisabled(t *testing.T) {
	router, lightweight, rendered := newTestRouter(nil)
	lightweight.fetch = func(_ context.Context, url string) (*FetchResult, error) {
		return &FetchResult{URL: url, Status: StatusSuccess, Method: MethodLightweight, HTML: "tiny"}, nil
	}

	opts := DefaultScrapeOptions()
	opts.AllowFallback = false
	result := router.Scrape(context.Background(), "https://example.com/", opts)

	if result.Method != MethodLightweight {
		t.Fatalf("method = %s, want lightweight", result.Method)
	}
	if rendered.callCount() != 0 {
		t.Fatal("fallback must not run when disabled")
	}
}

func TestRouterExtractContentOff(t *testing.T) {
	router, _, _ := newTestRouter(nil)

	opts := DefaultScrapeOptions()
	opts.ExtractContent = false
	result := router.Scrape(context.Background(), "https://example.com/", opts)

	if result.Text != "" || result.Content != "" {
		t.Fatal("text fields should be stripped when extraction is off")
	}
	if result.HTML == "" {
		t.Fatal("raw HTML is still returned")
	}
}

func TestRouterTimeoutYieldsTransientError(t *testing.T) {
	router, lightweight, rendered := newTestRouter(nil)
	router.SetTimeout(20 * time.Millisecond)

	slow := func(ctx context.Context, url string) (*FetchResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	lightweight.fetch = slow
	rendered.fetch = slow

	opts := DefaultScrapeOptions()
	opts.AllowFallback = false
	result := router.Scrape(context.Background(), "https://slow.example.com/", opts)

	if result.Status != StatusError {
		t.Fatalf("status = %s, want error", result.Status)
	}
	if !strings.Contains(result.Error, "timeout") {
		t.Fatalf("timeout error should be marked transient, got %q", result.Error)
	}
}

func TestScrapeManyPreservesOrderAndIsolatesFailures(t *testing.T) {
	router, lightweight, _ := newTestRouter(nil)
	lightweight.fetch = func(_ context.Context, url string) (*FetchResult, error) {
		if strings.Contains(url, "second") {
			panic("backend exploded")
		}
		return &FetchResult{
			URL:    url,
			Status: StatusSuccess,
			Method: MethodLightweight,
			HTML:   strings.Repeat("<p>fine</p>", 200),
		}, nil
	}

	urls := []string{
		"https://example.com/first",
		"https://example.com/second",
		"https://example.com/third",
	}
	opts := DefaultScrapeOptions()
	opts.AllowFallback = false
	results := router.ScrapeMany(context.Background(), urls, 2, opts)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, result := range results {
		if result.URL != urls[i] {
			t.Fatalf("result %d is for %s, want %s", i, result.URL, urls[i])
		}
	}
	if results[0].Status != StatusSuccess || results[2].Status != StatusSuccess {
		t.Fatal("siblings of a failing URL must keep their normal outcomes")
	}
	if results[1].Status != StatusError || !strings.Contains(results[1].Error, "panic") {
		t.Fatalf("second result should record the panic, got %+v", results[1])
	}
}

func TestScrapeManyHonorsConcurrencyCap(t *testing.T) {
	router, lightweight, _ := newTestRouter(nil)

	var inFlight, peak atomic.Int32
	lightweight.fetch = func(_ context.Context, url string) (*FetchResult, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return &FetchResult{URL: url, Status: StatusSuccess, Method: MethodLightweight, HTML: strings.Repeat("x", 2000)}, nil
	}

	urls := make([]string, 8)
	for i := range urls {
		urls[i] = "https://example.com/page"
	}
	opts := DefaultScrapeOptions()
	opts.AllowFallback = false
	router.ScrapeMany(context.Background(), urls, 2, opts)

	if got := peak.Load(); got > 2 {
		t.Fatalf("observed %d concurrent fetches, cap is 2", got)
	}
}
