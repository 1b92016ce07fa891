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
	"errors"
	"fmt"
	"time"

	"github.com/agentwork/pagehound/internal/metrics"
)

// DefaultRequestTimeout bounds a single backend invocation, including its
// rate-limiter wait.
const DefaultRequestTimeout = 60 * time.Second

// DefaultBatchConcurrency is the admission-gate size for batch scrapes
// when the caller does not specify one.
const DefaultBatchConcurrency = 3

// ScrapeOptions tunes a single routed fetch.
type ScrapeOptions struct {
	// ForceBrowser skips the lightweight attempt entirely.
	ForceBrowser bool
	// AllowFallback lets a disappointing lightweight result be retried on
	// the rendered backend.
	AllowFallback bool
	// ExtractContent controls whether text and main-content fields are
	// populated on the returned result.
	ExtractContent bool
}

// DefaultScrapeOptions enables fallback and content extraction.
func DefaultScrapeOptions() ScrapeOptions {
	return ScrapeOptions{AllowFallback: true, ExtractContent: true}
}

// Router answers "fetch this URL" by choosing the cheapest acquisition
// method that still yields usable content: robots gate first, then the
// lightweight backend, then the rendered backend when the result looks
// script-starved.
type Router struct {
	lightweight LightweightFetcher
	rendered    RenderedFetcher
	robots      *RobotsPolicy
	timeout     time.Duration
}

// NewRouter wires the router to its backends. robots may be nil to skip
// policy enforcement.
func NewRouter(lightweight LightweightFetcher, rendered RenderedFetcher, robots *RobotsPolicy) *Router {
	return &Router{
		lightweight: lightweight,
		rendered:    rendered,
		robots:      robots,
		timeout:     DefaultRequestTimeout,
	}
}

// SetTimeout changes the per-request backend invocation bound.
func (r *Router) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// Scrape runs the routing state machine for one URL. It always returns a
// result: failures of any kind are folded into an error-status result and
// a robots denial into a blocked one.
func (r *Router) Scrape(ctx context.Context, url string, opts ScrapeOptions) *FetchResult {
	if url == "" {
		return errorResult(url, "", ErrMissingURL)
	}

	// Policy gate. Fail-open: only an affirmative cached disallow blocks.
	if r.robots != nil {
		if !r.robots.IsAllowed(url) {
			metrics.RobotsBlocked.Inc()
			return &FetchResult{URL: url, Status: StatusBlocked, Error: ErrBlockedByPolicy.Error()}
		}
		// Refresh rules in the background so later requests to this
		// domain are enforced; never gates this request.
		go r.robots.Preload(context.Background(), url)
	}

	var result *FetchResult
	switch {
	case opts.ForceBrowser || requiresRendering(url):
		logger.Info().Str("url", url).Msg("routing straight to rendered backend")
		result = r.invoke(ctx, url, r.renderedFetch)
	default:
		logger.Debug().Str("url", url).Msg("trying lightweight backend")
		result = r.invoke(ctx, url, r.lightweight.Fetch)

		if opts.AllowFallback && shouldFallback(result) {
			logger.Info().Str("url", url).Msg("lightweight result unusable, falling back to rendered backend")
			metrics.Fallbacks.Inc()
			rendered := r.invoke(ctx, url, r.renderedFetch)
			rendered.FallbackFrom = MethodLightweight
			result = rendered
		}
	}

	metrics.Scrapes.WithLabelValues(string(result.Method), string(result.Status)).Inc()
	if !opts.ExtractContent {
		result.Text = ""
		result.Content = ""
	}
	return result
}

// ScrapeMany runs the single-URL state machine for each URL under a
// counting admission gate of size maxConcurrent. Results come back in
// input order regardless of completion order; one URL failing, or its
// backend panicking, never disturbs its siblings.
func (r *Router) ScrapeMany(ctx context.Context, urls []string, maxConcurrent int, opts ScrapeOptions) []*FetchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultBatchConcurrency
	}
	results := make([]*FetchResult, len(urls))

	pool := newWorkerPool(ctx, maxConcurrent, len(urls))
	for i, url := range urls {
		i, url := i, url
		err := pool.Submit(func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Str("url", url).Interface("panic", rec).Msg("scrape panicked")
					results[i] = errorResult(url, "", fmt.Errorf("scrape panicked: %v", rec))
				}
			}()
			results[i] = r.Scrape(ctx, url, opts)
		})
		if err != nil {
			results[i] = errorResult(url, "", err)
		}
	}
	pool.Close()

	// Submit can be skipped for trailing URLs when the context dies
	// mid-batch; those slots still get a result.
	for i, res := range results {
		if res == nil {
			results[i] = errorResult(urls[i], "", ctx.Err())
		}
	}
	return results
}

// invoke bounds one backend call with the per-request timeout and folds
// every failure mode into a result.
func (r *Router) invoke(ctx context.Context, url string, fetch func(context.Context, string) (*FetchResult, error)) *FetchResult {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := fetch(reqCtx, url)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timeout: %w", err)
		}
		return errorResult(url, "", err)
	}
	if result == nil {
		return errorResult(url, "", fmt.Errorf("backend returned no result"))
	}
	return result
}

// renderedFetch adapts the rendered backend's Fetch for invoke.
func (r *Router) renderedFetch(ctx context.Context, url string) (*FetchResult, error) {
	return r.rendered.Fetch(ctx, url)
}
