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
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/agentwork/pagehound/internal/metrics"
)

// renderedCacheNamespace keeps rendered results apart from lightweight
// ones under the same URL.
const renderedCacheNamespace = "rendered"

const defaultRenderTimeout = 30 * time.Second

// RenderWaits controls how long the renderer pauses for client-side
// hydration and lazy loading.
type RenderWaits struct {
	InitialWaitMs int
	ScrollWaitMs  int
	FinalWaitMs   int
}

// DefaultRenderWaits gives JavaScript frameworks enough time to hydrate
// and lazy-loaded content time to arrive.
func DefaultRenderWaits() RenderWaits {
	return RenderWaits{InitialWaitMs: 1500, ScrollWaitMs: 2000, FinalWaitMs: 1000}
}

// ChromedpBackend is the rendered fetch backend: full page loads through
// headless Chrome. Slower than the lightweight backend but sees
// script-generated content. One exec allocator is shared across fetches;
// each fetch gets a fresh browser context.
type ChromedpBackend struct {
	cache     *CacheStore
	timeout   time.Duration
	waits     RenderWaits
	userAgent string

	initOnce    sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpBackend creates the rendered backend. cache may be nil. The
// browser allocator is initialized lazily on first use.
func NewChromedpBackend(cache *CacheStore) *ChromedpBackend {
	return &ChromedpBackend{
		cache:     cache,
		timeout:   defaultRenderTimeout,
		waits:     DefaultRenderWaits(),
		userAgent: defaultUserAgent,
	}
}

// SetWaits overrides the hydration wait configuration.
func (b *ChromedpBackend) SetWaits(waits RenderWaits) {
	b.waits = waits
}

// SetUserAgent changes the User-Agent the browser presents.
func (b *ChromedpBackend) SetUserAgent(agent string) {
	b.userAgent = agent
}

func (b *ChromedpBackend) init() {
	b.initOnce.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	})
}

// Close releases the browser allocator.
func (b *ChromedpBackend) Close() {
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

// Fetch renders a URL in headless Chrome and returns its post-JavaScript
// content. Rendering failures are folded into an error-status result.
func (b *ChromedpBackend) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if rawURL == "" {
		return nil, ErrMissingURL
	}
	key := cacheKey(renderedCacheNamespace, rawURL)
	if b.cache != nil {
		if cached, ok := b.cache.Get(key); ok {
			logger.Debug().Str("url", rawURL).Msg("rendered cache hit")
			metrics.CacheHits.Inc()
			return cached, nil
		}
		metrics.CacheMisses.Inc()
	}

	html, err := b.renderPage(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error().Str("url", rawURL).Err(err).Msg("rendered fetch failed")
		return errorResult(rawURL, MethodRendered, err), nil
	}

	result := b.buildResult(rawURL, html)
	if b.cache != nil {
		b.cache.Set(key, result)
	}
	return result, nil
}

// RunActions loads a URL and drives the action sequence against it in
// strict list order. The first failing or timed-out action aborts the
// whole sequence into a single error result; no partial application is
// reported. On success the final page state plus a screenshot is returned.
func (b *ChromedpBackend) RunActions(ctx context.Context, rawURL string, actions []Action) (*FetchResult, error) {
	if rawURL == "" {
		return nil, ErrMissingURL
	}
	b.init()

	browserCtx, cancelBrowser := chromedp.NewContext(b.allocCtx)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, b.timeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		emulation.SetUserAgentOverride(b.userAgent),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return errorResult(rawURL, MethodRendered, err), nil
	}

	var shot []byte
	for i, action := range actions {
		compiled, err := compileAction(action, &shot)
		if err != nil {
			return errorResult(rawURL, MethodRendered, &ActionError{Index: i, Action: action.Type, Err: err}), nil
		}
		actionCtx, cancelAction := context.WithTimeout(browserCtx, compiled.timeout)
		err = chromedp.Run(actionCtx, compiled.tasks)
		cancelAction()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			actionErr := &ActionError{Index: i, Action: action.Type, Err: err}
			logger.Error().Str("url", rawURL).Err(actionErr).Msg("action sequence aborted")
			return errorResult(rawURL, MethodRendered, actionErr), nil
		}
	}

	var html, finalURL string
	captureCtx, cancelCapture := context.WithTimeout(browserCtx, b.timeout)
	defer cancelCapture()
	err := chromedp.Run(captureCtx,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		return errorResult(rawURL, MethodRendered, err), nil
	}
	if finalURL == "" {
		finalURL = rawURL
	}

	result := b.buildResult(finalURL, html)
	result.Screenshot = base64.StdEncoding.EncodeToString(shot)
	return result, nil
}

// renderPage drives one full page load: navigate, wait for hydration,
// scroll to the bottom to trigger lazy loading, and capture the final DOM.
func (b *ChromedpBackend) renderPage(ctx context.Context, rawURL string) (string, error) {
	b.init()

	browserCtx, cancelBrowser := chromedp.NewContext(b.allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, b.timeout)
	defer cancelRun()

	// Propagate caller cancellation into the browser context.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelRun()
		case <-done:
		}
	}()

	var html string
	err := chromedp.Run(runCtx,
		emulation.SetUserAgentOverride(b.userAgent),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(time.Duration(b.waits.InitialWaitMs)*time.Millisecond),
		chromedp.Evaluate(`window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})`, nil),
		chromedp.Sleep(time.Duration(b.waits.ScrollWaitMs)*time.Millisecond),
		chromedp.Evaluate(`window.scrollTo({top: 0, behavior: 'smooth'})`, nil),
		chromedp.Sleep(time.Duration(b.waits.FinalWaitMs)*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// buildResult derives the structured result from rendered HTML using the
// same extraction pipeline as the lightweight backend.
func (b *ChromedpBackend) buildResult(rawURL, html string) *FetchResult {
	result := &FetchResult{
		URL:    rawURL,
		Status: StatusSuccess,
		Method: MethodRendered,
		HTML:   html,
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return result
	}
	result.Title = extractTitle(doc)
	result.Text = extractAllText(doc)
	result.Content = extractMainContentText(doc)
	result.Links = extractLinks(doc, rawURL)
	return result
}
