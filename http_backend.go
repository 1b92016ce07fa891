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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/agentwork/pagehound/internal/metrics"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	// defaultMaxBodySize caps how much of a response body is read.
	defaultMaxBodySize = 10 * 1024 * 1024

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// HTTPBackend is the lightweight fetch backend: plain HTTP retrieval with
// no script execution. It consults the shared cache before hitting the
// network and waits on the rate limiter for its domain.
type HTTPBackend struct {
	client      *http.Client
	cache       *CacheStore
	limiter     *RateLimiter
	userAgent   string
	maxBodySize int
}

// NewHTTPBackend creates the lightweight backend. cache and limiter may be
// nil, in which case the corresponding step is skipped.
func NewHTTPBackend(cache *CacheStore, limiter *RateLimiter) *HTTPBackend {
	return &HTTPBackend{
		client:      &http.Client{Timeout: defaultHTTPTimeout},
		cache:       cache,
		limiter:     limiter,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
	}
}

// SetClient replaces the HTTP client. Used by tests to install a mock
// transport.
func (b *HTTPBackend) SetClient(client *http.Client) {
	b.client = client
}

// SetUserAgent changes the User-Agent header sent with each request.
func (b *HTTPBackend) SetUserAgent(agent string) {
	b.userAgent = agent
}

// Fetch retrieves a URL over plain HTTP. Network and HTTP-level failures
// are folded into an error-status result; a non-nil error is only returned
// for unusable input or a cancelled context.
func (b *HTTPBackend) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if rawURL == "" {
		return nil, ErrMissingURL
	}
	key := cacheKey("", rawURL)
	if b.cache != nil {
		if cached, ok := b.cache.Get(key); ok {
			logger.Debug().Str("url", rawURL).Msg("cache hit")
			metrics.CacheHits.Inc()
			return cached, nil
		}
		metrics.CacheMisses.Inc()
	}
	if b.limiter != nil {
		if err := b.limiter.Await(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error().Str("url", rawURL).Err(err).Msg("http fetch failed")
		return errorResult(rawURL, MethodLightweight, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorResult(rawURL, MethodLightweight,
			fmt.Errorf("HTTP error %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(b.maxBodySize)))
	if err != nil {
		return errorResult(rawURL, MethodLightweight, err), nil
	}
	html := decodeHTMLBody(body, resp.Header.Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return errorResult(rawURL, MethodLightweight, err), nil
	}

	result := &FetchResult{
		URL:     rawURL,
		Status:  StatusSuccess,
		Method:  MethodLightweight,
		Title:   extractTitle(doc),
		HTML:    html,
		Text:    extractAllText(doc),
		Content: extractMainContentText(doc),
		Links:   extractLinks(doc, rawURL),
	}

	if b.cache != nil {
		b.cache.Set(key, result)
	}
	return result, nil
}

// decodeHTMLBody converts a response body to UTF-8. A charset declared in
// the Content-Type header wins; otherwise the body bytes are sniffed with
// chardet, matching how browsers treat pages without an explicit charset.
func decodeHTMLBody(body []byte, contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "charset=") {
		if r, err := charset.NewReader(bytes.NewReader(body), contentType); err == nil {
			if decoded, err := io.ReadAll(r); err == nil {
				return string(decoded)
			}
		}
		return string(body)
	}

	detected, err := chardet.NewHtmlDetector().DetectBest(body)
	if err == nil && detected.Charset != "" && !strings.EqualFold(detected.Charset, "UTF-8") {
		if r, err := charset.NewReaderLabel(strings.ToLower(detected.Charset), bytes.NewReader(body)); err == nil {
			if decoded, err := io.ReadAll(r); err == nil {
				return string(decoded)
			}
		}
	}
	return string(body)
}
