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

import "strings"

// Markers that indicate a page is built on a client-side framework and may
// render most of its content with JavaScript.
var jsFrameworkIndicators = []string{
	"react", "vue", "angular", "nextjs", "nuxt",
	"__next", "nuxt-root", "ng-app", "data-reactroot",
	"_gatsby", "gatsby",
}

// Domains known to serve nothing useful without script execution; the
// router sends these straight to the rendered backend.
var jsRequiredDomains = []string{
	"twitter.com", "x.com", "facebook.com", "instagram.com",
	"linkedin.com", "youtube.com", "tiktok.com", "reddit.com",
}

// Human-readable phrases a page shows when it wants JavaScript enabled.
var jsRequiredPhrases = []string{
	"enable javascript",
	"javascript must be enabled",
	"please enable javascript",
	"this site requires javascript",
}

// Error substrings that mark a failure as transient and therefore worth
// retrying on the rendered backend.
var transientErrorMarkers = []string{"timeout", "connection", "redirect"}

const (
	// minHTMLLength is the raw-content floor below which a lightweight
	// result is considered empty enough to retry rendered.
	minHTMLLength = 1000
	// minContentLength is the stricter floor applied to extracted text
	// when a framework marker is present.
	minContentLength = 500
)

// requiresRendering reports whether the URL belongs to a domain on the
// known JavaScript-required list.
func requiresRendering(url string) bool {
	lower := strings.ToLower(url)
	for _, domain := range jsRequiredDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// isTransientError reports whether an error message carries one of the
// transient markers. Non-transient failures (404s and the like) are final
// and never retried on the rendered backend.
func isTransientError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range transientErrorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// shouldFallback decides, from a lightweight result alone, whether the
// router should discard it and retry with the rendered backend. Pure
// function over the result; no I/O.
func shouldFallback(result *FetchResult) bool {
	if result == nil {
		return false
	}
	if result.Error != "" {
		return isTransientError(result.Error)
	}

	if len(result.HTML) < minHTMLLength {
		return true
	}

	htmlLower := strings.ToLower(result.HTML)
	for _, indicator := range jsFrameworkIndicators {
		if strings.Contains(htmlLower, indicator) {
			// A framework marker alone is not enough; the page may still
			// have server-rendered the content.
			if len(result.Content) < minContentLength {
				return true
			}
			break
		}
	}

	for _, phrase := range jsRequiredPhrases {
		if strings.Contains(htmlLower, phrase) {
			return true
		}
	}
	return false
}
