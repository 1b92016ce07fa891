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
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxLinks caps how many links a fetch reports.
	maxLinks = 100
	// maxLinkTextLen caps the anchor text stored per link.
	maxLinkTextLen = 100
)

// Class-name fragments that mark boilerplate containers.
var noiseClassFragments = []string{"ad", "advertisement", "sidebar", "menu", "navigation", "cookie"}

// extractAllText returns all visible text on the page with whitespace
// normalized. Navigation, headers and footers included.
func extractAllText(doc *goquery.Document) string {
	clone := goquery.CloneDocument(doc)
	clone.Find("script, style, noscript").Remove()
	return normalizeWhitespace(clone.Text())
}

// extractMainContentText returns the text of the main content area only.
//
// Strategy: strip non-visible and boilerplate elements, then prefer HTML5
// semantic containers (main, article), then containers whose class names
// suggest content, and finally fall back to body.
func extractMainContentText(doc *goquery.Document) string {
	clone := goquery.CloneDocument(doc)
	clone.Find("script, style, noscript, nav, footer, header, aside").Remove()
	clone.Find("div, section, ul").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if isNoiseClass(class) {
			s.Remove()
		}
	})

	var content *goquery.Selection
	if main := clone.Find("main").First(); main.Length() > 0 {
		content = main
	} else if article := clone.Find("article").First(); article.Length() > 0 {
		content = article
	} else if roleMain := clone.Find("[role='main']").First(); roleMain.Length() > 0 {
		content = roleMain
	} else if classed := clone.Find("[class*='content'], [class*='main'], [class*='article'], [class*='post']").First(); classed.Length() > 0 {
		content = classed
	} else {
		content = clone.Find("body")
	}
	if content.Length() == 0 {
		return normalizeWhitespace(clone.Text())
	}
	return normalizeWhitespace(content.Text())
}

// extractTitle returns the page <title> text, trimmed.
func extractTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// extractLinks collects up to maxLinks hyperlinks, resolving relative
// hrefs against the base URL and flagging same-domain targets as internal.
func extractLinks(doc *goquery.Document, baseURL string) []Link {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	baseDomain := base.Host

	var links []Link
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		resolved, err := base.Parse(href)
		if err != nil {
			return true
		}
		text := strings.TrimSpace(s.Text())
		if runes := []rune(text); len(runes) > maxLinkTextLen {
			text = string(runes[:maxLinkTextLen])
		}
		links = append(links, Link{
			Text:     text,
			URL:      resolved.String(),
			Internal: resolved.Host == baseDomain,
		})
		return len(links) < maxLinks
	})
	return links
}

// isNoiseClass reports whether a class attribute mentions one of the
// boilerplate fragments.
func isNoiseClass(class string) bool {
	if class == "" {
		return false
	}
	lower := strings.ToLower(class)
	for _, fragment := range noiseClassFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
