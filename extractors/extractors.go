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

// Package extractors turns raw page HTML into typed, page-kind-specific
// structures. Every extractor is a pure function over an HTML string and
// its source URL; none of them perform I/O.
package extractors

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Image is one image found in extracted content.
type Image struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Link is one hyperlink found in extracted content.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

const maxLinkTextRunes = 100

func parseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// metaContent returns the first non-empty content attribute among the
// given selectors, in precedence order.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// firstText returns the trimmed text of the first matching element among
// the given selectors.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// contentOrText prefers a content attribute (meta/itemprop elements) over
// the element's own text.
func contentOrText(s *goquery.Selection) string {
	if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.Text())
}

// resolveURL resolves raw against base; unparsable hrefs come back empty.
func resolveURL(base *url.URL, raw string) string {
	if base == nil {
		return raw
	}
	resolved, err := base.Parse(raw)
	if err != nil {
		return ""
	}
	return resolved.String()
}

func truncateRunes(s string, max int) string {
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max])
	}
	return s
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
