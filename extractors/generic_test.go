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

package extractors

import (
	"strings"
	"testing"
)

const genericPage = `<html><head>
	<title>City Transit Report</title>
	<meta name="description" content="Quarterly ridership figures.">
	<meta property="og:type" content="website">
	<meta name="twitter:card" content="summary">
	<meta name="author" content="Transit Authority">
	<link rel="canonical" href="https://city.example.org/transit">
</head><body>
	<nav><a href="/home">Home</a></nav>
	<main>
		<h1 id="top">City Transit Report</h1>
		<h2>Ridership</h2>
		<p>Weekday ridership recovered to ninety percent of pre-closure levels across all lines.</p>
		<p>ok</p>
		<a href="/q3">Previous quarter</a>
		<a href="https://transit.example.net/standards">Industry standards</a>
		<a href="javascript:void(0)">noop</a>
	</main>
	<img src="/charts/ridership.png" alt="Ridership chart">
	<form action="/subscribe" method="post">
		<input type="email" name="email" required>
		<input type="submit" value="Go">
	</form>
	<table>
		<tr><th>Line</th><th>Riders</th></tr>
		<tr><td>Red</td><td>61,000</td></tr>
	</table>
</body></html>`

func TestExtractGenericSummary(t *testing.T) {
	page, err := ExtractGeneric(genericPage, "https://city.example.org/transit")
	if err != nil {
		t.Fatalf("ExtractGeneric: %v", err)
	}

	if page.Title != "City Transit Report" {
		t.Fatalf("title = %q", page.Title)
	}
	if page.Description != "Quarterly ridership figures." {
		t.Fatalf("description = %q", page.Description)
	}
	if !strings.Contains(page.MainText, "Weekday ridership recovered") {
		t.Fatalf("main text = %q", page.MainText)
	}
	// Fragments under 20 characters are not paragraphs.
	if len(page.Paragraphs) != 1 {
		t.Fatalf("paragraphs = %+v", page.Paragraphs)
	}
}

func TestExtractGenericHeadings(t *testing.T) {
	page, err := ExtractGeneric(genericPage, "https://city.example.org/transit")
	if err != nil {
		t.Fatalf("ExtractGeneric: %v", err)
	}

	if len(page.Headings["h1"]) != 1 || page.Headings["h1"][0].ID != "top" {
		t.Fatalf("h1 = %+v", page.Headings["h1"])
	}
	if len(page.Headings["h2"]) != 1 || page.Headings["h2"][0].Text != "Ridership" {
		t.Fatalf("h2 = %+v", page.Headings["h2"])
	}
}

func TestExtractGenericLinksSplitByDomain(t *testing.T) {
	page, err := ExtractGeneric(genericPage, "https://city.example.org/transit")
	if err != nil {
		t.Fatalf("ExtractGeneric: %v", err)
	}

	// /home and /q3 are internal; javascript: links are dropped.
	if len(page.InternalLinks) != 2 {
		t.Fatalf("internal = %+v", page.InternalLinks)
	}
	if len(page.ExternalLinks) != 1 || page.ExternalLinks[0].URL != "https://transit.example.net/standards" {
		t.Fatalf("external = %+v", page.ExternalLinks)
	}
}

func TestExtractGenericMetaFormsTables(t *testing.T) {
	page, err := ExtractGeneric(genericPage, "https://city.example.org/transit")
	if err != nil {
		t.Fatalf("ExtractGeneric: %v", err)
	}

	if page.Meta["og:type"] != "website" || page.Meta["twitter:card"] != "summary" {
		t.Fatalf("meta = %+v", page.Meta)
	}
	if page.Meta["author"] != "Transit Authority" {
		t.Fatalf("meta author = %q", page.Meta["author"])
	}
	if page.Meta["canonical_url"] != "https://city.example.org/transit" {
		t.Fatalf("canonical = %q", page.Meta["canonical_url"])
	}

	if len(page.Forms) != 1 {
		t.Fatalf("forms = %+v", page.Forms)
	}
	form := page.Forms[0]
	if form.Method != "POST" || form.Action != "/subscribe" {
		t.Fatalf("form = %+v", form)
	}
	if len(form.Fields) != 1 || form.Fields[0].Name != "email" || !form.Fields[0].Required {
		t.Fatalf("fields = %+v", form.Fields)
	}

	if len(page.Tables) != 1 {
		t.Fatalf("tables = %+v", page.Tables)
	}
	table := page.Tables[0]
	if len(table.Headers) != 2 || table.Headers[0] != "Line" {
		t.Fatalf("headers = %+v", table.Headers)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "61,000" {
		t.Fatalf("rows = %+v", table.Rows)
	}
}

func TestExtractGenericImages(t *testing.T) {
	page, err := ExtractGeneric(genericPage, "https://city.example.org/transit")
	if err != nil {
		t.Fatalf("ExtractGeneric: %v", err)
	}
	if len(page.Images) != 1 || page.Images[0].URL != "https://city.example.org/charts/ridership.png" {
		t.Fatalf("images = %+v", page.Images)
	}
}
