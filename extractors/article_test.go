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

const articlePage = `<html><head>
	<title>Fallback Title</title>
	<meta property="og:title" content="How Herons Hunt">
	<meta name="author" content="R. Okafor">
	<meta property="article:published_time" content="2024-03-14T09:00:00Z">
	<meta name="description" content="A field study of heron feeding behavior.">
	<meta name="keywords" content="birds, wetlands">
	<meta property="article:tag" content="field notes">
</head><body>
	<nav>Home / Science</nav>
	<article>
		<h1>How Herons Hunt</h1>
		<p>Herons stand motionless at the water's edge for minutes at a time, striking only when prey drifts within reach.</p>
		<p>Their patience is not passive. Researchers tracked head movements and found constant micro-adjustments to parallax.</p>
		<div class="share-buttons">Share this</div>
		<figure><img src="/img/heron.jpg" alt="A grey heron"><figcaption>A grey heron at dawn</figcaption></figure>
		<p>See the <a href="/methods">full methods</a> for details.</p>
	</article>
	<footer>Copyright</footer>
</body></html>`

func TestExtractArticleMetadata(t *testing.T) {
	article, err := ExtractArticle(articlePage, "https://example.com/herons")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}

	if article.Title != "How Herons Hunt" {
		t.Fatalf("title = %q", article.Title)
	}
	if article.Author != "R. Okafor" {
		t.Fatalf("author = %q", article.Author)
	}
	if article.Date != "2024-03-14T09:00:00Z" {
		t.Fatalf("date = %q", article.Date)
	}
	if article.Description != "A field study of heron feeding behavior." {
		t.Fatalf("description = %q", article.Description)
	}
	want := []string{"birds", "wetlands", "field notes"}
	if len(article.Tags) != len(want) {
		t.Fatalf("tags = %v", article.Tags)
	}
	for i, tag := range want {
		if article.Tags[i] != tag {
			t.Fatalf("tags[%d] = %q, want %q", i, article.Tags[i], tag)
		}
	}
}

func TestExtractArticleContent(t *testing.T) {
	article, err := ExtractArticle(articlePage, "https://example.com/herons")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}

	if !strings.Contains(article.Content, "motionless at the water's edge") {
		t.Fatalf("content missing prose: %q", article.Content)
	}
	if strings.Contains(article.Content, "Share this") || strings.Contains(article.Content, "Home / Science") {
		t.Fatalf("boilerplate leaked into content: %q", article.Content)
	}
	if article.WordCount != len(strings.Fields(article.Content)) {
		t.Fatal("word count disagrees with content")
	}
	if !strings.Contains(article.Markdown, "# How Herons Hunt") {
		t.Fatalf("markdown missing heading: %q", article.Markdown)
	}
}

func TestExtractArticleImagesAndLinks(t *testing.T) {
	article, err := ExtractArticle(articlePage, "https://example.com/herons")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}

	if len(article.Images) != 1 {
		t.Fatalf("images = %+v", article.Images)
	}
	img := article.Images[0]
	if img.URL != "https://example.com/img/heron.jpg" {
		t.Fatalf("image URL not resolved: %q", img.URL)
	}
	if img.Alt != "A grey heron" || img.Caption != "A grey heron at dawn" {
		t.Fatalf("image = %+v", img)
	}

	if len(article.Links) != 1 {
		t.Fatalf("links = %+v", article.Links)
	}
	if article.Links[0].URL != "https://example.com/methods" || article.Links[0].Text != "full methods" {
		t.Fatalf("link = %+v", article.Links[0])
	}
}

func TestExtractArticleTitleFallsBackToHeading(t *testing.T) {
	article, err := ExtractArticle("<html><body><main><h1>Plain Heading</h1></main></body></html>", "https://example.com/")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}
	if article.Title != "Plain Heading" {
		t.Fatalf("title = %q", article.Title)
	}
}

func TestMakeExcerpt(t *testing.T) {
	short := "Short enough."
	if got := makeExcerpt(short, 300); got != short {
		t.Fatalf("short content changed: %q", got)
	}

	// A sentence boundary inside the last 30% of the window wins.
	sentence := strings.Repeat("a", 260) + ". " + strings.Repeat("b", 200)
	got := makeExcerpt(sentence, 300)
	if !strings.HasSuffix(got, ".") || len(got) != 261 {
		t.Fatalf("excerpt = %d chars ending %q", len(got), got[len(got)-5:])
	}

	// No usable boundary: hard cut with ellipsis.
	run := strings.Repeat("c", 400)
	got = makeExcerpt(run, 300)
	if !strings.HasSuffix(got, "...") || len(got) != 303 {
		t.Fatalf("excerpt = %d chars", len(got))
	}
}
