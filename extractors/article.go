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
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
)

// Article is the result of extracting an article or blog-post page.
type Article struct {
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Date        string   `json:"date,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Content     string   `json:"content"`
	Markdown    string   `json:"markdown,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	WordCount   int      `json:"word_count"`
	Images      []Image  `json:"images,omitempty"`
	Links       []Link   `json:"links,omitempty"`
}

const (
	maxArticleImages = 10
	maxArticleLinks  = 20
	maxExcerptLen    = 300
)

// Containers most likely to hold the article body, most specific first.
var articleContentSelectors = []string{
	"article",
	"[role='main']",
	".post-content",
	".article-content",
	".entry-content",
	".content",
	"#content",
	".post-body",
	".article-body",
	"main",
}

// Boilerplate stripped from the article body before text extraction.
var articleRemoveSelectors = []string{
	"nav", "footer", "header", "aside",
	".sidebar", ".menu", ".navigation",
	".related-posts", ".comments",
	".share-buttons", ".social-share",
	"script", "style", "noscript",
	".ad", ".advertisement", ".sponsored",
	".cookie-notice", ".popup", ".modal",
}

// ExtractArticle pulls article fields out of a page: metadata from the
// head's meta precedence chains, prose from the best content container
// with boilerplate stripped.
func ExtractArticle(html, pageURL string) (*Article, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)

	cleaned := goquery.CloneDocument(doc)
	cleaned.Find(strings.Join(articleRemoveSelectors, ", ")).Remove()
	content := findArticleContent(cleaned)

	text := articleText(content)
	article := &Article{
		Title:       articleTitle(doc),
		Author:      articleAuthor(doc),
		Date:        articleDate(doc),
		Description: metaContent(doc, "meta[name='description']", "meta[property='og:description']"),
		Tags:        articleTags(doc),
		Content:     text,
		Markdown:    articleMarkdown(content),
		Excerpt:     makeExcerpt(text, maxExcerptLen),
		WordCount:   len(strings.Fields(text)),
		Images:      articleImages(content, base),
		Links:       articleLinks(content, base),
	}
	return article, nil
}

// findArticleContent returns the first matching content container, or
// body when no selector matches.
func findArticleContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range articleContentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Find("body")
}

func articleTitle(doc *goquery.Document) string {
	if t := metaContent(doc, "meta[property='og:title']", "meta[name='twitter:title']"); t != "" {
		return t
	}
	return firstText(doc, "h1", "title")
}

func articleAuthor(doc *goquery.Document) string {
	if a := metaContent(doc, "meta[name='author']", "meta[property='article:author']"); a != "" {
		return a
	}
	return collapseWhitespace(firstText(doc, "[class*='author']"))
}

func articleDate(doc *goquery.Document) string {
	if d := metaContent(doc,
		"meta[property='article:published_time']",
		"meta[name='date']",
		"meta[name='publish_date']"); d != "" {
		return d
	}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(dt)
	}
	return firstText(doc, "[class*='published'], [class*='date']")
}

func articleTags(doc *goquery.Document) []string {
	var tags []string
	if keywords := metaContent(doc, "meta[name='keywords']"); keywords != "" {
		for _, t := range strings.Split(keywords, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	doc.Find("meta[property='article:tag']").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
			tags = append(tags, strings.TrimSpace(v))
		}
	})
	return tags
}

// articleText joins the block-level fragments of the content region,
// dropping fragments too short to be prose.
func articleText(content *goquery.Selection) string {
	var blocks []string
	content.Find("p, h1, h2, h3, h4, h5, h6, li").Each(func(_ int, s *goquery.Selection) {
		if t := collapseWhitespace(s.Text()); len(t) > 20 {
			blocks = append(blocks, t)
		}
	})
	return strings.Join(blocks, "\n\n")
}

// articleMarkdown renders the content region as markdown.
func articleMarkdown(content *goquery.Selection) string {
	html, err := goquery.OuterHtml(content)
	if err != nil {
		return ""
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	markdown, err := conv.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markdown)
}

// makeExcerpt cuts content to max characters, preferring a sentence
// boundary in the last 30% of the window.
func makeExcerpt(content string, max int) string {
	if len(content) <= max {
		return content
	}
	excerpt := content[:max]
	if period := strings.LastIndex(excerpt, "."); period > max*7/10 {
		return excerpt[:period+1]
	}
	return excerpt + "..."
}

func articleImages(content *goquery.Selection, base *url.URL) []Image {
	var images []Image
	content.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		resolved := resolveURL(base, src)
		if resolved == "" {
			return true
		}
		img := Image{URL: resolved}
		img.Alt, _ = s.Attr("alt")
		if figure := s.Closest("figure"); figure.Length() > 0 {
			img.Caption = collapseWhitespace(figure.Find("figcaption").First().Text())
		}
		images = append(images, img)
		return len(images) < maxArticleImages
	})
	return images
}

func articleLinks(content *goquery.Selection, base *url.URL) []Link {
	var links []Link
	content.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseWhitespace(s.Text())
		if text == "" {
			return true
		}
		href, _ := s.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" {
			return true
		}
		links = append(links, Link{Text: truncateRunes(text, maxLinkTextRunes), URL: resolved})
		return len(links) < maxArticleLinks
	})
	return links
}
