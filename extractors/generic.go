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

	"github.com/PuerkitoBio/goquery"
	"github.com/kennygrant/sanitize"
)

// Heading is one page heading with its anchor id, if any.
type Heading struct {
	Text string `json:"text"`
	ID   string `json:"id,omitempty"`
}

// FormField is one named input of a form.
type FormField struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	ID       string `json:"id,omitempty"`
	Required bool   `json:"required"`
}

// Form summarizes one form on the page.
type Form struct {
	Action string      `json:"action,omitempty"`
	Method string      `json:"method"`
	Fields []FormField `json:"fields,omitempty"`
}

// Table is the cell content of one table on the page.
type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// GenericPage is the result of extracting an arbitrary page: a structural
// summary rather than page-kind-specific fields.
type GenericPage struct {
	URL           string               `json:"url"`
	Title         string               `json:"title,omitempty"`
	Description   string               `json:"description,omitempty"`
	FullText      string               `json:"full_text,omitempty"`
	MainText      string               `json:"main_text,omitempty"`
	Paragraphs    []string             `json:"paragraphs,omitempty"`
	Headings      map[string][]Heading `json:"headings,omitempty"`
	InternalLinks []Link               `json:"internal_links,omitempty"`
	ExternalLinks []Link               `json:"external_links,omitempty"`
	Images        []Image              `json:"images,omitempty"`
	Meta          map[string]string    `json:"meta,omitempty"`
	Forms         []Form               `json:"forms,omitempty"`
	Tables        []Table              `json:"tables,omitempty"`
}

const (
	maxFullTextLen   = 10000
	maxMainTextLen   = 5000
	maxGenericParas  = 50
	maxGenericLinks  = 50
	maxGenericImages = 50
	maxGenericTables = 10
)

var genericRemoveSelectors = []string{
	"script", "style", "noscript", "iframe",
	"nav", "footer", "header", "aside",
	".navigation", ".menu", ".sidebar",
	".cookie", ".popup", ".modal",
	".advertisement", ".ad",
}

// ExtractGeneric summarizes any page: text, headings, links, images,
// meta tags, forms and tables.
func ExtractGeneric(html, pageURL string) (*GenericPage, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)

	cleaned := goquery.CloneDocument(doc)
	cleaned.Find(strings.Join(genericRemoveSelectors, ", ")).Remove()

	page := &GenericPage{
		URL:         pageURL,
		Title:       genericTitle(doc),
		Description: metaContent(doc, "meta[name='description']", "meta[property='og:description']", "meta[name='twitter:description']"),
		Headings:    genericHeadings(doc),
		Images:      genericImages(doc, base),
		Meta:        genericMeta(doc),
		Forms:       genericForms(doc),
		Tables:      genericTables(doc),
	}
	page.FullText = truncateRunes(collapseWhitespace(cleaned.Text()), maxFullTextLen)
	page.MainText = truncateRunes(genericMainText(cleaned), maxMainTextLen)
	page.Paragraphs = genericParagraphs(cleaned)
	page.InternalLinks, page.ExternalLinks = genericLinks(doc, base)

	// Malformed markup can defeat DOM-based extraction entirely; strip
	// tags textually as a last resort.
	if page.FullText == "" {
		page.FullText = truncateRunes(collapseWhitespace(sanitize.HTML(html)), maxFullTextLen)
	}
	return page, nil
}

func genericTitle(doc *goquery.Document) string {
	if t := metaContent(doc, "meta[property='og:title']", "meta[name='twitter:title']"); t != "" {
		return t
	}
	return firstText(doc, "title", "h1")
}

func genericMainText(cleaned *goquery.Document) string {
	main := cleaned.Find("main, article, [id*='content'], [id*='main'], [class*='content'], [class*='main']").First()
	if main.Length() == 0 {
		return collapseWhitespace(cleaned.Text())
	}
	return collapseWhitespace(main.Text())
}

func genericParagraphs(cleaned *goquery.Document) []string {
	var paragraphs []string
	cleaned.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := collapseWhitespace(s.Text()); len(t) > 20 {
			paragraphs = append(paragraphs, t)
		}
		return len(paragraphs) < maxGenericParas
	})
	return paragraphs
}

func genericHeadings(doc *goquery.Document) map[string][]Heading {
	headings := map[string][]Heading{}
	for _, tag := range []string{"h1", "h2", "h3"} {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			text := collapseWhitespace(s.Text())
			if text == "" {
				return
			}
			id, _ := s.Attr("id")
			headings[tag] = append(headings[tag], Heading{Text: text, ID: id})
		})
	}
	if len(headings) == 0 {
		return nil
	}
	return headings
}

func genericLinks(doc *goquery.Document, base *url.URL) (internal, external []Link) {
	var baseDomain string
	if base != nil {
		baseDomain = base.Host
	}
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseWhitespace(s.Text())
		href, _ := s.Attr("href")
		if text == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
			return true
		}
		resolvedRaw := resolveURL(base, href)
		if resolvedRaw == "" {
			return true
		}
		resolved, err := url.Parse(resolvedRaw)
		if err != nil {
			return true
		}
		link := Link{Text: truncateRunes(text, maxLinkTextRunes), URL: resolved.String()}
		if baseDomain != "" && resolved.Host == baseDomain {
			internal = append(internal, link)
		} else {
			external = append(external, link)
		}
		return len(internal) < maxGenericLinks && len(external) < maxGenericLinks
	})
	return internal, external
}

func genericImages(doc *goquery.Document, base *url.URL) []Image {
	var images []Image
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		resolved := resolveURL(base, src)
		if resolved == "" {
			return true
		}
		alt, _ := s.Attr("alt")
		images = append(images, Image{URL: resolved, Alt: alt})
		return len(images) < maxGenericImages
	})
	return images
}

// genericMeta collects OpenGraph, Twitter Card and a few standard meta
// tags, plus the canonical URL.
func genericMeta(doc *goquery.Document) map[string]string {
	meta := map[string]string{}
	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if strings.HasPrefix(prop, "og:") {
			meta[prop], _ = s.Attr("content")
		}
	})
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		switch {
		case strings.HasPrefix(name, "twitter:"):
			meta[name], _ = s.Attr("content")
		case name == "keywords" || name == "author" || name == "robots" || name == "viewport":
			meta[name], _ = s.Attr("content")
		}
	})
	if canonical, ok := doc.Find("link[rel='canonical']").First().Attr("href"); ok {
		meta["canonical_url"] = canonical
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func genericForms(doc *goquery.Document) []Form {
	var forms []Form
	doc.Find("form").Each(func(_ int, formSel *goquery.Selection) {
		action, _ := formSel.Attr("action")
		method, _ := formSel.Attr("method")
		if method == "" {
			method = "GET"
		}
		form := Form{Action: action, Method: strings.ToUpper(method)}
		formSel.Find("input, select, textarea").Each(func(_ int, input *goquery.Selection) {
			field := FormField{Type: "text"}
			if t, ok := input.Attr("type"); ok {
				field.Type = t
			}
			field.Name, _ = input.Attr("name")
			field.ID, _ = input.Attr("id")
			_, field.Required = input.Attr("required")
			if field.Name != "" || field.ID != "" {
				form.Fields = append(form.Fields, field)
			}
		})
		forms = append(forms, form)
	})
	return forms
}

func genericTables(doc *goquery.Document) []Table {
	var tables []Table
	doc.Find("table").EachWithBreak(func(_ int, tableSel *goquery.Selection) bool {
		var table Table
		tableSel.Find("th").Each(func(_ int, th *goquery.Selection) {
			table.Headers = append(table.Headers, collapseWhitespace(th.Text()))
		})
		tableSel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, collapseWhitespace(td.Text()))
			})
			if len(cells) > 0 {
				table.Rows = append(table.Rows, cells)
			}
		})
		if len(table.Headers) > 0 || len(table.Rows) > 0 {
			tables = append(tables, table)
		}
		return len(tables) < maxGenericTables
	})
	return tables
}
