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
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Price describes a product's price as displayed on the page.
type Price struct {
	Current  string  `json:"current"`
	Original string  `json:"original,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Symbol   string  `json:"symbol,omitempty"`
	// Amount is Current parsed as a number, 0 when unparsable.
	Amount   float64 `json:"amount,omitempty"`
}

// Availability describes whether a product can currently be bought.
type Availability struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	InStock bool   `json:"in_stock"`
}

// Rating is an aggregate review score.
type Rating struct {
	Value string `json:"value,omitempty"`
	Max   string `json:"max"`
	Count string `json:"count,omitempty"`
}

// Spec is one name/value row of a product's specification table.
type Spec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Breadcrumb is one step of the category path to a product.
type Breadcrumb struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Product is the result of extracting an e-commerce product page.
type Product struct {
	Name           string         `json:"name"`
	Price          Price          `json:"price"`
	Availability   Availability   `json:"availability"`
	Description    string         `json:"description,omitempty"`
	Images         []Image        `json:"images,omitempty"`
	Rating         Rating         `json:"rating"`
	ReviewsCount   string         `json:"reviews_count,omitempty"`
	Specifications []Spec         `json:"specifications,omitempty"`
	Breadcrumbs    []Breadcrumb   `json:"breadcrumbs,omitempty"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
}

const (
	maxProductImages  = 10
	maxProductSpecs   = 20
	maxDescriptionLen = 5000
)

// Selector lists ordered by reliability: schema.org microdata first, then
// the class names common storefronts use, then site-specific IDs.
var (
	productNameSelectors = []string{
		"[itemprop='name']",
		".product-title", ".product-name", ".product-name-text",
		"h1.product-name", "#productTitle", ".title",
	}
	productPriceSelectors = []string{
		"[itemprop='price']",
		".price", ".product-price", ".current-price", ".sale-price",
		"#priceblock_ourprice", "#priceblock_dealprice", ".a-price-whole",
	}
	productAvailabilitySelectors = []string{
		"[itemprop='availability']",
		".stock", ".availability", ".product-availability",
		"#availability", ".in-stock", ".out-of-stock",
	}
)

var (
	inStockKeywords    = []string{"in stock", "available", "add to cart", "buy now"}
	outOfStockKeywords = []string{"out of stock", "unavailable", "sold out"}

	currencySymbolRe = regexp.MustCompile(`[$£€¥₹]`)
	priceAmountRe    = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	numberRe         = regexp.MustCompile(`\d+\.?\d*`)
)

// ExtractProduct pulls product fields out of an e-commerce page.
func ExtractProduct(html, pageURL string) (*Product, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)

	return &Product{
		Name:           productName(doc),
		Price:          productPrice(doc),
		Availability:   productAvailability(doc),
		Description:    productDescription(doc),
		Images:         productImages(doc, base),
		Rating:         productRating(doc),
		ReviewsCount:   productReviewsCount(doc),
		Specifications: productSpecs(doc),
		Breadcrumbs:    productBreadcrumbs(doc, base),
		StructuredData: structuredData(doc),
	}, nil
}

func productName(doc *goquery.Document) string {
	for _, sel := range productNameSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if name := contentOrText(s); name != "" {
				return collapseWhitespace(name)
			}
		}
	}
	if h1 := firstText(doc, "h1"); h1 != "" {
		return h1
	}
	return metaContent(doc, "meta[property='og:title']")
}

func productPrice(doc *goquery.Document) Price {
	price := Price{
		Current:  metaContent(doc, "meta[itemprop='price']"),
		Currency: metaContent(doc, "meta[itemprop='priceCurrency']"),
	}
	if price.Current == "" {
		for _, sel := range productPriceSelectors {
			if s := doc.Find(sel).First(); s.Length() > 0 {
				if v := contentOrText(s); v != "" {
					price.Current = v
					break
				}
			}
		}
	}
	if s := doc.Find(".original-price, .was-price, .list-price, .compare-price").First(); s.Length() > 0 {
		price.Original = contentOrText(s)
	}
	if price.Current != "" {
		price.Symbol = currencySymbolRe.FindString(price.Current)
		if raw := priceAmountRe.FindString(price.Current); raw != "" {
			if amount, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
				price.Amount = amount
			}
		}
	}
	return price
}

func productAvailability(doc *goquery.Document) Availability {
	var availability Availability
	for _, sel := range productAvailabilitySelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		text := strings.ToLower(collapseWhitespace(contentOrText(s)))
		if text == "" {
			continue
		}
		availability.Message = text
		switch {
		case containsAny(text, inStockKeywords):
			availability.Status = "in_stock"
			availability.InStock = true
		case containsAny(text, outOfStockKeywords):
			availability.Status = "out_of_stock"
		}
		break
	}
	return availability
}

func productDescription(doc *goquery.Document) string {
	desc := metaContent(doc, "meta[itemprop='description']", "meta[name='description']")
	if desc == "" {
		desc = collapseWhitespace(firstText(doc,
			"#productDescription", "[class*='description'], [class*='details']"))
	}
	return truncateRunes(desc, maxDescriptionLen)
}

func productImages(doc *goquery.Document, base *url.URL) []Image {
	var images []Image
	doc.Find("meta[property='og:image']").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok && v != "" {
			images = append(images, Image{URL: v})
		}
	})
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		alt, _ := s.Attr("alt")
		class, _ := s.Attr("class")
		if !containsAny(strings.ToLower(alt+" "+class), []string{"product", "item", "main", "zoom"}) {
			return true
		}
		src, _ := s.Attr("src")
		if resolved := resolveURL(base, src); resolved != "" {
			images = append(images, Image{URL: resolved, Alt: alt})
		}
		return len(images) < maxProductImages
	})
	if len(images) > maxProductImages {
		images = images[:maxProductImages]
	}
	return images
}

func productRating(doc *goquery.Document) Rating {
	rating := Rating{Max: "5"}
	if s := doc.Find("[itemprop='ratingValue']").First(); s.Length() > 0 {
		rating.Value = contentOrText(s)
	}
	if rating.Value == "" {
		if s := doc.Find(".rating, .stars, .review-score").First(); s.Length() > 0 {
			rating.Value = numberRe.FindString(s.Text())
		}
	}
	if s := doc.Find("[itemprop='ratingCount']").First(); s.Length() > 0 {
		rating.Count = contentOrText(s)
	}
	return rating
}

func productReviewsCount(doc *goquery.Document) string {
	if s := doc.Find("[itemprop='reviewCount']").First(); s.Length() > 0 {
		return numberRe.FindString(contentOrText(s))
	}
	if s := doc.Find("[class*='review-count'], [class*='reviews-count']").First(); s.Length() > 0 {
		return numberRe.FindString(s.Text())
	}
	return ""
}

func productSpecs(doc *goquery.Document) []Spec {
	var specs []Spec
	doc.Find("table[class*='spec'], table[class*='detail'], table[class*='tech']").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() >= 2 {
				specs = append(specs, Spec{
					Name:  collapseWhitespace(cells.Eq(0).Text()),
					Value: collapseWhitespace(cells.Eq(1).Text()),
				})
			}
		})
	})
	doc.Find("[itemprop='additionalProperty']").Each(func(_ int, s *goquery.Selection) {
		name := collapseWhitespace(s.Find("[itemprop='name']").First().Text())
		value := collapseWhitespace(s.Find("[itemprop='value']").First().Text())
		if name != "" && value != "" {
			specs = append(specs, Spec{Name: name, Value: value})
		}
	})
	if len(specs) > maxProductSpecs {
		specs = specs[:maxProductSpecs]
	}
	return specs
}

func productBreadcrumbs(doc *goquery.Document, base *url.URL) []Breadcrumb {
	container := doc.Find("nav[aria-label*='readcrumb'], [class*='breadcrumb']").First()
	if container.Length() == 0 {
		return nil
	}
	anchors := container.Find("a[itemprop='item']")
	if anchors.Length() == 0 {
		anchors = container.Find("a[href]")
	}
	var crumbs []Breadcrumb
	anchors.Each(func(_ int, s *goquery.Selection) {
		name := collapseWhitespace(s.Text())
		if name == "" {
			return
		}
		href, _ := s.Attr("href")
		crumbs = append(crumbs, Breadcrumb{Name: name, URL: resolveURL(base, href)})
	})
	return crumbs
}

// structuredData merges every JSON-LD block on the page into one map.
// Arrays contribute their first object. Unparsable blocks are skipped.
func structuredData(doc *goquery.Document) map[string]any {
	data := map[string]any{}
	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return
		}
		switch v := parsed.(type) {
		case map[string]any:
			for k, val := range v {
				data[k] = val
			}
		case []any:
			if len(v) > 0 {
				if first, ok := v[0].(map[string]any); ok {
					for k, val := range first {
						data[k] = val
					}
				}
			}
		}
	})
	if len(data) == 0 {
		return nil
	}
	return data
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
