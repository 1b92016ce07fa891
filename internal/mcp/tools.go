package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentwork/pagehound"
	"github.com/agentwork/pagehound/extractors"
	"github.com/agentwork/pagehound/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools registers all MCP tools with the server
func (s *MCPServer) registerTools() {
	s.logger.Printf("Registering MCP tools...")

	// Core scraping tools
	s.registerScrapeURLTool()
	s.registerScrapeArticleTool()
	s.registerScrapeProductTool()
	s.registerExtractLinksTool()
	s.registerScrapeMultipleTool()
	s.registerInteractiveScrapeTool()
	s.registerSearchAndScrapeTool()

	// Cache and rate limit tools
	s.registerClearCacheTool()
	s.registerGetCacheStatsTool()
	s.registerSetRateLimitTool()

	// Page archive tools
	s.registerSavePageTool()
	s.registerGetPageTool()
	s.registerListRecentPagesTool()
	s.registerDeletePageTool()

	// Document collection tools
	s.registerFindDocumentsTool()
	s.registerDeleteDocumentsTool()
	s.registerListCollectionsTool()
	s.registerCountDocumentsTool()

	s.logger.Printf("All MCP tools registered successfully")
}

// scrapeOptions translates tool arguments into router options. Extraction
// defaults to on when the caller leaves it unset.
func scrapeOptions(useBrowser bool, extractContent *bool) pagehound.ScrapeOptions {
	extract := true
	if extractContent != nil {
		extract = *extractContent
	}
	return pagehound.ScrapeOptions{
		ForceBrowser:   useBrowser,
		AllowFallback:  true,
		ExtractContent: extract,
	}
}

// toolResult packages a structured result as pretty-printed JSON text
// alongside the structured value itself.
func toolResult(heading string, result any) (*mcp.CallToolResult, any, error) {
	resultJSON, _ := json.MarshalIndent(result, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("%s\n%s", heading, string(resultJSON)),
			},
		},
	}, result, nil
}

// ScrapeURLArgs defines the input schema for scrape_url tool
type ScrapeURLArgs struct {
	URL string `json:"url"`
	// UseBrowser forces the headless browser backend.
	UseBrowser bool `json:"useBrowser,omitempty"`
	// ExtractContent controls text and main-content extraction. Defaults
	// to true when omitted.
	ExtractContent *bool `json:"extractContent,omitempty"`
}

// registerScrapeURLTool registers the scrape_url tool
func (s *MCPServer) registerScrapeURLTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scrape_url",
		Description: "Scrapes a URL, automatically choosing between a lightweight HTTP fetch and headless browser rendering",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScrapeURLArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: scrape_url for URL: %s", args.URL)

		result := s.router.Scrape(ctx, args.URL, scrapeOptions(args.UseBrowser, args.ExtractContent))
		return toolResult(fmt.Sprintf("Scrape result for %s:", args.URL), result)
	})
}

// ScrapeArticleArgs defines the input schema for scrape_article tool
type ScrapeArticleArgs struct {
	URL string `json:"url"`
}

// ScrapeArticleResult defines the output schema for scrape_article tool
type ScrapeArticleResult struct {
	URL     string              `json:"url"`
	Method  string              `json:"method,omitempty"`
	Article *extractors.Article `json:"article,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// registerScrapeArticleTool registers the scrape_article tool
func (s *MCPServer) registerScrapeArticleTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scrape_article",
		Description: "Scrapes a URL and extracts structured article data: title, author, date, tags, content, markdown",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScrapeArticleArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: scrape_article for URL: %s", args.URL)

		extract := false
		fetched := s.router.Scrape(ctx, args.URL, scrapeOptions(false, &extract))
		if fetched.Status != pagehound.StatusSuccess {
			return nil, ScrapeArticleResult{URL: args.URL, Error: fetched.Error}, nil
		}

		article, err := extractors.ExtractArticle(fetched.HTML, fetched.URL)
		if err != nil {
			return nil, ScrapeArticleResult{
				URL:   args.URL,
				Error: fmt.Sprintf("article extraction failed: %v", err),
			}, nil
		}

		result := ScrapeArticleResult{
			URL:     fetched.URL,
			Method:  string(fetched.Method),
			Article: article,
		}
		return toolResult(fmt.Sprintf("Article extracted from %s:", args.URL), result)
	})
}

// ScrapeProductArgs defines the input schema for scrape_product tool
type ScrapeProductArgs struct {
	URL string `json:"url"`
}

// ScrapeProductResult defines the output schema for scrape_product tool
type ScrapeProductResult struct {
	URL     string              `json:"url"`
	Method  string              `json:"method,omitempty"`
	Product *extractors.Product `json:"product,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// registerScrapeProductTool registers the scrape_product tool
func (s *MCPServer) registerScrapeProductTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scrape_product",
		Description: "Scrapes a product page with the browser backend and extracts price, availability, rating, specs and structured data",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScrapeProductArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: scrape_product for URL: %s", args.URL)

		// Product pages almost always need script execution for prices
		// and availability, so the browser backend is forced.
		extract := false
		fetched := s.router.Scrape(ctx, args.URL, scrapeOptions(true, &extract))
		if fetched.Status != pagehound.StatusSuccess {
			return nil, ScrapeProductResult{URL: args.URL, Error: fetched.Error}, nil
		}

		product, err := extractors.ExtractProduct(fetched.HTML, fetched.URL)
		if err != nil {
			return nil, ScrapeProductResult{
				URL:   args.URL,
				Error: fmt.Sprintf("product extraction failed: %v", err),
			}, nil
		}

		result := ScrapeProductResult{
			URL:     fetched.URL,
			Method:  string(fetched.Method),
			Product: product,
		}
		return toolResult(fmt.Sprintf("Product extracted from %s:", args.URL), result)
	})
}

// ExtractLinksArgs defines the input schema for extract_links tool
type ExtractLinksArgs struct {
	URL string `json:"url"`
	// FilterExternal drops links pointing off the page's domain.
	FilterExternal bool `json:"filterExternal,omitempty"`
}

// ExtractLinksResult defines the output schema for extract_links tool
type ExtractLinksResult struct {
	URL   string           `json:"url"`
	Count int              `json:"count"`
	Links []pagehound.Link `json:"links"`
	Error string           `json:"error,omitempty"`
}

// registerExtractLinksTool registers the extract_links tool
func (s *MCPServer) registerExtractLinksTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_links",
		Description: "Extracts all hyperlinks from a page, optionally filtered to same-domain links",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ExtractLinksArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: extract_links for URL: %s", args.URL)

		extract := true
		fetched := s.router.Scrape(ctx, args.URL, scrapeOptions(false, &extract))
		if fetched.Status != pagehound.StatusSuccess {
			return nil, ExtractLinksResult{URL: args.URL, Error: fetched.Error}, nil
		}

		links := fetched.Links
		if args.FilterExternal {
			internal := make([]pagehound.Link, 0, len(links))
			for _, link := range links {
				if link.Internal {
					internal = append(internal, link)
				}
			}
			links = internal
		}

		result := ExtractLinksResult{
			URL:   fetched.URL,
			Count: len(links),
			Links: links,
		}
		return toolResult(fmt.Sprintf("Found %d links on %s:", len(links), args.URL), result)
	})
}

// ScrapeMultipleArgs defines the input schema for scrape_multiple tool
type ScrapeMultipleArgs struct {
	URLs []string `json:"urls"`
	// Concurrent caps in-flight fetches. Defaults to 3.
	Concurrent int  `json:"concurrent,omitempty"`
	UseBrowser bool `json:"useBrowser,omitempty"`
}

// ScrapeMultipleResult defines the output schema for scrape_multiple tool
type ScrapeMultipleResult struct {
	Total     int                      `json:"total"`
	Succeeded int                      `json:"succeeded"`
	Results   []*pagehound.FetchResult `json:"results"`
	Error     string                   `json:"error,omitempty"`
}

// registerScrapeMultipleTool registers the scrape_multiple tool
func (s *MCPServer) registerScrapeMultipleTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scrape_multiple",
		Description: "Scrapes several URLs concurrently; per-URL failures do not abort the batch",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScrapeMultipleArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: scrape_multiple for %d URLs", len(args.URLs))

		if len(args.URLs) == 0 {
			return nil, ScrapeMultipleResult{Error: "no URLs provided"}, nil
		}
		concurrent := args.Concurrent
		if concurrent <= 0 {
			concurrent = 3
		}

		results := s.router.ScrapeMany(ctx, args.URLs, concurrent, scrapeOptions(args.UseBrowser, nil))

		succeeded := 0
		for _, r := range results {
			if r != nil && r.Status == pagehound.StatusSuccess {
				succeeded++
			}
		}
		result := ScrapeMultipleResult{
			Total:     len(results),
			Succeeded: succeeded,
			Results:   results,
		}
		return toolResult(fmt.Sprintf("Scraped %d of %d URLs:", succeeded, len(results)), result)
	})
}

// InteractiveScrapeArgs defines the input schema for interactive_scrape tool
type InteractiveScrapeArgs struct {
	URL     string             `json:"url"`
	Actions []pagehound.Action `json:"actions"`
}

// registerInteractiveScrapeTool registers the interactive_scrape tool
func (s *MCPServer) registerInteractiveScrapeTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "interactive_scrape",
		Description: "Navigates to a URL in the headless browser and performs a sequence of actions (click, fill, wait, scroll, screenshot, waitForSelector, submit) before capturing the page",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args InteractiveScrapeArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: interactive_scrape for URL: %s with %d actions", args.URL, len(args.Actions))

		// The interactive path talks to the browser backend directly, so
		// the robots gate is applied here rather than by the router.
		s.robots.Preload(ctx, args.URL)
		if !s.robots.IsAllowed(args.URL) {
			return nil, &pagehound.FetchResult{
				URL:    args.URL,
				Status: pagehound.StatusBlocked,
				Error:  "blocked by robots.txt",
			}, nil
		}

		fetched, err := s.rendered.RunActions(ctx, args.URL, args.Actions)
		if err != nil {
			return nil, &pagehound.FetchResult{
				URL:    args.URL,
				Status: pagehound.StatusError,
				Error:  err.Error(),
			}, nil
		}
		return toolResult(fmt.Sprintf("Interactive scrape result for %s:", args.URL), fetched)
	})
}

// SearchAndScrapeArgs defines the input schema for search_and_scrape tool
type SearchAndScrapeArgs struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults,omitempty"`
}

// SearchAndScrapeResult defines the output schema for search_and_scrape tool
type SearchAndScrapeResult struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// registerSearchAndScrapeTool registers the search_and_scrape tool
func (s *MCPServer) registerSearchAndScrapeTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_and_scrape",
		Description: "Searches the web for a query and scrapes the top results (requires a configured search API)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SearchAndScrapeArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: search_and_scrape for query: %s", args.Query)

		// No search backend is wired yet. TODO: integrate a search API
		// provider and fan the top results into ScrapeMany.
		return nil, SearchAndScrapeResult{
			Error:   "Search API integration required",
			Message: "Integrate with search API (Google, Bing, DuckDuckGo) for full functionality",
		}, nil
	})
}

// ClearCacheArgs defines the input schema for clear_cache tool
type ClearCacheArgs struct{}

// ClearCacheResult defines the output schema for clear_cache tool
type ClearCacheResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// registerClearCacheTool registers the clear_cache tool
func (s *MCPServer) registerClearCacheTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Clears the in-memory fetch cache",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ClearCacheArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: clear_cache")

		s.cache.Clear()
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "Cache cleared"},
			},
		}, ClearCacheResult{Success: true, Message: "Cache cleared"}, nil
	})
}

// GetCacheStatsArgs defines the input schema for get_cache_stats tool
type GetCacheStatsArgs struct{}

// GetCacheStatsResult defines the output schema for get_cache_stats tool
type GetCacheStatsResult struct {
	Cache     pagehound.CacheStats       `json:"cache"`
	RateLimit pagehound.RateLimiterStats `json:"rateLimit"`
}

// registerGetCacheStatsTool registers the get_cache_stats tool
func (s *MCPServer) registerGetCacheStatsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_cache_stats",
		Description: "Reports fetch cache occupancy and per-domain rate limiter state",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetCacheStatsArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: get_cache_stats")

		result := GetCacheStatsResult{
			Cache:     s.cache.Stats(),
			RateLimit: s.limiter.Stats(),
		}
		return toolResult("Cache statistics:", result)
	})
}

// SetRateLimitArgs defines the input schema for set_rate_limit tool
type SetRateLimitArgs struct {
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

// SetRateLimitResult defines the output schema for set_rate_limit tool
type SetRateLimitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// registerSetRateLimitTool registers the set_rate_limit tool
func (s *MCPServer) registerSetRateLimitTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_rate_limit",
		Description: "Changes the sustained per-domain request rate",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SetRateLimitArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: set_rate_limit to %.2f req/s", args.RequestsPerSecond)

		if err := s.limiter.SetRate(args.RequestsPerSecond); err != nil {
			return nil, SetRateLimitResult{
				Success: false,
				Message: fmt.Sprintf("Failed to set rate limit: %v", err),
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: fmt.Sprintf("Rate limit set to %.2f requests per second", args.RequestsPerSecond),
				},
			},
		}, SetRateLimitResult{
			Success: true,
			Message: fmt.Sprintf("Rate limit set to %.2f requests per second", args.RequestsPerSecond),
		}, nil
	})
}

// SavePageArgs defines the input schema for save_page tool
type SavePageArgs struct {
	URL string `json:"url"`
	// Collection names the document collection the page snapshot is filed
	// under. Defaults to "pages".
	Collection string `json:"collection,omitempty"`
	UseBrowser bool   `json:"useBrowser,omitempty"`
}

// SavePageResult defines the output schema for save_page tool
type SavePageResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	ContentHash string `json:"contentHash,omitempty"`
	Changed     bool   `json:"changed,omitempty"`
}

// registerSavePageTool registers the save_page tool
func (s *MCPServer) registerSavePageTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_page",
		Description: "Scrapes a URL and persists the snapshot to the local database, reporting whether the content changed since the last save",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SavePageArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: save_page for URL: %s", args.URL)

		fetched := s.router.Scrape(ctx, args.URL, scrapeOptions(args.UseBrowser, nil))
		if fetched.Status != pagehound.StatusSuccess {
			return nil, SavePageResult{
				Success: false,
				Message: fmt.Sprintf("Failed to scrape page: %s", fetched.Error),
				URL:     args.URL,
			}, nil
		}

		hash := pagehound.ContentHash(fetched.HTML)
		changed := true
		if prev, err := s.store.GetPageByURL(fetched.URL); err == nil && prev != nil {
			changed = prev.ContentHash != hash
		}

		page := &store.Page{
			URL:         fetched.URL,
			Title:       fetched.Title,
			Method:      string(fetched.Method),
			Status:      string(fetched.Status),
			ContentHash: hash,
			Text:        fetched.Text,
			FetchedAt:   time.Now().Unix(),
		}
		if _, err := s.store.SavePage(page); err != nil {
			return nil, SavePageResult{
				Success: false,
				Message: fmt.Sprintf("Failed to save page: %v", err),
				URL:     args.URL,
			}, nil
		}

		collection := args.Collection
		if collection == "" {
			collection = "pages"
		}
		body, _ := json.Marshal(fetched)
		if _, err := s.store.SaveDocument(collection, fetched.URL, string(body)); err != nil {
			return nil, SavePageResult{
				Success: false,
				Message: fmt.Sprintf("Failed to save document: %v", err),
				URL:     args.URL,
			}, nil
		}

		result := SavePageResult{
			Success:     true,
			Message:     fmt.Sprintf("Page saved to collection %q", collection),
			URL:         fetched.URL,
			Title:       fetched.Title,
			ContentHash: hash,
			Changed:     changed,
		}
		return toolResult(fmt.Sprintf("Saved %s:", args.URL), result)
	})
}

// GetPageArgs defines the input schema for get_page tool
type GetPageArgs struct {
	URL string `json:"url"`
}

// GetPageResult defines the output schema for get_page tool
type GetPageResult struct {
	Found bool        `json:"found"`
	Page  *store.Page `json:"page,omitempty"`
	Error string      `json:"error,omitempty"`
}

// registerGetPageTool registers the get_page tool
func (s *MCPServer) registerGetPageTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_page",
		Description: "Fetches a previously saved page snapshot from the local database",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetPageArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: get_page for URL: %s", args.URL)

		page, err := s.store.GetPageByURL(args.URL)
		if err != nil {
			return nil, GetPageResult{Found: false, Error: err.Error()}, nil
		}
		return toolResult(fmt.Sprintf("Saved page for %s:", args.URL), GetPageResult{Found: true, Page: page})
	})
}

// ListRecentPagesArgs defines the input schema for list_recent_pages tool
type ListRecentPagesArgs struct {
	Limit int `json:"limit,omitempty"`
}

// ListRecentPagesResult defines the output schema for list_recent_pages tool
type ListRecentPagesResult struct {
	Total int          `json:"total"`
	Pages []store.Page `json:"pages"`
	Error string       `json:"error,omitempty"`
}

// registerListRecentPagesTool registers the list_recent_pages tool
func (s *MCPServer) registerListRecentPagesTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_recent_pages",
		Description: "Lists saved page snapshots, most recently fetched first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListRecentPagesArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: list_recent_pages")

		pages, err := s.store.RecentPages(args.Limit)
		if err != nil {
			return nil, ListRecentPagesResult{Error: err.Error()}, nil
		}
		total, err := s.store.CountPages()
		if err != nil {
			return nil, ListRecentPagesResult{Error: err.Error()}, nil
		}
		result := ListRecentPagesResult{Total: int(total), Pages: pages}
		return toolResult(fmt.Sprintf("%d saved pages (%d listed):", total, len(pages)), result)
	})
}

// DeletePageArgs defines the input schema for delete_page tool
type DeletePageArgs struct {
	URL string `json:"url"`
}

// DeletePageResult defines the output schema for delete_page tool
type DeletePageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// registerDeletePageTool registers the delete_page tool
func (s *MCPServer) registerDeletePageTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_page",
		Description: "Deletes a saved page snapshot by URL",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DeletePageArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: delete_page for URL: %s", args.URL)

		if err := s.store.DeletePageByURL(args.URL); err != nil {
			return nil, DeletePageResult{
				Success: false,
				Message: fmt.Sprintf("Failed to delete page: %v", err),
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Deleted saved page for %s", args.URL)},
			},
		}, DeletePageResult{Success: true, Message: "Page deleted"}, nil
	})
}

// FindDocumentsArgs defines the input schema for find_documents tool
type FindDocumentsArgs struct {
	Collection string `json:"collection"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// DocumentRecord is one stored document in a find_documents result. The
// body is passed through as raw JSON.
type DocumentRecord struct {
	Collection string          `json:"collection"`
	Key        string          `json:"key"`
	Body       json.RawMessage `json:"body"`
	UpdatedAt  int64           `json:"updatedAt"`
}

// FindDocumentsResult defines the output schema for find_documents tool
type FindDocumentsResult struct {
	Collection string           `json:"collection"`
	Count      int              `json:"count"`
	Documents  []DocumentRecord `json:"documents"`
	Error      string           `json:"error,omitempty"`
}

// registerFindDocumentsTool registers the find_documents tool
func (s *MCPServer) registerFindDocumentsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_documents",
		Description: "Lists stored documents in a collection, most recently updated first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args FindDocumentsArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: find_documents in collection: %s", args.Collection)

		docs, err := s.store.FindDocuments(args.Collection, args.Limit, args.Offset)
		if err != nil {
			return nil, FindDocumentsResult{Collection: args.Collection, Error: err.Error()}, nil
		}

		records := make([]DocumentRecord, 0, len(docs))
		for _, doc := range docs {
			records = append(records, DocumentRecord{
				Collection: doc.Collection,
				Key:        doc.Key,
				Body:       json.RawMessage(doc.Body),
				UpdatedAt:  doc.UpdatedAt,
			})
		}
		result := FindDocumentsResult{
			Collection: args.Collection,
			Count:      len(records),
			Documents:  records,
		}
		return toolResult(fmt.Sprintf("%d documents in %q:", len(records), args.Collection), result)
	})
}

// DeleteDocumentsArgs defines the input schema for delete_documents tool
type DeleteDocumentsArgs struct {
	Collection string `json:"collection"`
	// Key deletes a single document when set; an empty key deletes the
	// whole collection.
	Key string `json:"key,omitempty"`
}

// DeleteDocumentsResult defines the output schema for delete_documents tool
type DeleteDocumentsResult struct {
	Success bool   `json:"success"`
	Deleted int64  `json:"deleted"`
	Message string `json:"message"`
}

// registerDeleteDocumentsTool registers the delete_documents tool
func (s *MCPServer) registerDeleteDocumentsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_documents",
		Description: "Deletes a stored document by key, or an entire collection when no key is given",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DeleteDocumentsArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: delete_documents in collection: %s", args.Collection)

		deleted, err := s.store.DeleteDocuments(args.Collection, args.Key)
		if err != nil {
			return nil, DeleteDocumentsResult{
				Success: false,
				Message: fmt.Sprintf("Failed to delete documents: %v", err),
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Deleted %d documents from %q", deleted, args.Collection)},
			},
		}, DeleteDocumentsResult{
			Success: true,
			Deleted: deleted,
			Message: fmt.Sprintf("Deleted %d documents", deleted),
		}, nil
	})
}

// ListCollectionsArgs defines the input schema for list_collections tool
type ListCollectionsArgs struct{}

// ListCollectionsResult defines the output schema for list_collections tool
type ListCollectionsResult struct {
	Collections []string `json:"collections"`
	Error       string   `json:"error,omitempty"`
}

// registerListCollectionsTool registers the list_collections tool
func (s *MCPServer) registerListCollectionsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "Lists all document collections in the local database",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListCollectionsArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: list_collections")

		collections, err := s.store.ListCollections()
		if err != nil {
			return nil, ListCollectionsResult{Error: err.Error()}, nil
		}
		return toolResult(fmt.Sprintf("%d collections:", len(collections)), ListCollectionsResult{Collections: collections})
	})
}

// CountDocumentsArgs defines the input schema for count_documents tool
type CountDocumentsArgs struct {
	// Collection restricts the count; empty counts every document.
	Collection string `json:"collection,omitempty"`
}

// CountDocumentsResult defines the output schema for count_documents tool
type CountDocumentsResult struct {
	Collection string `json:"collection,omitempty"`
	Count      int64  `json:"count"`
	Error      string `json:"error,omitempty"`
}

// registerCountDocumentsTool registers the count_documents tool
func (s *MCPServer) registerCountDocumentsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "count_documents",
		Description: "Counts stored documents, optionally within one collection",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CountDocumentsArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: count_documents")

		count, err := s.store.CountDocuments(args.Collection)
		if err != nil {
			return nil, CountDocumentsResult{Collection: args.Collection, Error: err.Error()}, nil
		}
		return toolResult("Document count:", CountDocumentsResult{Collection: args.Collection, Count: count})
	})
}
