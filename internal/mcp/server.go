package mcp

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/agentwork/pagehound"
	"github.com/agentwork/pagehound/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "pagehound"
	ServerVersion = "1.0.0"
)

// robotsBodyLimit caps how much of a robots.txt response is read.
const robotsBodyLimit = 512 * 1024

// MCPServer wraps the PageHound acquisition core and exposes it via MCP protocol
type MCPServer struct {
	server   *mcp.Server
	cache    *pagehound.CacheStore
	limiter  *pagehound.RateLimiter
	robots   *pagehound.RobotsPolicy
	router   *pagehound.Router
	rendered *pagehound.ChromedpBackend
	store    *store.Store
	ctx      context.Context
	logger   *log.Logger
}

// NewMCPServer creates a new MCP server instance backed by the default
// on-disk store (~/.pagehound/pagehound.db).
func NewMCPServer(ctx context.Context) (*MCPServer, error) {
	st, err := store.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %v", err)
	}
	return newServerWithStore(ctx, st)
}

func newServerWithStore(ctx context.Context, st *store.Store) (*MCPServer, error) {
	logger := log.New(os.Stderr, "[PageHound MCP] ", log.LstdFlags)

	cache, err := pagehound.NewCacheStore(pagehound.DefaultCacheCapacity, pagehound.DefaultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %v", err)
	}
	limiter, err := pagehound.NewRateLimiter(pagehound.DefaultRequestsPerSecond, pagehound.DefaultBurst)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %v", err)
	}

	robots := pagehound.NewRobotsPolicy(pagehound.DefaultRobotsTTL, fetchRobotsTxt)
	rendered := pagehound.NewChromedpBackend(cache)
	lightweight := pagehound.NewHTTPBackend(cache, limiter)
	router := pagehound.NewRouter(lightweight, rendered, robots)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	s := &MCPServer{
		server:   mcpServer,
		cache:    cache,
		limiter:  limiter,
		robots:   robots,
		router:   router,
		rendered: rendered,
		store:    st,
		ctx:      ctx,
		logger:   logger,
	}

	// Register all tools
	s.registerTools()

	logger.Printf("MCP server initialized successfully")
	return s, nil
}

// fetchRobotsTxt downloads robots.txt for the policy layer. Any failure,
// including a non-200 status, is reported as an error so the policy falls
// back to allowing everything for that domain.
func fetchRobotsTxt(ctx context.Context, robotsURL string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("robots.txt returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsBodyLimit))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetServer returns the internal MCP server instance
func (s *MCPServer) GetServer() *mcp.Server {
	return s.server
}

// RunHTTP starts the MCP server with HTTP transport using StreamableHTTPHandler
func (s *MCPServer) RunHTTP(addr string) (*http.Server, error) {
	s.logger.Printf("Starting MCP HTTP server on %s...", addr)

	handler := mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server {
			return s.server
		},
		nil, // Use default StreamableHTTPOptions
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()

	s.logger.Printf("MCP HTTP server started successfully on %s", addr)
	return httpServer, nil
}

// Close performs cleanup
func (s *MCPServer) Close() error {
	s.logger.Printf("Shutting down MCP server...")
	s.rendered.Close()
	return nil
}
