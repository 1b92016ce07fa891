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

// PageHound MCP server
//
// Exposes the adaptive scraping core as an MCP tool server, over stdio for
// editor and agent integrations or over streamable HTTP for remote use.
//
// Usage:
//
//	pagehound [flags]
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (~/.pagehound/config.yaml or --config), then PAGEHOUND_* environment
// variables, then flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/agentwork/pagehound"
	"github.com/agentwork/pagehound/internal/mcp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pagehound",
	Short: "Adaptive web scraping over MCP",
	Long: `PageHound scrapes web pages with an adaptive two-tier pipeline: a
lightweight HTTP fetch first, falling back to headless Chrome when a page
needs JavaScript. Results are cached, rate limited per domain and gated by
robots.txt. The whole surface is exposed as MCP tools.`,
	Version:       mcp.ServerVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.pagehound/config.yaml)")
	rootCmd.Flags().String("transport", "stdio", "MCP transport: stdio or http")
	rootCmd.Flags().String("listen", "127.0.0.1:8914", "listen address for the http transport")
	rootCmd.Flags().String("metrics-listen", "", "listen address for Prometheus /metrics (disabled when empty)")
	rootCmd.Flags().String("log-level", "info", "log level: trace, debug, info, warn, error")

	viper.BindPFlag("transport", rootCmd.Flags().Lookup("transport"))
	viper.BindPFlag("listen", rootCmd.Flags().Lookup("listen"))
	viper.BindPFlag("metrics-listen", rootCmd.Flags().Lookup("metrics-listen"))
	viper.BindPFlag("log-level", rootCmd.Flags().Lookup("log-level"))
}

func initConfig() error {
	viper.SetEnvPrefix("PAGEHOUND")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return viper.ReadInConfig()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.AddConfigPath(filepath.Join(home, ".pagehound"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", viper.GetString("log-level"), err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
	pagehound.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := mcp.NewMCPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	defer server.Close()

	if addr := viper.GetString("metrics-listen"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info().Str("addr", addr).Msg("serving Prometheus metrics")
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	switch transport := viper.GetString("transport"); transport {
	case "http":
		httpServer, err := server.RunHTTP(viper.GetString("listen"))
		if err != nil {
			return err
		}
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case "stdio":
		return server.GetServer().Run(ctx, &mcpsdk.StdioTransport{})
	default:
		return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
