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

// Package metrics holds the Prometheus instrumentation shared by the
// scraping pipeline. Counters register against the default registry; the
// server binary exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scrapes counts routed fetches by backend method and outcome.
	Scrapes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagehound_scrapes_total",
		Help: "Routed fetches, labeled by backend method and result status.",
	}, []string{"method", "status"})

	// Fallbacks counts lightweight results discarded in favor of a
	// rendered retry.
	Fallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagehound_fallbacks_total",
		Help: "Lightweight fetches retried on the rendered backend.",
	})

	// RobotsBlocked counts requests denied by the policy gate.
	RobotsBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagehound_robots_blocked_total",
		Help: "Requests denied by robots.txt policy.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagehound_cache_hits_total",
		Help: "Fetches served from the content cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagehound_cache_misses_total",
		Help: "Cache lookups that went to a backend.",
	})
)
