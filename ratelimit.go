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

package pagehound

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultRequestsPerSecond is the sustained per-domain request rate.
	DefaultRequestsPerSecond = 2.0
	// DefaultBurst is how many requests a domain may issue back to back
	// before overage delays kick in.
	DefaultBurst = 5
)

// domainRateState holds the pacing state for one domain. lastRequestAt is
// monotonically non-decreasing: each reservation moves it forward to the
// moment its wait completes.
type domainRateState struct {
	mu            sync.Mutex
	lastRequestAt time.Time
	windowCount   int
}

// RateLimiter paces requests per domain. Waits are modeled as
// context-aware timer suspensions, so a paced goroutine never blocks
// requests to other domains and can be cancelled mid-wait.
type RateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	burst       int
	domains     map[string]*domainRateState

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// RateLimiterStats is a snapshot of the limiter's configuration and the
// per-domain request counts it has observed.
type RateLimiterStats struct {
	DomainsTracked   int                `json:"domainsTracked"`
	MinInterval      time.Duration      `json:"minInterval"`
	Burst            int                `json:"burst"`
	RequestsByDomain map[string]int     `json:"requestsByDomain"`
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// throughput per domain with the given burst allowance.
func NewRateLimiter(requestsPerSecond float64, burst int) (*RateLimiter, error) {
	if requestsPerSecond <= 0 {
		return nil, &ConfigError{Param: "requestsPerSecond", Reason: "must be positive"}
	}
	if burst <= 0 {
		return nil, &ConfigError{Param: "burst", Reason: "must be positive"}
	}
	return &RateLimiter{
		minInterval: time.Duration(float64(time.Second) / requestsPerSecond),
		burst:       burst,
		domains:     make(map[string]*domainRateState),
		now:         time.Now,
		sleep:       sleepCtx,
	}, nil
}

// Await suspends the caller until the URL's domain may issue its next
// request. The wait is reserved up front under the domain's lock and
// served outside it, so concurrent callers to the same domain queue behind
// each other while other domains proceed untouched.
func (rl *RateLimiter) Await(ctx context.Context, url string) error {
	domain := domainOf(url)
	state := rl.domainState(domain)

	rl.mu.Lock()
	minInterval := rl.minInterval
	burst := rl.burst
	rl.mu.Unlock()

	state.mu.Lock()
	now := rl.now()
	var wait time.Duration
	first := state.lastRequestAt.IsZero()
	elapsed := now.Sub(state.lastRequestAt)

	if !first && elapsed < minInterval {
		wait = minInterval - elapsed
	}

	// Rolling burst window: a long enough gap resets the counter,
	// anything tighter accumulates toward the overage penalty.
	if first || elapsed > time.Duration(burst)*minInterval {
		state.windowCount = 1
	} else {
		state.windowCount++
	}
	if state.windowCount > burst {
		wait += time.Duration(state.windowCount-burst) * minInterval
	}

	// Reserve the completion time before sleeping so the next caller
	// paces itself off this request's finish, not its start.
	state.lastRequestAt = now.Add(wait)
	state.mu.Unlock()

	if wait > 0 {
		logger.Debug().Str("domain", domain).Dur("wait", wait).Msg("rate limiting")
		return rl.sleep(ctx, wait)
	}
	return nil
}

// Reset clears pacing state for one domain, or for every domain when the
// argument is empty.
func (rl *RateLimiter) Reset(domain string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if domain == "" {
		rl.domains = make(map[string]*domainRateState)
		return
	}
	delete(rl.domains, domain)
}

// SetRate updates the sustained request rate.
func (rl *RateLimiter) SetRate(requestsPerSecond float64) error {
	if requestsPerSecond <= 0 {
		return &ConfigError{Param: "requestsPerSecond", Reason: "must be positive"}
	}
	rl.mu.Lock()
	rl.minInterval = time.Duration(float64(time.Second) / requestsPerSecond)
	rl.mu.Unlock()
	logger.Info().Float64("requestsPerSecond", requestsPerSecond).Msg("rate limit updated")
	return nil
}

// Stats reports the limiter configuration and observed request counts.
func (rl *RateLimiter) Stats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	counts := make(map[string]int, len(rl.domains))
	for domain, state := range rl.domains {
		state.mu.Lock()
		counts[domain] = state.windowCount
		state.mu.Unlock()
	}
	return RateLimiterStats{
		DomainsTracked:   len(rl.domains),
		MinInterval:      rl.minInterval,
		Burst:            rl.burst,
		RequestsByDomain: counts,
	}
}

// domainState returns the state bucket for a domain, creating it lazily.
func (rl *RateLimiter) domainState(domain string) *domainRateState {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	state, ok := rl.domains[domain]
	if !ok {
		state = &domainRateState{}
		rl.domains[domain] = state
	}
	return state
}

// sleepCtx blocks for d or until the context is cancelled, whichever
// comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
