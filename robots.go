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
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// DefaultRobotsTTL is how long fetched robots.txt rules stay fresh.
const DefaultRobotsTTL = 24 * time.Hour

// defaultRobotsFetchTimeout bounds a single robots.txt retrieval.
const defaultRobotsFetchTimeout = 10 * time.Second

// PolicyFetchFunc retrieves the body of a robots.txt URL. Implementations
// should return an error for any non-success response; RobotsPolicy treats
// every failure as "no restrictions".
type PolicyFetchFunc func(ctx context.Context, robotsURL string) (string, error)

// RobotsRuleSet holds the exclusion rules collected for one domain. A rule
// set is replaced wholesale on refresh, never merged across fetches.
type RobotsRuleSet struct {
	Allow      []string  `json:"allow"`
	Disallow   []string  `json:"disallow"`
	CrawlDelay float64   `json:"crawlDelay"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// RobotsPolicy caches per-domain robots.txt rules and answers allow/deny
// questions against them. The policy is fail-open: a domain with no cached
// rules, stale rules, or a failed fetch is allowed. Enforcement is
// eventually consistent; IsAllowed never gates on a live fetch, callers
// trigger Preload to refresh the cache asynchronously.
type RobotsPolicy struct {
	mu        sync.RWMutex
	rules     map[string]*RobotsRuleSet
	ttl       time.Duration
	userAgent string
	fetch     PolicyFetchFunc
}

// NewRobotsPolicy creates a policy cache with the given TTL. fetch supplies
// robots.txt text; it may be nil, in which case Preload is a no-op and
// every URL is allowed until rules are installed some other way.
func NewRobotsPolicy(ttl time.Duration, fetch PolicyFetchFunc) *RobotsPolicy {
	if ttl <= 0 {
		ttl = DefaultRobotsTTL
	}
	return &RobotsPolicy{
		rules:     make(map[string]*RobotsRuleSet),
		ttl:       ttl,
		userAgent: "*",
		fetch:     fetch,
	}
}

// SetUserAgent changes the agent rules are parsed for. Takes effect on the
// next Preload; already cached rule sets are untouched.
func (p *RobotsPolicy) SetUserAgent(agent string) {
	p.mu.Lock()
	p.userAgent = agent
	p.mu.Unlock()
}

// IsAllowed reports whether the URL may be fetched under the cached rules
// for its domain. Missing or stale rules allow by default.
func (p *RobotsPolicy) IsAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	p.mu.RLock()
	ruleSet, ok := p.rules[u.Host]
	p.mu.RUnlock()
	if !ok || time.Since(ruleSet.FetchedAt) > p.ttl {
		return true
	}

	for _, rule := range ruleSet.Disallow {
		if !pathMatchesRule(path, rule) {
			continue
		}
		// A matching allow rule overrides the disallow only when its
		// pattern is at least as long, i.e. at least as specific.
		overridden := false
		for _, allowRule := range ruleSet.Allow {
			if pathMatchesRule(path, allowRule) && len(allowRule) >= len(rule) {
				overridden = true
				break
			}
		}
		if !overridden {
			logger.Info().Str("url", rawURL).Str("rule", rule).Msg("disallowed by robots.txt")
			return false
		}
	}
	return true
}

// Preload fetches and caches the robots.txt rules for the URL's domain.
// Fresh cached rules short-circuit. Every fetch failure installs an empty
// rule set; Preload never returns a policy decision error to the caller.
func (p *RobotsPolicy) Preload(ctx context.Context, rawURL string) {
	if p.fetch == nil {
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return
	}
	domain := u.Host

	p.mu.RLock()
	cached, ok := p.rules[domain]
	agent := p.userAgent
	p.mu.RUnlock()
	if ok && time.Since(cached.FetchedAt) <= p.ttl {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, defaultRobotsFetchTimeout)
	defer cancel()

	ruleSet := RobotsRuleSet{}
	body, err := p.fetch(fetchCtx, robotsURLFor(rawURL))
	if err != nil {
		logger.Warn().Str("domain", domain).Err(err).Msg("robots.txt fetch failed, allowing everything")
	} else {
		ruleSet = parseRobots(body, agent)
	}
	ruleSet.FetchedAt = time.Now()

	p.mu.Lock()
	p.rules[domain] = &ruleSet
	p.mu.Unlock()
	logger.Info().Str("domain", domain).Int("disallow", len(ruleSet.Disallow)).Msg("loaded robots.txt rules")
}

// Rules returns a copy of the cached rule set for the URL's domain, or an
// empty set when none is cached.
func (p *RobotsPolicy) Rules(rawURL string) RobotsRuleSet {
	u, err := url.Parse(rawURL)
	if err != nil {
		return RobotsRuleSet{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if ruleSet, ok := p.rules[u.Host]; ok {
		dup := RobotsRuleSet{
			Allow:      append([]string(nil), ruleSet.Allow...),
			Disallow:   append([]string(nil), ruleSet.Disallow...),
			CrawlDelay: ruleSet.CrawlDelay,
			FetchedAt:  ruleSet.FetchedAt,
		}
		return dup
	}
	return RobotsRuleSet{}
}

// Clear drops every cached rule set.
func (p *RobotsPolicy) Clear() {
	p.mu.Lock()
	p.rules = make(map[string]*RobotsRuleSet)
	p.mu.Unlock()
}

// parseRobots extracts the rules applying to userAgent from robots.txt
// text. Groups are introduced by User-agent lines; a group applies when its
// agent is "*" or equals userAgent case-insensitively. The last applying
// group wins outright: encountering a new applying group discards rules
// collected from earlier ones.
func parseRobots(content, userAgent string) RobotsRuleSet {
	ruleSet := RobotsRuleSet{}
	collecting := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if value == "*" || strings.EqualFold(value, userAgent) {
				collecting = true
				ruleSet = RobotsRuleSet{}
			} else {
				collecting = false
			}
		case "disallow":
			if collecting && value != "" {
				ruleSet.Disallow = append(ruleSet.Disallow, value)
			}
		case "allow":
			if collecting && value != "" {
				ruleSet.Allow = append(ruleSet.Allow, value)
			}
		case "crawl-delay":
			if collecting {
				if delay, err := strconv.ParseFloat(value, 64); err == nil {
					ruleSet.CrawlDelay = delay
				}
			}
		}
	}
	return ruleSet
}

// pathMatchesRule reports whether a request path falls under a robots.txt
// rule. "/" matches everything, the empty rule matches nothing, a plain
// rule matches as a literal prefix, and rules containing "*" are compiled
// to prefix-anchored wildcard patterns.
func pathMatchesRule(path, rule string) bool {
	switch {
	case rule == "/":
		return true
	case rule == "":
		return false
	case strings.HasPrefix(path, rule):
		return true
	case strings.Contains(rule, "*"):
		pattern := rule
		if !strings.HasSuffix(pattern, "*") {
			pattern += "*"
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return false
		}
		return g.Match(path)
	}
	return false
}
