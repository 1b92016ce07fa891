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
	"errors"
	"testing"
	"time"
)

// installRules puts a freshly-stamped rule set into the policy cache.
func installRules(p *RobotsPolicy, domain string, rules RobotsRuleSet) {
	rules.FetchedAt = time.Now()
	p.mu.Lock()
	p.rules[domain] = &rules
	p.mu.Unlock()
}

func TestRobotsAllowOverridesDisallowByLength(t *testing.T) {
	p := NewRobotsPolicy(DefaultRobotsTTL, nil)
	installRules(p, "example.com", RobotsRuleSet{
		Disallow: []string{"/private"},
		Allow:    []string{"/private/public"},
	})

	if p.IsAllowed("https://example.com/private/x") {
		t.Fatal("/private/x should be disallowed")
	}
	if !p.IsAllowed("https://example.com/private/public/y") {
		t.Fatal("/private/public/y should be allowed by the longer allow rule")
	}
	if !p.IsAllowed("https://example.com/open") {
		t.Fatal("paths outside any disallow rule allow by default")
	}
}

func TestRobotsShorterAllowDoesNotOverride(t *testing.T) {
	p := NewRobotsPolicy(DefaultRobotsTTL, nil)
	installRules(p, "example.com", RobotsRuleSet{
		Disallow: []string{"/private/area"},
		Allow:    []string{"/priv"},
	})
	if p.IsAllowed("https://example.com/private/area/x") {
		t.Fatal("an allow rule shorter than the disallow must not override it")
	}
}

func TestRobotsFailOpen(t *testing.T) {
	p := NewRobotsPolicy(DefaultRobotsTTL, nil)

	// No rules cached at all.
	if !p.IsAllowed("https://unknown.example.com/anything") {
		t.Fatal("domains without cached rules must be allowed")
	}

	// Stale rules are ignored, not enforced.
	p.mu.Lock()
	p.rules["stale.example.com"] = &RobotsRuleSet{
		Disallow:  []string{"/"},
		FetchedAt: time.Now().Add(-48 * time.Hour),
	}
	p.mu.Unlock()
	if !p.IsAllowed("https://stale.example.com/page") {
		t.Fatal("stale rules must resolve as allowed")
	}
}

func TestRobotsRootAndWildcardRules(t *testing.T) {
	p := NewRobotsPolicy(DefaultRobotsTTL, nil)
	installRules(p, "example.com", RobotsRuleSet{
		Disallow: []string{"/"},
	})
	if p.IsAllowed("https://example.com/anything/at/all") {
		t.Fatal("Disallow: / blocks every path")
	}

	installRules(p, "wild.example.com", RobotsRuleSet{
		Disallow: []string{"/*/admin"},
	})
	if p.IsAllowed("https://wild.example.com/shop/admin/settings") {
		t.Fatal("wildcard rule should match /shop/admin/settings")
	}
	if !p.IsAllowed("https://wild.example.com/shop/public") {
		t.Fatal("wildcard rule should not match unrelated paths")
	}
}

func TestParseRobotsLastMatchingGroupWins(t *testing.T) {
	content := `
User-agent: *
Disallow: /first

User-agent: googlebot
Disallow: /ignored

User-agent: *
Disallow: /second
Allow: /second/ok
Crawl-delay: 2.5
`
	rules := parseRobots(content, "*")
	if len(rules.Disallow) != 1 || rules.Disallow[0] != "/second" {
		t.Fatalf("disallow = %v, want exactly [/second]", rules.Disallow)
	}
	if len(rules.Allow) != 1 || rules.Allow[0] != "/second/ok" {
		t.Fatalf("allow = %v, want exactly [/second/ok]", rules.Allow)
	}
	if rules.CrawlDelay != 2.5 {
		t.Fatalf("crawl delay = %v, want 2.5", rules.CrawlDelay)
	}
}

func TestParseRobotsAgentMatching(t *testing.T) {
	content := `
User-agent: SpecialBot
Disallow: /special

User-agent: other
Disallow: /other
`
	rules := parseRobots(content, "specialbot")
	if len(rules.Disallow) != 1 || rules.Disallow[0] != "/special" {
		t.Fatalf("agent match should be case-insensitive, got %v", rules.Disallow)
	}

	rules = parseRobots(content, "nobody")
	if len(rules.Disallow) != 0 {
		t.Fatalf("no group matches agent nobody, got %v", rules.Disallow)
	}
}

func TestParseRobotsSkipsCommentsAndEmptyRules(t *testing.T) {
	content := `
# top comment
User-agent: *
Disallow:
Disallow: /real
# trailing comment
`
	rules := parseRobots(content, "*")
	if len(rules.Disallow) != 1 || rules.Disallow[0] != "/real" {
		t.Fatalf("empty disallow lines must be dropped, got %v", rules.Disallow)
	}
}

func TestRobotsPreloadInstallsRules(t *testing.T) {
	fetched := make(chan string, 1)
	p := NewRobotsPolicy(DefaultRobotsTTL, func(_ context.Context, robotsURL string) (string, error) {
		fetched <- robotsURL
		return "User-agent: *\nDisallow: /blocked\n", nil
	})

	p.Preload(context.Background(), "https://example.com/some/page")

	select {
	case url := <-fetched:
		if url != "https://example.com/robots.txt" {
			t.Fatalf("fetched %q, want the origin robots.txt", url)
		}
	default:
		t.Fatal("preload never invoked the fetch capability")
	}

	if p.IsAllowed("https://example.com/blocked/page") {
		t.Fatal("preloaded disallow rule not enforced")
	}
	rules := p.Rules("https://example.com/")
	if len(rules.Disallow) != 1 {
		t.Fatalf("Rules() = %+v, want one disallow", rules)
	}

	// Fresh rules short-circuit a second preload.
	p.Preload(context.Background(), "https://example.com/other")
	select {
	case <-fetched:
		t.Fatal("preload refetched fresh rules")
	default:
	}
}

func TestRobotsPreloadFailureMeansNoRestrictions(t *testing.T) {
	p := NewRobotsPolicy(DefaultRobotsTTL, func(context.Context, string) (string, error) {
		return "", errors.New("HTTP error 503 Service Unavailable")
	})

	p.Preload(context.Background(), "https://down.example.com/page")

	if !p.IsAllowed("https://down.example.com/page") {
		t.Fatal("fetch failure must be treated as no restrictions")
	}
	rules := p.Rules("https://down.example.com/")
	if len(rules.Disallow) != 0 || len(rules.Allow) != 0 {
		t.Fatalf("failure should install an empty rule set, got %+v", rules)
	}
	if rules.FetchedAt.IsZero() {
		t.Fatal("empty rule set should still be stamped to avoid refetch storms")
	}
}

func TestRobotsClear(t *testing.T) {
	p := NewRobotsPolicy(DefaultRobotsTTL, nil)
	installRules(p, "example.com", RobotsRuleSet{Disallow: []string{"/"}})

	p.Clear()
	if !p.IsAllowed("https://example.com/page") {
		t.Fatal("Clear should drop every cached rule set")
	}
}

func TestPathMatchesRule(t *testing.T) {
	cases := []struct {
		path, rule string
		want       bool
	}{
		{"/anything", "/", true},
		{"/anything", "", false},
		{"/private/x", "/private", true},
		{"/public", "/private", false},
		{"/a/b/c", "/a/*/c", true},
		{"/a/b/d", "/a/*/c", false},
		{"/downloads/file.pdf", "/*.pdf", true},
	}
	for _, tc := range cases {
		if got := pathMatchesRule(tc.path, tc.rule); got != tc.want {
			t.Errorf("pathMatchesRule(%q, %q) = %v, want %v", tc.path, tc.rule, got, tc.want)
		}
	}
}
