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
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fragments stripped before hashing. Pages routinely vary in ways that
// carry no content meaning (render timestamps, analytics beacons, CSRF
// tokens, cache-busting query params); hashing the raw HTML would make
// every fetch of the same page look like a change.
var (
	volatileTimestampRes = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`\d+\s+(?:second|minute|hour|day|week|month|year)s?\s+ago`),
	}

	volatileTokenRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:session|request|trace)[-_]?id[:=]\s*["']?[a-f0-9-]{8,}["']?`),
		regexp.MustCompile(`(?i)csrf[-_]?token[:=]\s*["']?[a-zA-Z0-9+/=]{16,}["']?`),
	}

	volatileBeaconRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)google-analytics\.com/(?:analytics|ga)\.js`),
		regexp.MustCompile(`(?i)googletagmanager\.com/gtag/js`),
		regexp.MustCompile(`(?i)gtag\s*\([^)]*\)`),
		regexp.MustCompile(`(?i)fbq\s*\([^)]*\)`),
	}

	volatileVersionParamRe = regexp.MustCompile(`\?(?:v|ver)=[a-f0-9]+|\?(?:_|t)=[0-9]+`)
	htmlCommentRe          = regexp.MustCompile(`<!--[\s\S]*?-->`)
	hashWhitespaceRe       = regexp.MustCompile(`\s+`)
)

// ContentHash fingerprints page HTML for change detection. Volatile
// fragments are stripped first so two fetches of an unchanged page hash
// the same even when timestamps or tracking tokens differ. Returns a
// 16-hex-digit xxhash digest, or "" for empty input.
func ContentHash(html string) string {
	normalized := normalizeForHash(html)
	if normalized == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(normalized))
}

func normalizeForHash(html string) string {
	s := htmlCommentRe.ReplaceAllString(html, "")
	for _, re := range volatileTimestampRes {
		s = re.ReplaceAllString(s, "")
	}
	for _, re := range volatileTokenRes {
		s = re.ReplaceAllString(s, "")
	}
	for _, re := range volatileBeaconRes {
		s = re.ReplaceAllString(s, "")
	}
	s = volatileVersionParamRe.ReplaceAllString(s, "")
	return hashWhitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
