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
	"net/url"
	"strconv"

	"github.com/cespare/xxhash/v2"
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// defaultBucket is the rate-limit and policy partition for URLs whose
// authority component cannot be determined.
const defaultBucket = "default"

// normalizeURL canonicalizes a URL the same way a browser would (scheme
// lowercasing, default port elision, path normalization). Unparsable input
// is returned unchanged so it still produces a stable cache key.
func normalizeURL(raw string) string {
	u, err := urlParser.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Href(false)
}

// cacheKey derives the cache key for a URL: an xxhash digest of the
// normalized URL, optionally prefixed with a backend namespace.
func cacheKey(namespace, raw string) string {
	sum := strconv.FormatUint(xxhash.Sum64String(normalizeURL(raw)), 16)
	if namespace == "" {
		return sum
	}
	return namespace + ":" + sum
}

// domainOf extracts the authority (host[:port]) component of a URL.
// Unparsable URLs map to the shared default bucket.
func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return defaultBucket
	}
	return u.Host
}

// robotsURLFor returns the robots.txt location for the given URL's origin.
func robotsURLFor(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + u.Host + "/robots.txt"
}
