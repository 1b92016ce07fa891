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
	"fmt"
)

// Status describes the outcome of a fetch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusBlocked Status = "blocked"
)

// Method identifies which backend produced a result.
type Method string

const (
	// MethodLightweight is a plain HTTP fetch without script execution.
	MethodLightweight Method = "lightweight"
	// MethodRendered is a fetch through the headless browser.
	MethodRendered Method = "rendered"
)

// Link is a hyperlink discovered on a fetched page.
type Link struct {
	Text     string `json:"text"`
	URL      string `json:"url"`
	Internal bool   `json:"internal"`
}

// FetchResult is the unit of output for every fetch operation. It is
// immutable once returned; ownership passes to the caller. Results stored
// in the cache are cloned on the way out so cached state can never be
// mutated through a returned pointer.
type FetchResult struct {
	URL    string `json:"url"`
	Status Status `json:"status"`
	Method Method `json:"method,omitempty"`
	Title  string `json:"title,omitempty"`
	HTML   string `json:"html,omitempty"`
	// Text is all visible text on the page.
	Text string `json:"text,omitempty"`
	// Content is the text of the main content area only (navigation,
	// headers and footers removed). Populated when content extraction is
	// requested.
	Content    string `json:"content,omitempty"`
	Links      []Link `json:"links,omitempty"`
	Error      string `json:"error,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
	// FallbackFrom is set when the router discarded a result from another
	// backend and retried with this one.
	FallbackFrom Method `json:"fallbackFrom,omitempty"`
}

// Clone returns a deep copy of the result.
func (r *FetchResult) Clone() *FetchResult {
	if r == nil {
		return nil
	}
	dup := *r
	if r.Links != nil {
		dup.Links = make([]Link, len(r.Links))
		copy(dup.Links, r.Links)
	}
	return &dup
}

// errorResult builds a uniform error-shaped result for a URL.
func errorResult(url string, method Method, err error) *FetchResult {
	return &FetchResult{
		URL:    url,
		Status: StatusError,
		Method: method,
		Error:  err.Error(),
	}
}

// LightweightFetcher retrieves a page without executing scripts. Fast, but
// blind to dynamically injected content.
type LightweightFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// RenderedFetcher retrieves a page through a full rendering engine and can
// drive interactive action sequences against it.
type RenderedFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
	RunActions(ctx context.Context, url string, actions []Action) (*FetchResult, error)
}

var (
	// ErrBlockedByPolicy is returned when robots.txt denies a URL.
	ErrBlockedByPolicy = errors.New("URL blocked by robots.txt")
	// ErrMissingURL is returned when an operation is invoked with an empty URL.
	ErrMissingURL = errors.New("missing URL")
)

// ConfigError reports an invalid configuration value, such as a
// non-positive rate or capacity.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Param, e.Reason)
}

// ActionError reports a failed step in an interactive action sequence.
// The sequence aborts at the failing action; no partial application is
// reported back.
type ActionError struct {
	Index  int
	Action ActionType
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s) failed: %v", e.Index, e.Action, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
