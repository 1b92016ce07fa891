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
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// MockResponse is a canned HTTP response for tests.
type MockResponse struct {
	// StatusCode defaults to 200.
	StatusCode int
	Body       string
	Headers    http.Header
	// Delay simulates network latency before the response arrives.
	Delay time.Duration
	// Error simulates a transport-level failure instead of a response.
	Error error
}

// MockTransport implements http.RoundTripper so network-facing tests can
// run without a server. Unregistered URLs yield a 404.
type MockTransport struct {
	mu        sync.RWMutex
	responses map[string]*MockResponse
	// requests records every URL seen, in order.
	requests []string
}

// NewMockTransport creates an empty mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{responses: make(map[string]*MockResponse)}
}

// RegisterResponse maps an exact URL to a canned response.
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if response.StatusCode == 0 {
		response.StatusCode = 200
	}
	m.responses[url] = response
}

// Requests returns the URLs fetched through this transport so far.
func (m *MockTransport) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.requests...)
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	m.mu.Lock()
	m.requests = append(m.requests, url)
	mock := m.responses[url]
	m.mu.Unlock()

	if mock == nil {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     fmt.Sprintf("%d %s", http.StatusNotFound, http.StatusText(http.StatusNotFound)),
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	if mock.Delay > 0 {
		select {
		case <-time.After(mock.Delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	if mock.Error != nil {
		return nil, mock.Error
	}

	header := make(http.Header)
	for k, v := range mock.Headers {
		header[k] = v
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "text/html; charset=utf-8")
	}
	return &http.Response{
		StatusCode: mock.StatusCode,
		Status:     fmt.Sprintf("%d %s", mock.StatusCode, http.StatusText(mock.StatusCode)),
		Body:       io.NopCloser(bytes.NewReader([]byte(mock.Body))),
		Header:     header,
		Request:    req,
	}, nil
}
