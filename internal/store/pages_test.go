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

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePage(t *testing.T) {
	st := newTestStore(t)

	t.Run("CreatesAndFetches", func(t *testing.T) {
		page, err := st.SavePage(&Page{
			URL:       "https://example.com/a",
			Title:     "A",
			Method:    "lightweight",
			Status:    "success",
			Text:      "body text",
			FetchedAt: time.Now().Unix(),
		})
		require.NoError(t, err)
		assert.NotZero(t, page.ID)

		fetched, err := st.GetPageByURL("https://example.com/a")
		require.NoError(t, err)
		assert.Equal(t, "A", fetched.Title)
	})

	t.Run("UpsertsByURL", func(t *testing.T) {
		first, err := st.SavePage(&Page{URL: "https://example.com/b", Method: "lightweight", Status: "success", FetchedAt: 1})
		require.NoError(t, err)

		second, err := st.SavePage(&Page{URL: "https://example.com/b", Method: "rendered", Status: "success", FetchedAt: 2})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		fetched, err := st.GetPageByURL("https://example.com/b")
		require.NoError(t, err)
		assert.Equal(t, "rendered", fetched.Method)
		assert.Equal(t, int64(2), fetched.FetchedAt)
	})

	t.Run("RejectsEmptyURL", func(t *testing.T) {
		_, err := st.SavePage(&Page{})
		assert.Error(t, err)
	})
}

func TestRecentPages(t *testing.T) {
	st := newTestStore(t)

	for i, url := range []string{"https://a.test/", "https://b.test/", "https://c.test/"} {
		_, err := st.SavePage(&Page{URL: url, Method: "lightweight", Status: "success", FetchedAt: int64(i)})
		require.NoError(t, err)
	}

	pages, err := st.RecentPages(2)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "https://c.test/", pages[0].URL)
	assert.Equal(t, "https://b.test/", pages[1].URL)
}

func TestDeletePageByURL(t *testing.T) {
	st := newTestStore(t)

	_, err := st.SavePage(&Page{URL: "https://gone.test/", Method: "lightweight", Status: "success", FetchedAt: 1})
	require.NoError(t, err)

	require.NoError(t, st.DeletePageByURL("https://gone.test/"))

	_, err = st.GetPageByURL("https://gone.test/")
	assert.Error(t, err)

	err = st.DeletePageByURL("https://gone.test/")
	assert.ErrorContains(t, err, "not found")
}

func TestCountPages(t *testing.T) {
	st := newTestStore(t)

	count, err := st.CountPages()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = st.SavePage(&Page{URL: "https://one.test/", Method: "lightweight", Status: "success", FetchedAt: 1})
	require.NoError(t, err)

	count, err = st.CountPages()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
