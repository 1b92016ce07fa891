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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewStoreForTesting(dbPath)
	require.NoError(t, err)
	return st
}

func TestSaveDocument(t *testing.T) {
	st := newTestStore(t)

	t.Run("CreatesNewDocument", func(t *testing.T) {
		doc, err := st.SaveDocument("notes", "first", `{"text":"hello"}`)
		require.NoError(t, err)
		assert.NotZero(t, doc.ID)
		assert.Equal(t, "notes", doc.Collection)

		fetched, err := st.GetDocument("notes", "first")
		require.NoError(t, err)
		assert.Equal(t, `{"text":"hello"}`, fetched.Body)
	})

	t.Run("UpsertsExistingKey", func(t *testing.T) {
		first, err := st.SaveDocument("notes", "same", `{"v":1}`)
		require.NoError(t, err)
		second, err := st.SaveDocument("notes", "same", `{"v":2}`)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)

		fetched, err := st.GetDocument("notes", "same")
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, fetched.Body)
	})

	t.Run("RejectsMissingCollectionOrKey", func(t *testing.T) {
		_, err := st.SaveDocument("", "k", "{}")
		assert.Error(t, err)
		_, err = st.SaveDocument("c", "", "{}")
		assert.Error(t, err)
	})
}

func TestDocumentBodyRoundTrip(t *testing.T) {
	var doc Document
	require.NoError(t, doc.SetBody(map[string]any{"count": 3}))

	var out map[string]any
	require.NoError(t, doc.DecodeBody(&out))
	assert.Equal(t, float64(3), out["count"])
}

func TestFindDocuments(t *testing.T) {
	st := newTestStore(t)

	for _, key := range []string{"a", "b", "c"} {
		_, err := st.SaveDocument("pages", key, "{}")
		require.NoError(t, err)
	}
	_, err := st.SaveDocument("other", "x", "{}")
	require.NoError(t, err)

	docs, err := st.FindDocuments("pages", 10, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	limited, err := st.FindDocuments("pages", 2, 0)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteDocuments(t *testing.T) {
	st := newTestStore(t)

	for _, key := range []string{"a", "b"} {
		_, err := st.SaveDocument("temp", key, "{}")
		require.NoError(t, err)
	}

	t.Run("DeleteSingleKey", func(t *testing.T) {
		deleted, err := st.DeleteDocuments("temp", "a")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = st.GetDocument("temp", "a")
		assert.Error(t, err)
	})

	t.Run("DeleteWholeCollection", func(t *testing.T) {
		deleted, err := st.DeleteDocuments("temp", "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		count, err := st.CountDocuments("temp")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestCountAndListCollections(t *testing.T) {
	st := newTestStore(t)

	_, err := st.SaveDocument("alpha", "1", "{}")
	require.NoError(t, err)
	_, err = st.SaveDocument("alpha", "2", "{}")
	require.NoError(t, err)
	_, err = st.SaveDocument("beta", "1", "{}")
	require.NoError(t, err)

	count, err := st.CountDocuments("alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err := st.CountDocuments("")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	collections, err := st.ListCollections()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, collections)
}
