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
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// SaveDocument upserts a document by (collection, key).
func (s *Store) SaveDocument(collection, key, body string) (*Document, error) {
	if collection == "" || key == "" {
		return nil, fmt.Errorf("collection and key are required")
	}

	var doc Document
	result := s.db.Where("collection = ? AND key = ?", collection, key).First(&doc)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		doc = Document{Collection: collection, Key: key, Body: body}
		if err := s.db.Create(&doc).Error; err != nil {
			return nil, fmt.Errorf("failed to create document: %v", err)
		}
		return &doc, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up document: %v", result.Error)
	}

	doc.Body = body
	if err := s.db.Save(&doc).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %v", err)
	}
	return &doc, nil
}

// GetDocument fetches one document by (collection, key).
func (s *Store) GetDocument(collection, key string) (*Document, error) {
	var doc Document
	result := s.db.Where("collection = ? AND key = ?", collection, key).First(&doc)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get document: %v", result.Error)
	}
	return &doc, nil
}

// FindDocuments returns documents of a collection, newest first.
func (s *Store) FindDocuments(collection string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 100
	}
	var docs []Document
	result := s.db.Where("collection = ?", collection).
		Order("updated_at DESC").
		Limit(limit).Offset(offset).
		Find(&docs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find documents: %v", result.Error)
	}
	return docs, nil
}

// DeleteDocuments removes documents. With key == "" the whole collection
// goes; otherwise only the one document. Returns the number removed.
func (s *Store) DeleteDocuments(collection, key string) (int64, error) {
	if collection == "" {
		return 0, fmt.Errorf("collection is required")
	}
	query := s.db.Where("collection = ?", collection)
	if key != "" {
		query = query.Where("key = ?", key)
	}
	result := query.Delete(&Document{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete documents: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// CountDocuments counts the documents of one collection, or of the whole
// store when collection is empty.
func (s *Store) CountDocuments(collection string) (int64, error) {
	query := s.db.Model(&Document{})
	if collection != "" {
		query = query.Where("collection = ?", collection)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count documents: %v", err)
	}
	return count, nil
}

// ListCollections returns the distinct collection names in the store.
func (s *Store) ListCollections() ([]string, error) {
	var collections []string
	result := s.db.Model(&Document{}).
		Distinct("collection").
		Order("collection ASC").
		Pluck("collection", &collections)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list collections: %v", result.Error)
	}
	return collections, nil
}
