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

// SavePage upserts a scrape result by URL. Repeated scrapes of the same
// URL keep one row with the latest snapshot.
func (s *Store) SavePage(page *Page) (*Page, error) {
	if page == nil || page.URL == "" {
		return nil, fmt.Errorf("page with a URL is required")
	}

	var existing Page
	result := s.db.Where("url = ?", page.URL).First(&existing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := s.db.Create(page).Error; err != nil {
			return nil, fmt.Errorf("failed to create page: %v", err)
		}
		return page, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up page: %v", result.Error)
	}

	page.ID = existing.ID
	page.CreatedAt = existing.CreatedAt
	if err := s.db.Save(page).Error; err != nil {
		return nil, fmt.Errorf("failed to update page: %v", err)
	}
	return page, nil
}

// GetPageByURL fetches the stored snapshot for a URL.
func (s *Store) GetPageByURL(url string) (*Page, error) {
	var page Page
	result := s.db.Where("url = ?", url).First(&page)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get page: %v", result.Error)
	}
	return &page, nil
}

// RecentPages returns the most recently fetched pages.
func (s *Store) RecentPages(limit int) ([]Page, error) {
	if limit <= 0 {
		limit = 50
	}
	var pages []Page
	result := s.db.Order("fetched_at DESC").Limit(limit).Find(&pages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list pages: %v", result.Error)
	}
	return pages, nil
}

// DeletePageByURL removes the stored snapshot for a URL.
func (s *Store) DeletePageByURL(url string) error {
	result := s.db.Where("url = ?", url).Delete(&Page{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete page: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("page not found: %s", url)
	}
	return nil
}

// CountPages counts all stored pages.
func (s *Store) CountPages() (int64, error) {
	var count int64
	if err := s.db.Model(&Page{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pages: %v", err)
	}
	return count, nil
}
