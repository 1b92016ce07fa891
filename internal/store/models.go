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

import "encoding/json"

// Document is an arbitrary JSON blob addressed by (collection, key).
type Document struct {
	ID         uint   `gorm:"primaryKey"`
	Collection string `gorm:"not null;uniqueIndex:idx_collection_key"`
	Key        string `gorm:"not null;uniqueIndex:idx_collection_key"`
	Body       string `gorm:"type:text"` // JSON
	CreatedAt  int64  `gorm:"autoCreateTime"`
	UpdatedAt  int64  `gorm:"autoUpdateTime"`
}

// SetBody serializes v as the document body.
func (d *Document) SetBody(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d.Body = string(data)
	return nil
}

// DecodeBody deserializes the document body into out.
func (d *Document) DecodeBody(out any) error {
	return json.Unmarshal([]byte(d.Body), out)
}

// Page is one persisted scrape result.
type Page struct {
	ID          uint   `gorm:"primaryKey"`
	URL         string `gorm:"not null;index"`
	Title       string `gorm:"type:text"`
	Method      string `gorm:"not null"` // lightweight or rendered
	Status      string `gorm:"not null"`
	ContentHash string `gorm:"type:text;index"`
	Text        string `gorm:"type:text"`
	FetchedAt   int64  `gorm:"not null"`
	CreatedAt   int64  `gorm:"autoCreateTime"`
	UpdatedAt   int64  `gorm:"autoUpdateTime"`
}
