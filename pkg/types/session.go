// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Session is one analyzed document and everything derived from it. A new
// analysis creates a new Session; nothing carries over from the previous one.
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	Document  string    `json:"document" yaml:"document"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Pages is the page count of the rasterized document.
	Pages int `json:"pages" yaml:"pages"`

	// Images are held in memory only and never persisted.
	Images []PageImage `json:"-" yaml:"-"`

	Extraction ExtractionResult `json:"extraction" yaml:"extraction"`
	Tasks      []TaskRecord     `json:"tasks" yaml:"tasks"`

	// Topic and Transformed describe the latest successful transformation.
	Topic       string            `json:"topic,omitempty" yaml:"topic,omitempty"`
	Transformed []TransformedTask `json:"transformed,omitempty" yaml:"transformed,omitempty"`
}

// SessionSummary is a list entry for stored sessions.
type SessionSummary struct {
	ID          string    `json:"id" yaml:"id"`
	Document    string    `json:"document" yaml:"document"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Pages       int       `json:"pages" yaml:"pages"`
	Tasks       int       `json:"tasks" yaml:"tasks"`
	Topic       string    `json:"topic,omitempty" yaml:"topic,omitempty"`
	Transformed int       `json:"transformed" yaml:"transformed"`
}
