// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PageImage is the encoded raster of one document page.
type PageImage struct {
	// PageNumber is the 1-based position of the page in the document.
	PageNumber int `json:"page_number" yaml:"page_number"`

	// MIMEType is the image encoding (e.g. "image/png").
	MIMEType string `json:"mime_type" yaml:"mime_type"`

	// Data holds the encoded image bytes.
	Data []byte `json:"-" yaml:"-"`

	// Width and Height are the pixel dimensions of the rendered page.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ExtractionResult is the output of one two-step extraction run.
type ExtractionResult struct {
	// FullText is the verbatim exercise text read from the page images.
	FullText string `json:"full_text" yaml:"full_text"`

	// CoreText is the computational skeleton of every exercise.
	CoreText string `json:"core_text" yaml:"core_text"`
}

// TaskRecord pairs the full text and core text of one exercise.
type TaskRecord struct {
	// Index is the 1-based position of the exercise within its run.
	Index int `json:"index" yaml:"index"`

	FullText string `json:"full_text" yaml:"full_text"`
	CoreText string `json:"core_text" yaml:"core_text"`
}

// TransformedTask is one exercise rewritten into a target topic.
type TransformedTask struct {
	// Index matches the TaskRecord the content was produced from.
	Index int `json:"index" yaml:"index"`

	Topic   string `json:"topic" yaml:"topic"`
	Content string `json:"content" yaml:"content"`
}
