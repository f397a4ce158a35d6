// Package dto defines the request and response bodies of the v1 API.
package dto

import "time"

// SourceTextCreateRequest is the body of POST /sourceTexts.
type SourceTextCreateRequest struct {
	Name        string `json:"name"`
	Filename    string `json:"filename,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

// SourceTextResponse describes a created SourceText.
type SourceTextResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Filename    string    `json:"filename,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromSourceTextRequest is the body of the two ingestion endpoints; it names
// the document to operate on.
type FromSourceTextRequest struct {
	ID string `json:"id"`
}

// CreatedCountResponse reports how many rows an ingestion stage created.
type CreatedCountResponse struct {
	CreatedCount int `json:"created_count"`
}
