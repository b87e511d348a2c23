package models

import "time"

// DocumentContext holds the structured data extracted from one uploaded
// file. Re-adding a document with the same id replaces the old entry.
type DocumentContext struct {
	DocumentID    string        `json:"documentId"`
	FileName      string        `json:"fileName"`
	MimeType      string        `json:"mimeType"`
	ExtractedData ExtractedData `json:"extractedData"`
	Processed     bool          `json:"processed"`
	Timestamp     time.Time     `json:"timestamp"`
}

// ExtractedData is the loosely-typed record returned by document
// extraction. Every field except DocumentType may be absent; callers
// must treat the shape as untrusted and default on ingress.
type ExtractedData struct {
	DocumentType   string            `json:"documentType"`
	Title          string            `json:"title,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Sections       []DocumentSection `json:"sections,omitempty"`
	Requirements   []string          `json:"requirements,omitempty"`
	UserFlows      []UserFlow        `json:"userFlows,omitempty"`
	Features       []Feature         `json:"features,omitempty"`
	TechnicalSpecs []TechnicalSpec   `json:"technicalSpecs,omitempty"`
}

type DocumentSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

type UserFlow struct {
	Name     string   `json:"name"`
	Steps    []string `json:"steps,omitempty"`
	Screens  []string `json:"screens,omitempty"`
	Priority string   `json:"priority,omitempty"`
}

type Feature struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Components  []string `json:"components,omitempty"`
}

type TechnicalSpec struct {
	Category     string   `json:"category"`
	Requirements []string `json:"requirements,omitempty"`
}
