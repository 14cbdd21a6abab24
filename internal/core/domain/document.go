package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Document is one uploaded artifact. Only the fields the router reads are kept.
type Document struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Filename  string         `json:"filename"`
	MimeType  string         `json:"mime_type,omitempty"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
