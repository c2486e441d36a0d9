package models

import "time"

// Attachment is an uploaded file reference. Documents point at attachments by
// id only; the stored bytes live under DiskKey in blob storage.
type Attachment struct {
	ID           int64     `json:"id"`
	OriginalName string    `json:"original_name"`
	Extension    string    `json:"extension"`
	SizeBytes    int64     `json:"size"`
	DiskKey      string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
