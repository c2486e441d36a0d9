package models

import "time"

type Document struct {
	ID              int64       `json:"id"`
	FolderID        int64       `json:"folder_id"`
	Title           string      `json:"title"`
	Sort            int         `json:"sort"`
	Attachment      *Attachment `json:"attachment"`
	DocReceivedDate *time.Time  `json:"doc_received_date"`
	DocDeadlineDate *time.Time  `json:"doc_deadline_date"`
	Memo            *string     `json:"memo"`
	CreatedAt       time.Time   `json:"created_at"`
	ModifiedAt      time.Time   `json:"modified_at"`
}

// DocumentSortItem is one entry of a document reorder submission. Documents
// are reordered within a single folder, so no parent reference is needed.
type DocumentSortItem struct {
	ID   int64 `json:"id"`
	Sort int   `json:"sort"`
}
