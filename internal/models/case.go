package models

import "time"

// Case is a matter record. The slug is the opaque identifier used to scope
// folder and document queries.
type Case struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
