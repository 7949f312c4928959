package models

import "time"

// Entry is a journal entry owned by Author.
type Entry struct {
	ID            int64
	Title         string
	Body          string
	Author        int64
	CreatedAt     time.Time
	Favorite      bool
	AttachmentKey string
}
