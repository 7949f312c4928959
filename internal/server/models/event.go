package models

import "time"

// Event is a calendar event owned by Author.
type Event struct {
	ID          int64
	Title       string
	Description *string
	StartTime   time.Time
	EndTime     time.Time
	Author      int64
}
