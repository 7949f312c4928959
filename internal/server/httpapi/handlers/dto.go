package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
)

// EventTimeLayout is how event times are rendered.
const EventTimeLayout = "2006-01-02 15:04:05"

const msgBadDateTime = "Datetime has wrong format. Use one of these formats instead: " +
	"YYYY-MM-DD hh:mm:ss, YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."

// Layouts accepted for event times. Values without an offset are UTC.
var eventTimeLayouts = []string{
	EventTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func userFromModel(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.UserName, Email: u.Email}
}

type entryResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Author        int64     `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	Favorite      bool      `json:"favorite"`
	AttachmentKey *string   `json:"attachment_key"`
}

func entryFromModel(e *models.Entry) entryResponse {
	out := entryResponse{
		ID:        e.ID,
		Title:     e.Title,
		Body:      e.Body,
		Author:    e.Author,
		CreatedAt: e.CreatedAt.UTC(),
		Favorite:  e.Favorite,
	}
	if e.AttachmentKey != "" {
		key := e.AttachmentKey
		out.AttachmentKey = &key
	}
	return out
}

type entryRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Author   *int64  `json:"author"`
	Favorite *bool   `json:"favorite"`
}

func (r entryRequest) input() services.EntryInput {
	return services.EntryInput{
		Title:    r.Title,
		Body:     r.Body,
		Author:   r.Author,
		Favorite: r.Favorite,
	}
}

// eventTime renders in EventTimeLayout, always in UTC.
type eventTime time.Time

func (t eventTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(EventTimeLayout))
}

type eventResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	StartTime   eventTime `json:"start_time"`
	EndTime     eventTime `json:"end_time"`
	Author      int64     `json:"author"`
}

func eventFromModel(e *models.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   eventTime(e.StartTime),
		EndTime:     eventTime(e.EndTime),
		Author:      e.Author,
	}
}

// eventRequest keeps description raw to tell an explicit null from absence.
type eventRequest struct {
	Title       *string         `json:"title"`
	Description json.RawMessage `json:"description"`
	StartTime   *string         `json:"start_time"`
	EndTime     *string         `json:"end_time"`
	Author      *int64          `json:"author"`
}

func (r eventRequest) input() (services.EventInput, error) {
	in := services.EventInput{Title: r.Title, Author: r.Author}
	verr := &common.ValidationError{}

	if r.Description != nil {
		in.DescriptionSet = true
		if string(r.Description) != "null" {
			var d string
			if err := json.Unmarshal(r.Description, &d); err != nil {
				verr.Add("description", "Not a valid string.")
			} else {
				in.Description = &d
			}
		}
	}

	in.StartTime = parseEventTime(verr, "start_time", r.StartTime)
	in.EndTime = parseEventTime(verr, "end_time", r.EndTime)

	return in, verr.OrNil()
}

func parseEventTime(verr *common.ValidationError, field string, raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	verr.Add(field, msgBadDateTime)
	return nil
}
