package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/events"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/repomanager"
)

const MsgEndBeforeStart = "End time must not be earlier than start time."

// EventInput carries writable event fields. Nil means "not sent", except
// for Description where DescriptionSet tells an explicit null from absence.
type EventInput struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	StartTime      *time.Time
	EndTime        *time.Time
	Author         *int64
}

type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEventService(db *sql.DB, repomanager repomanager.RepositoryManager) *EventService {
	return &EventService{
		db:          db,
		repomanager: repomanager,
	}
}

// Create stores a new event. Author defaults to callerID.
func (s *EventService) Create(ctx context.Context, callerID int64, in EventInput) (*models.Event, error) {
	e := &models.Event{Author: callerID}
	if err := s.apply(ctx, s.db, e, in, false); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Events(s.db).Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	return created, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	e, err := s.repomanager.Events(s.db).Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading event %d: %w", id, err)
	}
	return e, nil
}

func (s *EventService) List(ctx context.Context, filter events.ListFilter) ([]*models.Event, error) {
	list, err := s.repomanager.Events(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return list, nil
}

// Update replaces (partial=false) or patches (partial=true) an event. A full
// update requires title, start_time and end_time; omitted description
// becomes null.
func (s *EventService) Update(ctx context.Context, id int64, in EventInput, partial bool) (*models.Event, error) {
	var updated *models.Event

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Events(tx)

		e, err := repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("error loading event %d: %w", id, err)
		}

		if !partial && !in.DescriptionSet {
			e.Description = nil
		}
		if err := s.apply(ctx, tx, e, in, partial); err != nil {
			return err
		}

		updated, err = repo.Update(ctx, e)
		if err != nil {
			return fmt.Errorf("error updating event %d: %w", id, err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Events(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting event %d: %w", id, err)
	}
	return nil
}

func (s *EventService) apply(ctx context.Context, db dbx.DBTX, e *models.Event, in EventInput, partial bool) error {
	verr := &common.ValidationError{}

	switch {
	case in.Title != nil:
		if err := checkVar(verr, "title", *in.Title, "required,max=255"); err != nil {
			return err
		}
	case !partial:
		verr.Add("title", "This field is required.")
	}
	if !partial && in.StartTime == nil {
		verr.Add("start_time", "This field is required.")
	}
	if !partial && in.EndTime == nil {
		verr.Add("end_time", "This field is required.")
	}

	if in.Author != nil {
		if err := checkAuthor(ctx, s.repomanager, db, verr, *in.Author); err != nil {
			return err
		}
	}

	start, end := e.StartTime, e.EndTime
	if in.StartTime != nil {
		start = in.StartTime.UTC()
	}
	if in.EndTime != nil {
		end = in.EndTime.UTC()
	}
	if verr.Empty() && end.Before(start) {
		verr.Add("end_time", MsgEndBeforeStart)
	}

	if !verr.Empty() {
		return verr
	}

	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.DescriptionSet {
		e.Description = in.Description
	}
	e.StartTime, e.EndTime = start, end
	if in.Author != nil {
		e.Author = *in.Author
	}
	return nil
}
