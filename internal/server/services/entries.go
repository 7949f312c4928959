package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/entries"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/repomanager"
)

// MsgNoAttachment is returned when an entry has nothing to download.
const MsgNoAttachment = "Entry has no attachment."

// EntryInput carries writable entry fields. Nil means "not sent".
type EntryInput struct {
	Title    *string
	Body     *string
	Author   *int64
	Favorite *bool
}

// Attachment is a presigned upload slot.
type Attachment struct {
	Key       string
	UploadURL string
}

type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   *Presigner
}

func NewEntryService(db *sql.DB, repomanager repomanager.RepositoryManager, storage S3Settings) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: repomanager,
		presigner:   NewPresigner(storage),
	}
}

// Create stores a new entry. Author defaults to callerID.
func (s *EntryService) Create(ctx context.Context, callerID int64, in EntryInput) (*models.Entry, error) {
	e := &models.Entry{Author: callerID}
	if err := s.apply(ctx, s.db, e, in, false); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Entries(s.db).Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return created, nil
}

func (s *EntryService) Get(ctx context.Context, id int64) (*models.Entry, error) {
	e, err := s.repomanager.Entries(s.db).Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading entry %d: %w", id, err)
	}
	return e, nil
}

func (s *EntryService) List(ctx context.Context, filter entries.ListFilter) ([]*models.Entry, error) {
	list, err := s.repomanager.Entries(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return list, nil
}

// Update replaces (partial=false) or patches (partial=true) an entry. A
// full update requires title; omitted body becomes empty.
func (s *EntryService) Update(ctx context.Context, id int64, in EntryInput, partial bool) (*models.Entry, error) {
	var updated *models.Entry

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)

		e, err := repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("error loading entry %d: %w", id, err)
		}

		if !partial && in.Body == nil {
			e.Body = ""
		}
		if err := s.apply(ctx, tx, e, in, partial); err != nil {
			return err
		}

		updated, err = repo.Update(ctx, e)
		if err != nil {
			return fmt.Errorf("error updating entry %d: %w", id, err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EntryService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Entries(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting entry %d: %w", id, err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the updated entry.
func (s *EntryService) ToggleFavorite(ctx context.Context, id int64) (*models.Entry, error) {
	e, err := s.repomanager.Entries(s.db).ToggleFavorite(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error toggling favorite on entry %d: %w", id, err)
	}
	return e, nil
}

// CreateAttachment reserves a new object key for the entry and returns a
// presigned upload URL for it. The key replaces any previous attachment.
func (s *EntryService) CreateAttachment(ctx context.Context, id int64) (*Attachment, error) {
	key := GetRandomStorageKey()

	url, err := s.presigner.PutURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	if err := s.repomanager.Entries(s.db).SetAttachmentKey(ctx, id, key); err != nil {
		return nil, fmt.Errorf("error saving attachment of entry %d: %w", id, err)
	}

	return &Attachment{Key: key, UploadURL: url}, nil
}

// AttachmentURL returns a presigned download URL for the entry's attachment.
func (s *EntryService) AttachmentURL(ctx context.Context, id int64) (string, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if e.AttachmentKey == "" {
		return "", &common.NotFoundError{Detail: MsgNoAttachment}
	}

	url, err := s.presigner.GetURL(ctx, e.AttachmentKey)
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}
	return url, nil
}

// apply validates in and copies it onto e.
func (s *EntryService) apply(ctx context.Context, db dbx.DBTX, e *models.Entry, in EntryInput, partial bool) error {
	verr := &common.ValidationError{}

	switch {
	case in.Title != nil:
		if err := checkVar(verr, "title", *in.Title, "required,max=255"); err != nil {
			return err
		}
	case !partial:
		verr.Add("title", "This field is required.")
	}

	if in.Author != nil {
		if err := checkAuthor(ctx, s.repomanager, db, verr, *in.Author); err != nil {
			return err
		}
	}

	if !verr.Empty() {
		return verr
	}

	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Body != nil {
		e.Body = *in.Body
	}
	if in.Author != nil {
		e.Author = *in.Author
	}
	if in.Favorite != nil {
		e.Favorite = *in.Favorite
	}
	return nil
}

// checkAuthor files an author error when id names no user.
func checkAuthor(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, verr *common.ValidationError, id int64) error {
	_, err := m.Users(db).GetByID(ctx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		verr.Add("author", `Invalid pk "`+strconv.FormatInt(id, 10)+`" - object does not exist.`)
		return nil
	}
	return fmt.Errorf("error loading author %d: %w", id, err)
}
