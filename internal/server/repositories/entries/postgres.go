package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/server/listquery"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
)

const returningColumns = `id, title, body, author_id, created_at, favorite, attachment_key`

var orderColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"id":         "id",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	e := &models.Entry{}
	err := s.Scan(&e.ID, &e.Title, &e.Body, &e.Author, &e.CreatedAt, &e.Favorite, &e.AttachmentKey)
	return e, err
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query :=
		`INSERT INTO entries (title, body, author_id, favorite)
		 VALUES ($1, $2, $3, $4)
		 RETURNING ` + returningColumns

	e, err := scanEntry(r.db.QueryRowContext(ctx, query,
		entry.Title, entry.Body, entry.Author, entry.Favorite))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Entry, error) {
	query :=
		`SELECT ` + returningColumns + ` FROM entries
		 WHERE id = $1`

	return r.one(ctx, query, id)
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*models.Entry, error) {
	var q listquery.Query
	if f.Author != nil {
		q.Where("author_id = %s", *f.Author)
	}
	if f.CreatedOn != nil {
		q.Where("(created_at AT TIME ZONE 'UTC')::date = %s::date", f.CreatedOn.Format("2006-01-02"))
	}
	if f.Favorite != nil {
		q.Where("favorite = %s", *f.Favorite)
	}
	q.Search(f.Search, "title")

	ordering := f.Ordering
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	terms := make([]listquery.OrderTerm, 0, len(ordering)+1)
	terms = append(append(terms, ordering...), listquery.OrderTerm{Field: "id"})
	q.OrderBy(terms, orderColumns)

	query, args := q.Build(`SELECT ` + returningColumns + ` FROM entries`)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query :=
		`UPDATE entries
		 SET title = $1, body = $2, author_id = $3, favorite = $4
		 WHERE id = $5
		 RETURNING ` + returningColumns

	return r.one(ctx, query, entry.Title, entry.Body, entry.Author, entry.Favorite, entry.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM entries
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ToggleFavorite(ctx context.Context, id int64) (*models.Entry, error) {
	query :=
		`UPDATE entries
		 SET favorite = NOT favorite
		 WHERE id = $1
		 RETURNING ` + returningColumns

	return r.one(ctx, query, id)
}

func (r *PostgresRepository) SetAttachmentKey(ctx context.Context, id int64, key string) error {
	query :=
		`UPDATE entries
		 SET attachment_key = $1
		 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapError(err)
	}
	return e, nil
}

func mapError(err error) error {
	if _, ok := dbx.ForeignKeyViolation(err); ok {
		return common.NewValidationError("author", "Invalid pk - object does not exist.")
	}
	return fmt.Errorf("db error: %w", err)
}
