package events

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

const returningColumns = `id, title, description, start_time, end_time, author_id`

var orderColumns = map[string]string{
	"start_time": "e.start_time",
	"end_time":   "e.end_time",
	"title":      "e.title",
	"id":         "e.id",
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

func scanEvent(s scanner) (*models.Event, error) {
	e := &models.Event{}
	var desc sql.NullString
	if err := s.Scan(&e.ID, &e.Title, &desc, &e.StartTime, &e.EndTime, &e.Author); err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query :=
		`INSERT INTO events (title, description, start_time, end_time, author_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + returningColumns

	e, err := scanEvent(r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.StartTime, event.EndTime, event.Author))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Event, error) {
	query :=
		`SELECT ` + returningColumns + ` FROM events
		 WHERE id = $1`

	return r.one(ctx, query, id)
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*models.Event, error) {
	var q listquery.Query
	if f.Author != nil {
		q.Where("e.author_id = %s", *f.Author)
	}
	if f.StartsOn != nil {
		q.Where("(e.start_time AT TIME ZONE 'UTC')::date = %s::date", f.StartsOn.Format("2006-01-02"))
	}
	if f.EndsOn != nil {
		q.Where("(e.end_time AT TIME ZONE 'UTC')::date = %s::date", f.EndsOn.Format("2006-01-02"))
	}
	q.Search(f.Search, "e.title", "u.username")

	ordering := f.Ordering
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	terms := make([]listquery.OrderTerm, 0, len(ordering)+1)
	terms = append(append(terms, ordering...), listquery.OrderTerm{Field: "id"})
	q.OrderBy(terms, orderColumns)

	query, args := q.Build(
		`SELECT e.id, e.title, e.description, e.start_time, e.end_time, e.author_id
		 FROM events e JOIN users u ON u.id = e.author_id`)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
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

func (r *PostgresRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	query :=
		`UPDATE events
		 SET title = $1, description = $2, start_time = $3, end_time = $4, author_id = $5
		 WHERE id = $6
		 RETURNING ` + returningColumns

	return r.one(ctx, query,
		event.Title, event.Description, event.StartTime, event.EndTime, event.Author, event.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM events
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
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
