// Package events stores calendar events.
package events

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/server/listquery"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
)

var OrderingFields = []string{"start_time", "end_time", "title"}

var DefaultOrdering = listquery.Asc("start_time")

// ListFilter narrows List. StartsOn and EndsOn match UTC calendar days.
type ListFilter struct {
	Author   *int64
	StartsOn *time.Time
	EndsOn   *time.Time
	// Search matches the title or the author's username.
	Search   string
	Ordering []listquery.OrderTerm
}

type Repository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
}
