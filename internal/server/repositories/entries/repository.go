// Package entries stores journal entries.
package entries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/server/listquery"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
)

// Ordering fields accepted by List.
var OrderingFields = []string{"created_at", "title"}

// DefaultOrdering applies when the caller asks for nothing valid.
var DefaultOrdering = listquery.Asc("created_at", "title")

// ListFilter narrows List. Nil fields are not applied.
type ListFilter struct {
	Author *int64
	// CreatedOn matches the UTC calendar day of created_at.
	CreatedOn *time.Time
	Favorite  *bool
	Search    string
	Ordering  []listquery.OrderTerm
}

type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	Get(ctx context.Context, id int64) (*models.Entry, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Entry, error)
	// Update writes title, body, author and favorite.
	Update(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	Delete(ctx context.Context, id int64) error
	// ToggleFavorite flips the favorite flag in one statement.
	ToggleFavorite(ctx context.Context, id int64) (*models.Entry, error)
	SetAttachmentKey(ctx context.Context, id int64, key string) error
}
