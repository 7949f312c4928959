// Package users declares the credential store: persisted accounts with
// unique usernames and emails.
package users

import (
	"context"

	"github.com/dmitrijs2005/lifestyle/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and DateJoined. A duplicate
	// username or email yields *common.ConflictError.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// List returns all users ordered by id.
	List(ctx context.Context) ([]*models.User, error)
	// Update applies patch and returns the updated row. An empty patch
	// behaves like GetByID.
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
