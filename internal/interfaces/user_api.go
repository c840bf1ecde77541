package interfaces

import (
	"context"

	"github.com/osa911/userconsole/internal/models"
)

// UserAPI defines the remote user operations the console views depend on
type UserAPI interface {
	List(ctx context.Context, params models.ListParams) (*models.PaginatedResponse[models.User], error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, input models.UserInput) (*models.User, error)
	Update(ctx context.Context, id int64, input models.UserInput) (*models.User, error)
	PartialUpdate(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64) (*models.ActionResponse, error)
	Deactivate(ctx context.Context, id int64) (*models.ActionResponse, error)
	ListActive(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, query string) (*models.PaginatedResponse[models.User], error)
}
