package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/osa911/userconsole/internal/client"
	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/models"
)

const usersPath = "/users/"

// UserService maps each user operation onto exactly one API call.
// Errors from the client are returned as they are.
type UserService struct {
	client *client.Client
}

var _ interfaces.UserAPI = (*UserService)(nil)

func NewUserService(c *client.Client) *UserService {
	return &UserService{client: c}
}

// List fetches a page of users filtered by params
func (s *UserService) List(ctx context.Context, params models.ListParams) (*models.PaginatedResponse[models.User], error) {
	var page models.PaginatedResponse[models.User]
	if err := s.client.Get(ctx, usersPath, listQuery(params), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	path, err := userPath(id, "")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.client.Get(ctx, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, input models.UserInput) (*models.User, error) {
	var user models.User
	if err := s.client.Post(ctx, usersPath, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update replaces every field of the user
func (s *UserService) Update(ctx context.Context, id int64, input models.UserInput) (*models.User, error) {
	path, err := userPath(id, "")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.client.Put(ctx, path, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PartialUpdate sends only the non-nil fields of patch
func (s *UserService) PartialUpdate(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	path, err := userPath(id, "")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.client.Patch(ctx, path, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	path, err := userPath(id, "")
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, path)
}

func (s *UserService) Activate(ctx context.Context, id int64) (*models.ActionResponse, error) {
	return s.action(ctx, id, "activate")
}

func (s *UserService) Deactivate(ctx context.Context, id int64) (*models.ActionResponse, error) {
	return s.action(ctx, id, "deactivate")
}

// ListActive returns every active user as a plain list
func (s *UserService) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.client.Get(ctx, usersPath+"active_users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Search lets the server filter the collection by query
func (s *UserService) Search(ctx context.Context, query string) (*models.PaginatedResponse[models.User], error) {
	var page models.PaginatedResponse[models.User]
	if err := s.client.Get(ctx, usersPath, url.Values{"search": {query}}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *UserService) action(ctx context.Context, id int64, name string) (*models.ActionResponse, error) {
	path, err := userPath(id, name)
	if err != nil {
		return nil, err
	}

	var resp models.ActionResponse
	if err := s.client.Post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func userPath(id int64, action string) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	path := usersPath + strconv.FormatInt(id, 10) + "/"
	if action != "" {
		path += action + "/"
	}
	return path, nil
}

func listQuery(params models.ListParams) url.Values {
	query := url.Values{}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*params.IsActive))
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	return query
}
