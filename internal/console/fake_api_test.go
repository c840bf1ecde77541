package console

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/osa911/userconsole/internal/models"
)

type apiCall struct {
	Op     string
	ID     int64
	Params models.ListParams
	Query  string
	Input  models.UserInput
}

// fakeAPI is an in-memory users backend that records every call
type fakeAPI struct {
	mu     sync.Mutex
	users  map[int64]models.User
	nextID int64
	calls  []apiCall

	// err, when set for an op, is returned instead of touching users
	err map[string]error
	// block, when set for an op, is called before the op runs
	block map[string]func(ctx context.Context)
}

func newFakeAPI(users ...models.User) *fakeAPI {
	f := &fakeAPI{
		users: map[int64]models.User{},
		err:   map[string]error{},
		block: map[string]func(ctx context.Context){},
	}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeAPI) record(ctx context.Context, call apiCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	block := f.block[call.Op]
	err := f.err[call.Op]
	f.mu.Unlock()

	if block != nil {
		block(ctx)
	}
	return err
}

func (f *fakeAPI) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.Op
	}
	return ops
}

func (f *fakeAPI) lastCall() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeAPI) sorted(keep func(models.User) bool) []models.User {
	out := []models.User{}
	for _, u := range f.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAPI) page(users []models.User) *models.PaginatedResponse[models.User] {
	return &models.PaginatedResponse[models.User]{Count: len(users), Results: users}
}

func (f *fakeAPI) List(ctx context.Context, params models.ListParams) (*models.PaginatedResponse[models.User], error) {
	if err := f.record(ctx, apiCall{Op: "list", Params: params}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page(f.sorted(func(u models.User) bool {
		return params.IsActive == nil || u.IsActive == *params.IsActive
	})), nil
}

func (f *fakeAPI) Get(ctx context.Context, id int64) (*models.User, error) {
	if err := f.record(ctx, apiCall{Op: "get", ID: id}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	return &u, nil
}

func (f *fakeAPI) Create(ctx context.Context, input models.UserInput) (*models.User, error) {
	if err := f.record(ctx, apiCall{Op: "create", Input: input}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := models.User{ID: f.nextID, Name: input.Name, Email: input.Email, IsActive: input.IsActive == nil || *input.IsActive}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeAPI) Update(ctx context.Context, id int64, input models.UserInput) (*models.User, error) {
	if err := f.record(ctx, apiCall{Op: "update", ID: id, Input: input}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := models.User{ID: id, Name: input.Name, Email: input.Email, IsActive: input.IsActive == nil || *input.IsActive}
	f.users[id] = u
	return &u, nil
}

func (f *fakeAPI) PartialUpdate(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if err := f.record(ctx, apiCall{Op: "patch", ID: id}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	f.users[id] = u
	return &u, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id int64) error {
	if err := f.record(ctx, apiCall{Op: "delete", ID: id}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeAPI) setActive(ctx context.Context, op string, id int64, active bool) (*models.ActionResponse, error) {
	if err := f.record(ctx, apiCall{Op: op, ID: id}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.IsActive = active
	f.users[id] = u
	return &models.ActionResponse{Status: "user " + op + "d", User: u}, nil
}

func (f *fakeAPI) Activate(ctx context.Context, id int64) (*models.ActionResponse, error) {
	return f.setActive(ctx, "activate", id, true)
}

func (f *fakeAPI) Deactivate(ctx context.Context, id int64) (*models.ActionResponse, error) {
	return f.setActive(ctx, "deactivate", id, false)
}

func (f *fakeAPI) ListActive(ctx context.Context) ([]models.User, error) {
	if err := f.record(ctx, apiCall{Op: "active"}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(u models.User) bool { return u.IsActive }), nil
}

func (f *fakeAPI) Search(ctx context.Context, query string) (*models.PaginatedResponse[models.User], error) {
	if err := f.record(ctx, apiCall{Op: "search", Query: query}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	return f.page(f.sorted(func(u models.User) bool {
		return strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q)
	})), nil
}

func annAndBo() []models.User {
	return []models.User{
		{ID: 1, Name: "Ann", Email: "ann@x.com", IsActive: true},
		{ID: 2, Name: "Bo", Email: "bo@x.com", IsActive: false},
	}
}
