package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/osa911/userconsole/internal/client"
	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/models"
)

// Messages surfaced by the list view
const (
	MsgFetchFailed      = "Failed to fetch users"
	MsgSearchFailed     = "Search failed"
	MsgDeleteFailed     = "Failed to delete user: "
	MsgActivateFailed   = "Failed to activate user"
	MsgDeactivateFailed = "Failed to deactivate user"
)

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer fetch started before it finished
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Confirmer asks the user a yes/no question
type Confirmer func(prompt string) bool

// DeletePrompt is the confirmation question for deleting u
func DeletePrompt(u models.User) string {
	return fmt.Sprintf("Are you sure you want to delete user \"%s\"?", u.Name)
}

// Action names a row action that changed the remote collection
type Action string

const (
	ActionDeleted     Action = "deleted"
	ActionActivated   Action = "activated"
	ActionDeactivated Action = "deactivated"
)

// ListState is a consistent snapshot of a ListView
type ListState struct {
	Users   []models.User
	Loading bool
	// Error is set when the last fetch failed; the table is replaced by a retry
	Error  string
	Search string
	Filter Filter
	// Alert is the last failed row action
	Alert string
	// Searched is true when Users came from a search call
	Searched bool
}

// Empty reports a successful fetch that returned nobody
func (s ListState) Empty() bool {
	return s.Error == "" && !s.Loading && len(s.Users) == 0
}

// CountLabel renders the footer, e.g. "Total: 1 user" or "Total: 2 users"
func (s ListState) CountLabel() string {
	n := len(s.Users)
	if n == 1 {
		return "Total: 1 user"
	}
	return fmt.Sprintf("Total: %d users", n)
}

// ListView fetches and holds the user table. Only the newest fetch may
// update it: starting a fetch cancels any fetch still in flight.
// It is safe for concurrent use.
type ListView struct {
	api    interfaces.UserAPI
	logger *logging.Logger

	// OnEdit receives the full user when its Edit button is used
	OnEdit func(models.User)
	// OnChanged runs after a row action changed the remote collection
	OnChanged func(action Action, id int64)
	// SkipReload leaves the post-action reload to the caller, e.g. a redirect
	SkipReload bool

	mu       sync.Mutex
	users    []models.User
	loading  bool
	err      string
	search   string
	filter   Filter
	page     int
	alert    string
	searched bool
	gen      uint64
	cancel   context.CancelFunc
}

// NewListView creates an unmounted list filtered by FilterAll
func NewListView(api interfaces.UserAPI, logger *logging.Logger) *ListView {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &ListView{
		api:    api,
		logger: logger,
		filter: FilterAll,
	}
}

// State returns a snapshot of the view
func (v *ListView) State() ListState {
	v.mu.Lock()
	defer v.mu.Unlock()

	users := make([]models.User, len(v.users))
	copy(users, v.users)
	return ListState{
		Users:    users,
		Loading:  v.loading,
		Error:    v.err,
		Search:   v.search,
		Filter:   v.filter,
		Alert:    v.alert,
		Searched: v.searched,
	}
}

// Mount performs the initial fetch
func (v *ListView) Mount(ctx context.Context) error {
	return v.fetch(ctx, false)
}

// Restore seeds filter and search carried over from an earlier interaction
// without fetching. A non-blank search makes the next Reload a search.
func (v *ListView) Restore(f Filter, search string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
	v.search = search
	v.searched = strings.TrimSpace(search) != ""
}

// SetFilter changes the filter and re-fetches the plain list
func (v *ListView) SetFilter(ctx context.Context, f Filter) error {
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	return v.fetch(ctx, false)
}

// SetPage selects the page the plain list asks for; zero or less means the
// server's first page. Searches are never paged.
func (v *ListView) SetPage(n int) {
	v.mu.Lock()
	v.page = n
	v.mu.Unlock()
}

// SetSearch updates the search text without fetching
func (v *ListView) SetSearch(text string) {
	v.mu.Lock()
	v.search = text
	v.mu.Unlock()
}

// SubmitSearch searches for the current text, or lists everyone when blank
func (v *ListView) SubmitSearch(ctx context.Context) error {
	v.mu.Lock()
	blank := strings.TrimSpace(v.search) == ""
	v.mu.Unlock()
	return v.fetch(ctx, !blank)
}

// ClearSearch empties the search text and restores the plain list
func (v *ListView) ClearSearch(ctx context.Context) error {
	v.SetSearch("")
	return v.fetch(ctx, false)
}

// Reload repeats the last kind of fetch with the retained filter and search
func (v *ListView) Reload(ctx context.Context) error {
	v.mu.Lock()
	searching := v.searched && strings.TrimSpace(v.search) != ""
	v.mu.Unlock()
	return v.fetch(ctx, searching)
}

// Contains reports whether the user with id is currently shown
func (v *ListView) Contains(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, u := range v.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// DismissAlert clears the last action failure
func (v *ListView) DismissAlert() {
	v.mu.Lock()
	v.alert = ""
	v.mu.Unlock()
}

// Edit hands u to OnEdit
func (v *ListView) Edit(u models.User) {
	if v.OnEdit != nil {
		v.OnEdit(u)
	}
}

// Delete removes u once confirm accepts the prompt. Declining makes no call.
// It reports whether the user was deleted.
func (v *ListView) Delete(ctx context.Context, u models.User, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm(DeletePrompt(u)) {
		return false, nil
	}

	v.DismissAlert()
	if err := v.api.Delete(ctx, u.ID); err != nil {
		v.setAlert(MsgDeleteFailed + FailureReason(err))
		v.logger.Error("Failed to delete user %d: %v", u.ID, err)
		return false, err
	}

	v.changed(ctx, ActionDeleted, u.ID)
	return true, nil
}

// Activate marks the user active, then reloads
func (v *ListView) Activate(ctx context.Context, id int64) error {
	v.DismissAlert()
	if _, err := v.api.Activate(ctx, id); err != nil {
		v.setAlert(MsgActivateFailed)
		v.logger.Error("Failed to activate user %d: %v", id, err)
		return err
	}
	v.changed(ctx, ActionActivated, id)
	return nil
}

// Deactivate marks the user inactive, then reloads
func (v *ListView) Deactivate(ctx context.Context, id int64) error {
	v.DismissAlert()
	if _, err := v.api.Deactivate(ctx, id); err != nil {
		v.setAlert(MsgDeactivateFailed)
		v.logger.Error("Failed to deactivate user %d: %v", id, err)
		return err
	}
	v.changed(ctx, ActionDeactivated, id)
	return nil
}

func (v *ListView) changed(ctx context.Context, action Action, id int64) {
	if !v.SkipReload {
		// A failed reload is shown through the error state
		_ = v.Reload(ctx)
	}
	if v.OnChanged != nil {
		v.OnChanged(action, id)
	}
}

func (v *ListView) setAlert(msg string) {
	v.mu.Lock()
	v.alert = msg
	v.mu.Unlock()
}

func (v *ListView) fetch(ctx context.Context, searching bool) error {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.gen++
	gen := v.gen
	v.cancel = cancel
	v.loading = true
	v.err = ""
	v.searched = searching
	filter, search, page := v.filter, v.search, v.page
	v.mu.Unlock()
	defer cancel()

	var result *models.PaginatedResponse[models.User]
	var err error
	if searching {
		result, err = v.api.Search(ctx, search)
	} else {
		params := models.ListParams{IsActive: filter.IsActive()}
		if page > 0 {
			params.Page = page
		}
		result, err = v.api.List(ctx, params)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		return ErrSuperseded
	}
	v.loading = false
	v.cancel = nil

	if err != nil {
		v.users = nil
		v.err = fetchErrorMessage(err, searching)
		v.logger.Error("Error fetching users: %v", err)
		return err
	}

	v.users = nil
	if result != nil {
		v.users = result.Results
	}
	return nil
}

// FailureReason is the server's detail for err, or err's own message.
// Field errors outside a form only report the status.
func FailureReason(err error) string {
	if detail, ok := client.Detail(err); ok {
		return detail
	}
	if apiErr, ok := client.AsError(err); ok && apiErr.Kind == client.KindValidation {
		return client.StatusMessage(apiErr.Status)
	}
	return err.Error()
}

func fetchErrorMessage(err error, searching bool) string {
	if searching {
		return MsgSearchFailed
	}
	if detail, ok := client.Detail(err); ok {
		return detail
	}
	return MsgFetchFailed
}
