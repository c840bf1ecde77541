package console

import (
	"context"

	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/models"
)

// RootView switches between the list and the form overlay. The list view is
// kept across mutations and reloaded in place, so filter and search survive.
type RootView struct {
	api    interfaces.UserAPI
	logger *logging.Logger

	List *ListView
	// Form is the open form, nil when closed
	Form *FormView
}

func NewRootView(api interfaces.UserAPI, logger *logging.Logger) *RootView {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	r := &RootView{
		api:    api,
		logger: logger,
		List:   NewListView(api, logger),
	}
	r.List.OnEdit = r.Edit
	r.List.OnChanged = r.listChanged
	return r
}

// FormOpen reports whether the form overlay is shown
func (r *RootView) FormOpen() bool {
	return r.Form != nil
}

// Editing is the user in the open form, nil for create mode or a closed form
func (r *RootView) Editing() *models.User {
	if r.Form == nil {
		return nil
	}
	return r.Form.User()
}

// Create opens an empty form
func (r *RootView) Create() {
	r.openForm(nil)
}

// Edit opens the form for u
func (r *RootView) Edit(u models.User) {
	r.openForm(&u)
}

// Show opens an already filled form, e.g. one whose submit just failed
func (r *RootView) Show(form *FormView) {
	form.OnSuccess = r.formSucceeded
	r.Form = form
}

// Cancel closes the form without refreshing
func (r *RootView) Cancel() {
	r.Form = nil
}

func (r *RootView) openForm(u *models.User) {
	r.Show(NewFormView(r.api, u))
}

func (r *RootView) formSucceeded(ctx context.Context, saved *models.User) {
	if saved != nil {
		r.logger.Info("Saved user %d (%s)", saved.ID, saved.Email)
	}
	r.Form = nil
	// A failed reload is shown through the list's error state
	_ = r.List.Reload(ctx)
}

// listChanged closes an edit form whose user was just deleted
func (r *RootView) listChanged(action Action, id int64) {
	editing := r.Editing()
	if action == ActionDeleted && editing != nil && editing.ID == id {
		r.logger.Info("Closing form for deleted user %d", id)
		r.Form = nil
	}
}
