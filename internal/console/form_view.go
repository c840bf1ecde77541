package console

import (
	"context"
	"errors"

	"github.com/osa911/userconsole/internal/api/validation"
	"github.com/osa911/userconsole/internal/client"
	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/models"
)

// MsgSaveFailed prefixes the alert for a failed submit
const MsgSaveFailed = "Failed to save user: "

// ErrInvalidInput is returned by Submit when local validation blocked the call
var ErrInvalidInput = errors.New("user input is invalid")

// FormView collects the fields of a user to create or edit.
// It serves a single interaction and is not safe for concurrent use.
type FormView struct {
	api  interfaces.UserAPI
	user *models.User

	Name   string
	Email  string
	Active bool

	// Errors maps a field name to its message
	Errors map[string]string
	// Saving is true while the submit call is in flight
	Saving bool
	// Alert holds a failure that is not tied to a field
	Alert string

	// OnSuccess runs after the server accepted the submit
	OnSuccess func(ctx context.Context, saved *models.User)
}

// NewFormView opens the form in edit mode for user, or create mode when nil
func NewFormView(api interfaces.UserAPI, user *models.User) *FormView {
	f := &FormView{
		api:    api,
		Active: true,
		Errors: map[string]string{},
	}
	if user != nil {
		u := *user
		f.user = &u
		f.Name = u.Name
		f.Email = u.Email
		f.Active = u.IsActive
	}
	return f
}

// Editing reports whether the form edits an existing user
func (f *FormView) Editing() bool {
	return f.user != nil
}

// User is the user being edited, nil in create mode
func (f *FormView) User() *models.User {
	return f.user
}

func (f *FormView) SetName(name string) {
	f.Name = name
	delete(f.Errors, validation.FieldName)
}

func (f *FormView) SetEmail(email string) {
	f.Email = email
	delete(f.Errors, validation.FieldEmail)
}

func (f *FormView) SetActive(active bool) {
	f.Active = active
	delete(f.Errors, "is_active")
}

// Input is the payload sent on submit
func (f *FormView) Input() models.UserInput {
	return models.UserInput{
		Name:     f.Name,
		Email:    f.Email,
		IsActive: models.Bool(f.Active),
	}
}

// Validate replaces Errors with the local validation result
func (f *FormView) Validate() bool {
	f.Errors = validation.ValidateUser(f.Name, f.Email)
	return len(f.Errors) == 0
}

// Submit validates and then issues exactly one update (edit mode) or create
// call. Field errors returned by the server replace Errors; anything else
// becomes Alert.
func (f *FormView) Submit(ctx context.Context) error {
	if !f.Validate() {
		return ErrInvalidInput
	}

	f.Saving = true
	f.Alert = ""
	defer func() { f.Saving = false }()

	var saved *models.User
	var err error
	if f.user != nil {
		saved, err = f.api.Update(ctx, f.user.ID, f.Input())
	} else {
		saved, err = f.api.Create(ctx, f.Input())
	}

	if err != nil {
		if apiErr, ok := client.AsError(err); ok && apiErr.Kind == client.KindValidation {
			f.Errors = make(map[string]string, len(apiErr.Fields))
			for k, msg := range apiErr.Fields {
				f.Errors[k] = msg
			}
		} else {
			f.Alert = MsgSaveFailed + err.Error()
		}
		return err
	}

	if f.OnSuccess != nil {
		f.OnSuccess(ctx, saved)
	}
	return nil
}

// Title is the form heading
func (f *FormView) Title() string {
	if f.Editing() {
		return "Edit User"
	}
	return "Create New User"
}

// SubmitLabel is the text of the submit button
func (f *FormView) SubmitLabel() string {
	switch {
	case f.Saving:
		return "Saving..."
	case f.Editing():
		return "Update User"
	default:
		return "Create User"
	}
}

// Disabled reports whether inputs and buttons are locked
func (f *FormView) Disabled() bool {
	return f.Saving
}

// OtherErrors returns server errors for fields the form does not show
func (f *FormView) OtherErrors() map[string]string {
	other := map[string]string{}
	for k, msg := range f.Errors {
		if k != validation.FieldName && k != validation.FieldEmail {
			other[k] = msg
		}
	}
	return other
}
