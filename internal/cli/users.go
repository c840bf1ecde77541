package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/osa911/userconsole/internal/client"
	"github.com/osa911/userconsole/internal/console"
	"github.com/osa911/userconsole/internal/models"

	"github.com/spf13/cobra"
)

// ErrNothingToPatch is returned by 'users patch' without any field flag
var ErrNothingToPatch = errors.New("nothing to update: pass --name, --email or --active")

func newUsersCommand(app *App) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
		Long:  `List, search, create, edit, activate, deactivate and delete users of the remote API.`,
	}

	usersCmd.AddCommand(
		newListCommand(app),
		newGetCommand(app),
		newCreateCommand(app),
		newUpdateCommand(app),
		newPatchCommand(app),
		newDeleteCommand(app),
		newSetActiveCommand(app, true),
		newSetActiveCommand(app, false),
		newActiveCommand(app),
		newSearchCommand(app),
	)
	return usersCmd
}

func newListCommand(app *App) *cobra.Command {
	var search, filter string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long: `List users, optionally filtered by status. A non-blank --search runs a
search instead and ignores --filter and --page.

Example:
  userconsole users list --filter inactive
  userconsole users list --search ann`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilter(filter)
			if err != nil {
				return err
			}
			list, err := app.listView()
			if err != nil {
				return err
			}
			list.Restore(f, search)
			list.SetPage(page)
			return app.showList(cmd, list)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Search text")
	cmd.Flags().StringVar(&filter, "filter", string(console.FilterAll), "Status filter: all, active or inactive")
	cmd.Flags().IntVar(&page, "page", 0, "Page of the list to fetch")
	return cmd
}

func newSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search users by name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.listView()
			if err != nil {
				return err
			}
			list.Restore(console.FilterAll, args[0])
			return app.showList(cmd, list)
		},
	}
}

func newActiveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List active users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.API()
			if err != nil {
				return err
			}

			stop := app.spin("Fetching active users...")
			users, err := api.ListActive(cmd.Context())
			stop()
			if err != nil {
				return withReason(console.MsgFetchFailed, err)
			}
			return app.printUsers(users)
		},
	}
}

func newGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := app.getUser(cmd, id)
			if err != nil {
				return err
			}
			return app.printUser(u)
		},
	}
}

func newCreateCommand(app *App) *cobra.Command {
	var name, email string
	var active bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create a user. Name and email are checked locally first; nothing is sent
when they are invalid.

Example:
  userconsole users create --name "Ann" --email ann@x.com
  userconsole users create --name "Bo" --email bo@x.com --active=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.API()
			if err != nil {
				return err
			}
			form := console.NewFormView(api, nil)
			fillForm(cmd, form, name, email, active)
			return app.submit(cmd, form)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "User name")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().BoolVar(&active, "active", true, "Whether the user is active")
	return cmd
}

func newUpdateCommand(app *App) *cobra.Command {
	var name, email string
	var active bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user",
		Long: `Edit a user through the form: the current user is loaded, the given flags
replace its fields and every field is sent. Fields without a flag keep their
current value. Use 'users patch' to send single fields.

Example:
  userconsole users update 3 --name "Ann Lee" --active=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := app.getUser(cmd, id)
			if err != nil {
				return err
			}
			api, err := app.API()
			if err != nil {
				return err
			}
			form := console.NewFormView(api, u)
			fillForm(cmd, form, name, email, active)
			return app.submit(cmd, form)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().BoolVar(&active, "active", true, "New active state")
	return cmd
}

func newPatchCommand(app *App) *cobra.Command {
	var name, email string
	var active bool

	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Change some of a user's fields",
		Long: `Send only the fields given as flags.

Example:
  userconsole users patch 3 --email ann@y.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch models.UserPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = models.String(name)
			}
			if flags.Changed("email") {
				patch.Email = models.String(email)
			}
			if flags.Changed("active") {
				patch.IsActive = models.Bool(active)
			}
			if patch.Name == nil && patch.Email == nil && patch.IsActive == nil {
				return ErrNothingToPatch
			}

			api, err := app.API()
			if err != nil {
				return err
			}
			stop := app.spin("Saving user...")
			saved, err := api.PartialUpdate(cmd.Context(), id, patch)
			stop()
			if err != nil {
				return saveError(err)
			}
			return app.printUser(saved)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().BoolVar(&active, "active", true, "New active state")
	return cmd
}

func newDeleteCommand(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Long: `Delete a user after a y/N confirmation naming them. --yes skips the
question and the lookup of the name.

Example:
  userconsole users delete 3
  userconsole users delete 3 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u := &models.User{ID: id}
			confirm := func(string) bool { return true }
			if !yes {
				// the prompt names the user
				if u, err = app.getUser(cmd, id); err != nil {
					return err
				}
				confirm = app.confirm
			}
			list, err := app.listView()
			if err != nil {
				return err
			}

			deleted, err := list.Delete(cmd.Context(), *u, confirm)
			if err != nil {
				return errors.New(list.State().Alert)
			}
			if !deleted {
				fmt.Fprintln(app.Out, "Cancelled")
				return nil
			}
			return app.printDone(id, console.ActionDeleted)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func newSetActiveCommand(app *App, active bool) *cobra.Command {
	use, short := "deactivate <id>", "Mark a user inactive"
	action := console.ActionDeactivated
	if active {
		use, short = "activate <id>", "Mark a user active"
		action = console.ActionActivated
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			list, err := app.listView()
			if err != nil {
				return err
			}

			run := list.Deactivate
			if active {
				run = list.Activate
			}
			stop := app.spin("Updating user...")
			err = run(cmd.Context(), id)
			stop()
			if err != nil {
				return withReason(list.State().Alert, err)
			}
			return app.printDone(id, action)
		},
	}
}

// listView is a list whose row actions never refetch; each command prints
// its own result
func (a *App) listView() (*console.ListView, error) {
	api, err := a.API()
	if err != nil {
		return nil, err
	}
	logger, err := a.logger()
	if err != nil {
		return nil, err
	}
	list := console.NewListView(api, logger)
	list.SkipReload = true
	return list, nil
}

// showList fetches with the list's restored state and prints the result
func (a *App) showList(cmd *cobra.Command, list *console.ListView) error {
	stop := a.spin("Fetching users...")
	err := list.Reload(cmd.Context())
	stop()

	state := list.State()
	if err != nil {
		return withReason(state.Error, err)
	}
	return a.printUsers(state.Users)
}

func (a *App) getUser(cmd *cobra.Command, id int64) (*models.User, error) {
	api, err := a.API()
	if err != nil {
		return nil, err
	}

	stop := a.spin("Fetching user...")
	u, err := api.Get(cmd.Context(), id)
	stop()
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %s", id, console.FailureReason(err))
	}
	return u, nil
}

// fillForm sets the fields whose flag was given; the rest keep the form's
// defaults in create mode and the user's values in edit mode
func fillForm(cmd *cobra.Command, form *console.FormView, name, email string, active bool) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		form.SetName(name)
	}
	if flags.Changed("email") {
		form.SetEmail(email)
	}
	if flags.Changed("active") {
		form.SetActive(active)
	}
}

// submit sends form unless local validation fails
func (a *App) submit(cmd *cobra.Command, form *console.FormView) error {
	var saved *models.User
	form.OnSuccess = func(_ context.Context, u *models.User) { saved = u }

	stop := a.spin("Saving user...")
	err := form.Submit(cmd.Context())
	stop()
	if err != nil {
		return formError(form, err)
	}
	return a.printUser(saved)
}

// formError turns a failed submit into one line: the alert, or the field
// errors sorted by field
func formError(form *console.FormView, err error) error {
	if form.Alert != "" {
		return errors.New(form.Alert)
	}
	if len(form.Errors) == 0 {
		return err
	}
	return fmt.Errorf("invalid user: %s", joinFieldErrors(form.Errors))
}

func saveError(err error) error {
	if fields := fieldsOf(err); len(fields) > 0 {
		return fmt.Errorf("invalid user: %s", joinFieldErrors(fields))
	}
	return errors.New(console.MsgSaveFailed + err.Error())
}

// withReason appends err's reason to msg unless msg already is that reason
func withReason(msg string, err error) error {
	reason := console.FailureReason(err)
	if msg == "" || msg == reason {
		return errors.New(reason)
	}
	return fmt.Errorf("%s: %s", msg, reason)
}

func fieldsOf(err error) map[string]string {
	if apiErr, ok := client.AsError(err); ok && apiErr.Kind == client.KindValidation {
		return apiErr.Fields
	}
	return nil
}

func joinFieldErrors(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}

// confirm asks prompt on Out and reads y or yes from In
func (a *App) confirm(prompt string) bool {
	fmt.Fprintf(a.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(a.Out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func parseFilter(s string) (console.Filter, error) {
	f := console.ParseFilter(s)
	if string(f) != strings.ToLower(strings.TrimSpace(s)) {
		return "", fmt.Errorf("unknown filter %q (want all, active or inactive)", s)
	}
	return f, nil
}
