package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/osa911/userconsole/internal/console"
	"github.com/osa911/userconsole/internal/models"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

func (a *App) checkOutput() error {
	switch a.output {
	case "", OutputTable, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", a.output)
	}
}

func (a *App) jsonOutput() bool {
	return a.output == OutputJSON
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func status(u models.User) string {
	if u.IsActive {
		return "Active"
	}
	return "Inactive"
}

// printUsers renders users as a table with the list footer, or as a JSON array
func (a *App) printUsers(users []models.User) error {
	if a.jsonOutput() {
		if users == nil {
			users = []models.User{}
		}
		return writeJSON(a.Out, users)
	}

	if len(users) == 0 {
		fmt.Fprintln(a.Out, "No users found")
	} else {
		tw := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSTATUS")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, status(u))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.Out, console.ListState{Users: users}.CountLabel())
	return nil
}

// printUser renders a single user
func (a *App) printUser(u *models.User) error {
	if a.jsonOutput() {
		return writeJSON(a.Out, u)
	}

	tw := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Status:\t%s\n", status(*u))
	return tw.Flush()
}

// printDone renders the outcome of a row action
func (a *App) printDone(id int64, action console.Action) error {
	if a.jsonOutput() {
		return writeJSON(a.Out, map[string]interface{}{"id": id, "status": string(action)})
	}
	fmt.Fprintf(a.Out, "User %d %s\n", id, action)
	return nil
}
