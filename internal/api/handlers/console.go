package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/osa911/userconsole/internal/api/sanitization"
	"github.com/osa911/userconsole/internal/console"
	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/models"
	"github.com/osa911/userconsole/internal/utils"
	"github.com/osa911/userconsole/internal/version"
	"github.com/osa911/userconsole/internal/web"

	"github.com/gin-gonic/gin"
)

// MsgLoadFailed prefixes the alert shown when a user cannot be opened
const MsgLoadFailed = "Failed to load user: "

// ConsoleHandler renders the user console. Every request builds fresh views
// from the query string; nothing is kept between requests.
type ConsoleHandler struct {
	api    interfaces.UserAPI
	apiURL string
	logger *logging.Logger
}

func NewConsoleHandler(api interfaces.UserAPI, apiURL string, logger *logging.Logger) *ConsoleHandler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &ConsoleHandler{api: api, apiURL: apiURL, logger: logger}
}

// Index renders the list, with the create or edit form open when asked
func (h *ConsoleHandler) Index(c *gin.Context) {
	q := queryFrom(c)
	root := h.newRoot(q)
	alert := c.Query(paramAlert)

	if c.Query(paramForm) == "new" {
		root.Create()
	} else if raw := c.Query(paramEdit); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			var u *models.User
			if u, err = h.api.Get(c.Request.Context(), id); err == nil {
				root.Edit(*u)
			}
		}
		if err != nil {
			h.logger.Warn("Cannot open user %q for editing: %v", raw, err)
			alert = MsgLoadFailed + console.FailureReason(err)
		}
	}

	h.render(c, http.StatusOK, root, q, alert)
}

// Create submits the create form
func (h *ConsoleHandler) Create(c *gin.Context) {
	h.submit(c, console.NewFormView(h.api, nil))
}

// Update submits the edit form of the user in the path
func (h *ConsoleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.submit(c, console.NewFormView(h.api, &models.User{ID: id}))
}

// ConfirmDelete asks before deleting the user in the path. The list links
// carry the name; only a link without one loads the user.
func (h *ConsoleHandler) ConfirmDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	q := queryFrom(c)

	u := &models.User{ID: id, Name: c.Query(paramName)}
	if u.Name == "" {
		var err error
		if u, err = h.api.Get(c.Request.Context(), id); err != nil {
			h.logger.Warn("Cannot load user %d for deletion: %v", id, err)
			utils.RedirectSeeOther(c, q.URL("/", paramAlert, MsgLoadFailed+console.FailureReason(err)))
			return
		}
	}

	c.HTML(http.StatusOK, web.PageDelete, deletePage{
		User:    *u,
		Prompt:  console.DeletePrompt(*u),
		Query:   q,
		APIURL:  h.apiURL,
		Version: version.Version,
	})
}

// Delete removes the user in the path only when the form says confirm=yes
func (h *ConsoleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	q := queryFrom(c)
	list := h.newList(q)

	u := models.User{ID: id, Name: c.PostForm(paramName)}
	confirmed := func(string) bool { return c.PostForm("confirm") == "yes" }
	if _, err := list.Delete(c.Request.Context(), u, confirmed); err != nil {
		h.logger.Warn("Delete of user %d failed: %v", id, err)
	}

	utils.RedirectSeeOther(c, q.URL("/", paramAlert, list.State().Alert))
}

// Activate marks the user in the path active
func (h *ConsoleHandler) Activate(c *gin.Context) {
	h.rowAction(c, (*console.ListView).Activate)
}

// Deactivate marks the user in the path inactive
func (h *ConsoleHandler) Deactivate(c *gin.Context) {
	h.rowAction(c, (*console.ListView).Deactivate)
}

func (h *ConsoleHandler) rowAction(c *gin.Context, action func(*console.ListView, context.Context, int64) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	q := queryFrom(c)
	list := h.newList(q)

	// The failure is carried to the next page as an alert
	_ = action(list, c.Request.Context(), id)

	utils.RedirectSeeOther(c, q.URL("/", paramAlert, list.State().Alert))
}

// submit fills form from the POST body and sends it. Success redirects to
// the list; failure re-renders the page with the form still open.
func (h *ConsoleHandler) submit(c *gin.Context, form *console.FormView) {
	q := queryFrom(c)

	form.SetName(sanitization.SanitizeName(c.PostForm("name")))
	form.SetEmail(sanitization.SanitizeEmail(c.PostForm("email")))
	form.SetActive(checked(c.PostForm("is_active")))

	if err := form.Submit(c.Request.Context()); err == nil {
		utils.RedirectSeeOther(c, q.URL("/"))
		return
	}

	status := http.StatusUnprocessableEntity
	if form.Alert != "" {
		status = http.StatusBadGateway
	}

	root := h.newRoot(q)
	root.Show(form)
	h.render(c, status, root, q, "")
}

// render reloads the list with the restored filter and search and renders
// the index page. A failed fetch is reported as 502.
func (h *ConsoleHandler) render(c *gin.Context, status int, root *console.RootView, q pageQuery, alert string) {
	if err := root.List.Reload(c.Request.Context()); err != nil && status == http.StatusOK {
		status = http.StatusBadGateway
	}
	c.HTML(status, web.PageIndex, newIndexPage(root, q, alert, h.apiURL))
}

func (h *ConsoleHandler) newRoot(q pageQuery) *console.RootView {
	root := console.NewRootView(h.api, h.logger)
	root.List.Restore(q.Filter, q.Search)
	return root
}

// newList is a list for a single row action; the redirect does the reload
func (h *ConsoleHandler) newList(q pageQuery) *console.ListView {
	list := console.NewListView(h.api, h.logger)
	list.Restore(q.Filter, q.Search)
	list.SkipReload = true
	return list
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatus(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func checked(value string) bool {
	switch value {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}
