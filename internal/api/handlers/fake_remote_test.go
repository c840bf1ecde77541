package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/osa911/userconsole/internal/client"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/models"
	"github.com/osa911/userconsole/internal/service"
	"github.com/osa911/userconsole/internal/web"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// remoteUsers is an in-memory users API speaking the REST dialect the
// console expects: trailing slashes, paginated lists, field-error maps
type remoteUsers struct {
	mu     sync.Mutex
	users  map[int64]models.User
	nextID int64
	calls  []string
	bodies []string
	down   bool
}

func newRemoteUsers(users ...models.User) *remoteUsers {
	r := &remoteUsers{users: map[int64]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *remoteUsers) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{$}", r.list)
	mux.HandleFunc("POST /api/users/{$}", r.create)
	mux.HandleFunc("GET /api/users/active_users/{$}", r.active)
	mux.HandleFunc("GET /api/users/{id}/{$}", r.get)
	mux.HandleFunc("PUT /api/users/{id}/{$}", r.update)
	mux.HandleFunc("DELETE /api/users/{id}/{$}", r.remove)
	mux.HandleFunc("POST /api/users/{id}/activate/{$}", r.setActive(true, "user activated"))
	mux.HandleFunc("POST /api/users/{id}/deactivate/{$}", r.setActive(false, "user deactivated"))

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(strings.NewReader(string(body)))

		r.mu.Lock()
		call := req.Method + " " + req.URL.Path
		if req.URL.RawQuery != "" {
			call += "?" + req.URL.RawQuery
		}
		r.calls = append(r.calls, call)
		r.bodies = append(r.bodies, string(body))
		down := r.down
		r.mu.Unlock()

		if down {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Database unavailable"})
			return
		}
		mux.ServeHTTP(w, req)
	})
}

func (r *remoteUsers) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *remoteUsers) lastBody() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[len(r.bodies)-1]
}

func (r *remoteUsers) reset() {
	r.mu.Lock()
	r.calls, r.bodies = nil, nil
	r.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (r *remoteUsers) sorted(keep func(models.User) bool) []models.User {
	out := []models.User{}
	for _, u := range r.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *remoteUsers) list(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	search := strings.ToLower(req.URL.Query().Get("search"))
	active := req.URL.Query().Get("is_active")
	results := r.sorted(func(u models.User) bool {
		if active != "" && strconv.FormatBool(u.IsActive) != active {
			return false
		}
		return search == "" ||
			strings.Contains(strings.ToLower(u.Name), search) ||
			strings.Contains(strings.ToLower(u.Email), search)
	})
	writeJSON(w, http.StatusOK, models.PaginatedResponse[models.User]{Count: len(results), Results: results})
}

func (r *remoteUsers) active(w http.ResponseWriter, _ *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	writeJSON(w, http.StatusOK, r.sorted(func(u models.User) bool { return u.IsActive }))
}

func (r *remoteUsers) decode(w http.ResponseWriter, req *http.Request) (models.UserInput, bool) {
	var input models.UserInput
	if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return input, false
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, input.Email) {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"user with this email already exists."}})
			return input, false
		}
	}
	return input, true
}

func (r *remoteUsers) create(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	input, ok := r.decode(w, req)
	if !ok {
		return
	}
	r.nextID++
	u := models.User{ID: r.nextID, Name: input.Name, Email: input.Email, IsActive: input.IsActive == nil || *input.IsActive}
	r.users[u.ID] = u
	writeJSON(w, http.StatusCreated, u)
}

func (r *remoteUsers) lookup(w http.ResponseWriter, req *http.Request) (models.User, bool) {
	id, _ := strconv.ParseInt(req.PathValue("id"), 10, 64)
	u, ok := r.users[id]
	if !ok {
		notFound(w)
	}
	return u, ok
}

func (r *remoteUsers) get(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.lookup(w, req); ok {
		writeJSON(w, http.StatusOK, u)
	}
}

func (r *remoteUsers) update(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(w, req)
	if !ok {
		return
	}
	delete(r.users, u.ID)
	input, ok := r.decode(w, req)
	if !ok {
		r.users[u.ID] = u
		return
	}
	u.Name, u.Email = input.Name, input.Email
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}
	r.users[u.ID] = u
	writeJSON(w, http.StatusOK, u)
}

func (r *remoteUsers) remove(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.lookup(w, req); ok {
		delete(r.users, u.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (r *remoteUsers) setActive(active bool, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		defer r.mu.Unlock()
		u, ok := r.lookup(w, req)
		if !ok {
			return
		}
		u.IsActive = active
		r.users[u.ID] = u
		writeJSON(w, http.StatusOK, models.ActionResponse{Status: status, User: u})
	}
}

// newConsole wires the handlers to remote through the real client and
// facade, with routes matching the server's
func newConsole(t *testing.T, remote *remoteUsers) *gin.Engine {
	t.Helper()

	srv := httptest.NewServer(remote.handler())
	t.Cleanup(srv.Close)

	apiURL := srv.URL + "/api"
	users := service.NewUserService(client.New(client.Config{
		BaseURL:    apiURL,
		HTTPClient: srv.Client(),
		Logger:     logging.Discard(),
	}))

	tmpl, err := web.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	consoleHandler := NewConsoleHandler(users, apiURL, logging.Discard())
	r.GET("/", consoleHandler.Index)
	r.POST("/users", consoleHandler.Create)
	r.POST("/users/:id", consoleHandler.Update)
	r.GET("/users/:id/delete", consoleHandler.ConfirmDelete)
	r.POST("/users/:id/delete", consoleHandler.Delete)
	r.POST("/users/:id/activate", consoleHandler.Activate)
	r.POST("/users/:id/deactivate", consoleHandler.Deactivate)
	r.GET("/health", NewHealthHandler(users, apiURL).Check)
	return r
}

func annAndBo() []models.User {
	return []models.User{
		{ID: 1, Name: "Ann", Email: "ann@x.com", IsActive: true},
		{ID: 2, Name: "Bo", Email: "bo@x.com", IsActive: false},
	}
}
