package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/osa911/userconsole/internal/config"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	status int
	body   string
}

// scripted answers "METHOD /path" with a canned reply and records every
// request line, query included, along with its body
type scripted struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   []string
	bodies  []string
}

func newScripted(replies map[string]reply) *scripted {
	return &scripted{replies: replies}
}

func (s *scripted) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	call := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		call += "?" + r.URL.RawQuery
	}
	s.calls = append(s.calls, call)
	s.bodies = append(s.bodies, string(body))
	rep, ok := s.replies[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		rep = reply{http.StatusNotFound, `{"detail":"Not found."}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

func (s *scripted) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *scripted) lastBody() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[len(s.bodies)-1]
}

const (
	ann     = `{"id":1,"name":"Ann","email":"ann@x.com","is_active":true}`
	bo      = `{"id":2,"name":"Bo","email":"bo@x.com","is_active":false}`
	twoRows = `{"count":2,"next":null,"previous":null,"results":[` + ann + `,` + bo + `]}`
)

type runResult struct {
	out string
	err error
}

// run executes the CLI with args against remote, feeding in as stdin
func run(t *testing.T, remote http.Handler, dir, in string, args ...string) runResult {
	t.Helper()

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	app := &App{
		In:         strings.NewReader(in),
		Out:        &out,
		Err:        io.Discard,
		Logger:     logging.Discard(),
		ConfigDir:  dir,
		LoadConfig: func() (*config.Config, error) { return &config.Config{}, nil },
	}

	root := NewRootCommand(app)
	root.SetArgs(append([]string{"--api-url", srv.URL + "/api"}, args...))
	err := root.ExecuteContext(context.Background())
	return runResult{out: out.String(), err: err}
}

func TestUsersListTable(t *testing.T) {
	remote := newScripted(map[string]reply{"GET /api/users/": {200, twoRows}})

	res := run(t, remote, t.TempDir(), "", "users", "list")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"GET /api/users/"}, remote.recorded())
	assert.Contains(t, res.out, "ID  NAME  EMAIL      STATUS")
	assert.Contains(t, res.out, "Inactive")
	assert.Contains(t, res.out, "Total: 2 users")
}

func TestUsersListQueries(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"inactive filter", []string{"--filter", "inactive"}, "GET /api/users/?is_active=false"},
		{"active filter with page", []string{"--filter", "active", "--page", "2"}, "GET /api/users/?is_active=true&page=2"},
		{"search wins", []string{"--filter", "active", "--search", "ann"}, "GET /api/users/?search=ann"},
		{"blank search lists", []string{"--search", "  "}, "GET /api/users/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newScripted(map[string]reply{"GET /api/users/": {200, twoRows}})
			res := run(t, remote, t.TempDir(), "", append([]string{"users", "list"}, tt.args...)...)
			require.NoError(t, res.err)
			assert.Equal(t, []string{tt.want}, remote.recorded())
		})
	}
}

func TestUsersListRejectsUnknownFilter(t *testing.T) {
	remote := newScripted(nil)
	res := run(t, remote, t.TempDir(), "", "users", "list", "--filter", "banned")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown filter")
	assert.Empty(t, remote.recorded())
}

func TestUsersListJSON(t *testing.T) {
	remote := newScripted(map[string]reply{"GET /api/users/": {200, twoRows}})

	res := run(t, remote, t.TempDir(), "", "users", "list", "-o", "json")
	require.NoError(t, res.err)

	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(res.out), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Bo", users[1].Name)
}

func TestUsersListEmpty(t *testing.T) {
	remote := newScripted(map[string]reply{
		"GET /api/users/": {200, `{"count":0,"next":null,"previous":null,"results":[]}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No users found")
	assert.Contains(t, res.out, "Total: 0 users")
}

func TestUsersListFailure(t *testing.T) {
	remote := newScripted(map[string]reply{
		"GET /api/users/": {500, `{"detail":"Database unavailable"}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "list")
	require.Error(t, res.err)
	assert.Equal(t, "Database unavailable", res.err.Error())

	res = run(t, remote, t.TempDir(), "", "users", "search", "ann")
	require.Error(t, res.err)
	assert.Equal(t, "Search failed: Database unavailable", res.err.Error())
}

func TestUsersSearchAndActive(t *testing.T) {
	remote := newScripted(map[string]reply{
		"GET /api/users/":              {200, twoRows},
		"GET /api/users/active_users/": {200, `[` + ann + `]`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "search", "bo")
	require.NoError(t, res.err)

	res = run(t, remote, t.TempDir(), "", "users", "active")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Total: 1 user\n")
	assert.Equal(t, []string{"GET /api/users/?search=bo", "GET /api/users/active_users/"}, remote.recorded())
}

func TestUsersGet(t *testing.T) {
	remote := newScripted(map[string]reply{"GET /api/users/1/": {200, ann}})

	res := run(t, remote, t.TempDir(), "", "users", "get", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "ann@x.com")
	assert.Contains(t, res.out, "Active")

	res = run(t, remote, t.TempDir(), "", "users", "get", "9")
	require.Error(t, res.err)
	assert.Equal(t, "failed to load user 9: Not found.", res.err.Error())
}

func TestUsersRejectInvalidID(t *testing.T) {
	for _, args := range [][]string{
		{"users", "get", "abc"},
		{"users", "delete", "0", "--yes"},
		{"users", "activate", "-3"},
	} {
		remote := newScripted(nil)
		res := run(t, remote, t.TempDir(), "", args...)
		assert.Error(t, res.err, args)
		assert.Empty(t, remote.recorded(), args)
	}
}

func TestUsersCreateValidatesLocally(t *testing.T) {
	remote := newScripted(nil)

	res := run(t, remote, t.TempDir(), "", "users", "create", "--name", "Ann", "--email", "not-an-email")
	require.Error(t, res.err)
	assert.Equal(t, "invalid user: email: Invalid email format", res.err.Error())

	res = run(t, remote, t.TempDir(), "", "users", "create")
	require.Error(t, res.err)
	assert.Equal(t, "invalid user: email: Email is required; name: Name is required", res.err.Error())

	assert.Empty(t, remote.recorded())
}

func TestUsersCreate(t *testing.T) {
	remote := newScripted(map[string]reply{
		"POST /api/users/": {201, `{"id":3,"name":"Cy","email":"cy@x.com","is_active":false}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "create", "--name", "Cy", "--email", "cy@x.com", "--active=false")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"POST /api/users/"}, remote.recorded())
	assert.JSONEq(t, `{"name":"Cy","email":"cy@x.com","is_active":false}`, remote.lastBody())
	assert.Contains(t, res.out, "cy@x.com")
}

func TestUsersCreateServerFieldErrors(t *testing.T) {
	remote := newScripted(map[string]reply{
		"POST /api/users/": {400, `{"email":["user with this email already exists."]}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "create", "--name", "Ann", "--email", "ann@x.com")
	require.Error(t, res.err)
	assert.Equal(t, "invalid user: email: user with this email already exists.", res.err.Error())
}

func TestUsersCreateTransportFailure(t *testing.T) {
	remote := newScripted(map[string]reply{
		"POST /api/users/": {500, `{"detail":"Database unavailable"}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "create", "--name", "Ann", "--email", "ann@x.com")
	require.Error(t, res.err)
	assert.True(t, strings.HasPrefix(res.err.Error(), "Failed to save user: "), res.err.Error())
}

func TestUsersUpdateKeepsUnsetFields(t *testing.T) {
	remote := newScripted(map[string]reply{
		"GET /api/users/2/": {200, bo},
		"PUT /api/users/2/": {200, `{"id":2,"name":"Bo Lee","email":"bo@x.com","is_active":false}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "update", "2", "--name", "Bo Lee")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"GET /api/users/2/", "PUT /api/users/2/"}, remote.recorded())
	assert.JSONEq(t, `{"name":"Bo Lee","email":"bo@x.com","is_active":false}`, remote.lastBody())
	assert.Contains(t, res.out, "Bo Lee")

	res = run(t, remote, t.TempDir(), "", "users", "update", "2", "--active")
	require.NoError(t, res.err)
	assert.JSONEq(t, `{"name":"Bo","email":"bo@x.com","is_active":true}`, remote.lastBody())
}

func TestUsersUpdateUnknownUser(t *testing.T) {
	remote := newScripted(nil)

	res := run(t, remote, t.TempDir(), "", "users", "update", "9", "--name", "Zed")
	require.Error(t, res.err)
	assert.Equal(t, "failed to load user 9: Not found.", res.err.Error())
	assert.Equal(t, []string{"GET /api/users/9/"}, remote.recorded(), "nothing is sent for a missing user")
}

func TestUsersPatchSendsOnlyGivenFields(t *testing.T) {
	remote := newScripted(map[string]reply{
		"PATCH /api/users/1/": {200, `{"id":1,"name":"Ann","email":"ann@y.com","is_active":true}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "patch", "1", "--email", "ann@y.com")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"PATCH /api/users/1/"}, remote.recorded())
	assert.JSONEq(t, `{"email":"ann@y.com"}`, remote.lastBody())

	res = run(t, remote, t.TempDir(), "", "users", "patch", "1")
	assert.ErrorIs(t, res.err, ErrNothingToPatch)
}

func TestUsersDeleteAsksFirst(t *testing.T) {
	remote := newScripted(map[string]reply{
		"GET /api/users/1/":    {200, ann},
		"DELETE /api/users/1/": {204, ""},
	})

	res := run(t, remote, t.TempDir(), "n\n", "users", "delete", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, `Are you sure you want to delete user "Ann"? [y/N]: `)
	assert.Contains(t, res.out, "Cancelled")
	assert.Equal(t, []string{"GET /api/users/1/"}, remote.recorded())

	res = run(t, remote, t.TempDir(), "", "users", "delete", "1")
	require.NoError(t, res.err, "no answer declines")
	assert.Contains(t, res.out, "Cancelled")

	res = run(t, remote, t.TempDir(), "yes\n", "users", "delete", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "User 1 deleted")
	assert.Equal(t, "DELETE /api/users/1/", remote.recorded()[len(remote.recorded())-1])
}

func TestUsersDeleteWithYes(t *testing.T) {
	remote := newScripted(map[string]reply{
		"DELETE /api/users/1/": {204, ""},
	})

	res := run(t, remote, t.TempDir(), "", "users", "delete", "1", "--yes")
	require.NoError(t, res.err)
	assert.NotContains(t, res.out, "Are you sure")
	assert.Equal(t, []string{"DELETE /api/users/1/"}, remote.recorded())
}

func TestUsersDeleteFailure(t *testing.T) {
	remote := newScripted(map[string]reply{
		"DELETE /api/users/1/": {404, `{"detail":"Not found."}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "delete", "1", "-y")
	require.Error(t, res.err)
	assert.Equal(t, "Failed to delete user: Not found.", res.err.Error())
}

func TestUsersActivateAndDeactivate(t *testing.T) {
	remote := newScripted(map[string]reply{
		"POST /api/users/2/activate/":   {200, `{"status":"user activated","user":` + bo + `}`},
		"POST /api/users/1/deactivate/": {500, `{"detail":"Database unavailable"}`},
	})

	res := run(t, remote, t.TempDir(), "", "users", "activate", "2")
	require.NoError(t, res.err)
	assert.Equal(t, "User 2 activated\n", res.out)

	res = run(t, remote, t.TempDir(), "", "users", "deactivate", "1")
	require.Error(t, res.err)
	assert.Equal(t, "Failed to deactivate user: Database unavailable", res.err.Error())

	assert.Equal(t, []string{"POST /api/users/2/activate/", "POST /api/users/1/deactivate/"}, remote.recorded())
}

func TestConfigSetShowPath(t *testing.T) {
	dir := t.TempDir()
	remote := newScripted(nil)

	res := run(t, remote, dir, "", "config", "path")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No config file yet")

	res = run(t, remote, dir, "", "config", "set", "--api-url", "http://users.internal/api/", "--public-url", "console.example.com")
	require.NoError(t, res.err)

	file, err := LoadFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://users.internal/api/", file.APIURL)
	assert.Equal(t, "console.example.com", file.PublicURL)

	res = run(t, remote, dir, "", "config", "path")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "config.json")
}

func TestConfigResolutionOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveFile(dir, &FileConfig{APIURL: "http://file/api"}))

	resolve := func(env *config.Config, flag string) string {
		app := &App{ConfigDir: dir, apiURL: flag, LoadConfig: func() (*config.Config, error) { return env, nil }}
		cfg, err := app.Config()
		require.NoError(t, err)
		return cfg.BaseURL()
	}

	assert.Equal(t, "http://file/api", resolve(&config.Config{}, ""))
	assert.Equal(t, "http://env/api", resolve(&config.Config{APIURL: "http://env/api"}, ""))
	assert.Equal(t, "http://flag/api", resolve(&config.Config{APIURL: "http://env/api"}, "http://flag/api"))
}

func TestLoadFileRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveFile(dir, &FileConfig{}))
	path, err := ConfigPath(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err = LoadFile(dir)
	assert.Error(t, err)
}

func TestVersionAndOutputFlag(t *testing.T) {
	remote := newScripted(nil)

	res := run(t, remote, t.TempDir(), "", "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.out, "userconsole dev"), res.out)

	res = run(t, remote, t.TempDir(), "", "version", "--output", "json")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, `"go_version"`)

	res = run(t, remote, t.TempDir(), "", "users", "list", "--output", "yaml")
	require.Error(t, res.err)
	assert.Empty(t, remote.recorded())
}
