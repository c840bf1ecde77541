package handlers

import (
	"net/url"
	"strings"

	"github.com/osa911/userconsole/internal/console"
	"github.com/osa911/userconsole/internal/models"
	"github.com/osa911/userconsole/internal/version"

	"github.com/gin-gonic/gin"
)

// Query parameters carrying page state between requests
const (
	paramSearch = "search"
	paramFilter = "filter"
	paramForm   = "form"
	paramEdit   = "edit"
	paramAlert  = "alert"
	paramName   = "name"
)

// pageQuery is the list state a page links back to
type pageQuery struct {
	Search string
	Filter console.Filter
}

// queryFrom reads search and filter from the query string or, for POSTs,
// from the form body
func queryFrom(c *gin.Context) pageQuery {
	search := c.Query(paramSearch)
	filter := c.Query(paramFilter)
	if c.Request.Method == "POST" {
		search = c.PostForm(paramSearch)
		filter = c.PostForm(paramFilter)
	}
	return pageQuery{Search: search, Filter: console.ParseFilter(filter)}
}

// URL builds path with the search and filter plus extra key/value pairs.
// Empty values and the default filter are omitted.
func (q pageQuery) URL(path string, pairs ...string) string {
	values := url.Values{}
	if strings.TrimSpace(q.Search) != "" {
		values.Set(paramSearch, q.Search)
	}
	if q.Filter != console.FilterAll {
		values.Set(paramFilter, string(q.Filter))
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			values.Set(pairs[i], pairs[i+1])
		}
	}

	if encoded := values.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// Cleared keeps the filter and drops the search
func (q pageQuery) Cleared() pageQuery {
	return pageQuery{Filter: q.Filter}
}

type filterOption struct {
	Value    console.Filter
	Label    string
	Selected bool
}

func filterOptions(selected console.Filter) []filterOption {
	options := make([]filterOption, 0, len(console.Filters))
	for _, f := range console.Filters {
		options = append(options, filterOption{Value: f, Label: f.Label(), Selected: f == selected})
	}
	return options
}

// indexPage is rendered by the index template
type indexPage struct {
	List    console.ListState
	Filters []filterOption
	Form    *console.FormView
	Alert   string
	Query   pageQuery
	APIURL  string
	Version string
}

// deletePage is rendered by the delete confirmation template
type deletePage struct {
	User    models.User
	Prompt  string
	Query   pageQuery
	APIURL  string
	Version string
}

func newIndexPage(root *console.RootView, q pageQuery, alert, apiURL string) indexPage {
	state := root.List.State()
	return indexPage{
		List:    state,
		Filters: filterOptions(state.Filter),
		Form:    root.Form,
		Alert:   alert,
		Query:   q,
		APIURL:  apiURL,
		Version: version.Version,
	}
}
