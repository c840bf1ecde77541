// Package web embeds the console's HTML templates and stylesheet.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names rendered by the handlers
const (
	PageIndex  = "index.tmpl"
	PageDelete = "delete.tmpl"
)

// Templates parses every embedded template. Each page is addressed by its
// file name.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.tmpl")
}

// Static serves the embedded static directory
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at build time
		panic(err)
	}
	return http.FS(sub)
}
