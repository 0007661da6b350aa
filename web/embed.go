// Package web holds the embedded ticket page and its assets.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl static/*
var assets embed.FS

var pages = template.Must(template.ParseFS(assets, "templates/*.tmpl"))

// Page is the data rendered by index.tmpl.
type Page struct {
	TicketID string
	Seed     int64
	Rows     [][]string
}

// RenderIndex writes the ticket page for p.
func RenderIndex(w io.Writer, p Page) error {
	return pages.ExecuteTemplate(w, "index.tmpl", p)
}

// Static serves the embedded assets under prefix.
func Static(prefix string) http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic("web: static assets missing: " + err.Error())
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
