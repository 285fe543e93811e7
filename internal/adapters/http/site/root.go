// Package site serves the embedded browser questionnaire.
package site

import (
	"context"
	"io/fs"
	"net/http"
)

// indexFile is the questionnaire page served at "/".
const indexFile = "index.html"

// Register serves the questionnaire page at "/" and its assets by name.
// Only GET and HEAD are answered; unknown paths are 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	assets := http.FileServer(http.FS(static()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		// The page drives a live session; never serve it from cache.
		w.Header().Set("Cache-Control", "no-store")
		if r.URL.Path == "/" {
			http.ServeFileFS(w, r, static(), indexFile)
			return
		}
		assets.ServeHTTP(w, r)
	})
}

// Page returns the embedded questionnaire page.
func Page() ([]byte, error) {
	return fs.ReadFile(static(), indexFile)
}
