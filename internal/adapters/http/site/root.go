// Package site serves the embedded landing and input-format pages.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded site to the catch-all route of mux.
// Unknown paths fall through to the file server's 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
