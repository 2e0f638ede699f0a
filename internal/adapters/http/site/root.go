// Package site serves the embedded map viewer.
package site

import (
	"context"
	"errors"
	"net/http"
)

// ErrServe reports a failure to serve the viewer.
var ErrServe = errors.New("viewer serve failed")

// Register attaches the viewer to mux at /. API routes registered with a
// more specific pattern take precedence.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", NewRootHandler())
}

// RootHandler serves the embedded viewer files.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP serves index.html at / and the viewer assets below it.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	h.files.ServeHTTP(w, r)
}
