// Package spa serves the bundled single-page front-end in production mode.
package spa

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// Handler serves files from a directory and answers every unknown path with
// index.html so client-side routes resolve.
type Handler struct {
	fsys       fs.FS
	fileServer http.Handler
}

// NewHandler serves the directory dir.
func NewHandler(dir string) *Handler {
	return NewFSHandler(os.DirFS(dir))
}

// NewFSHandler serves fsys.
func NewFSHandler(fsys fs.FS) *Handler {
	return &Handler{
		fsys:       fsys,
		fileServer: http.FileServer(http.FS(fsys)),
	}
}

// ServeHTTP answers GET and HEAD; any other method is a plain 404 so the
// handler can sit on the catch-all pattern.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" {
		if info, err := fs.Stat(h.fsys, name); err == nil && !info.IsDir() {
			h.fileServer.ServeHTTP(w, r)
			return
		}
	}
	h.serveIndex(w, r)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.fsys, indexFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}
