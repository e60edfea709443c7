package report

import (
	"net/http"
	"path"
	"strings"
)

// handlerOptions holds configuration for a report Handler.
// This is unexported; use HandlerOption functions to configure.
type handlerOptions struct {
	// PathPrefix is where the handler is mounted (e.g. "/reports").
	PathPrefix string
	// Index is the report file served for the root path.
	Index string
}

// HandlerOption configures a report Handler.
type HandlerOption func(*handlerOptions)

// WithPathPrefix sets the path prefix where the handler is mounted.
// For example, "/reports" if mounted at that path.
func WithPathPrefix(prefix string) HandlerOption {
	return func(o *handlerOptions) {
		o.PathPrefix = prefix
	}
}

// WithIndex sets the report file, relative to the served directory, shown for the root path.
// Default is "html/report.html".
func WithIndex(index string) HandlerOption {
	return func(o *handlerOptions) {
		o.Index = index
	}
}

// Handler serves a reports directory with the HTML report and its screenshots.
type Handler struct {
	options handlerOptions
	mux     *http.ServeMux
}

// NewHandler serves the files below dir.
func NewHandler(dir string, opts ...HandlerOption) *Handler {
	options := handlerOptions{
		Index: "html/report.html",
	}
	for _, opt := range opts {
		opt(&options)
	}
	options.PathPrefix = strings.TrimRight(options.PathPrefix, "/")

	h := &Handler{
		options: options,
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("/{$}", h.root)
	h.mux.Handle("/", http.FileServer(http.Dir(dir)))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.options.PathPrefix != "" {
		http.StripPrefix(h.options.PathPrefix, h.mux).ServeHTTP(w, r)
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, path.Join(h.options.PathPrefix+"/", h.options.Index), http.StatusTemporaryRedirect)
}
