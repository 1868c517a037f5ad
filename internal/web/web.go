package web

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/hearify/internal/metrics"
	"github.com/desertthunder/hearify/internal/server"
	"github.com/desertthunder/hearify/internal/shared"
	"github.com/desertthunder/hearify/internal/tasks"
	"github.com/go-chi/httprate"
	"github.com/gorilla/csrf"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	flashKey       = "flash"
	sessionCookie  = "hearify_session"
	csrfCookie     = "hearify_csrf"
	csrfField      = "csrf_token"
	sessionTimeout = 24 * time.Hour
)

// Searcher answers lyric queries. Implemented by [tasks.SearchEngine].
type Searcher interface {
	Search(ctx context.Context, query string) (*tasks.SearchResponse, error)
}

// Opts configures an [App].
type Opts struct {
	Searcher          Searcher
	Logger            *log.Logger
	SessionSecret     string // Derives the CSRF key
	RequestsPerMinute int    // Per-IP limit; zero or less disables limiting
	Secure            bool   // Mark cookies Secure (HTTPS deployments)
}

// App is the search web application.
type App struct {
	searcher  Searcher
	logger    *log.Logger
	sessions  *scs.SessionManager
	templates *template.Template
	router    *server.BasicRouter
}

// pageData is rendered by templates/index.html.
type pageData struct {
	Query     string
	Response  *tasks.SearchResponse
	Flash     string
	CSRFField template.HTML
}

// New parses the embedded templates and wires routes and middleware.
func New(opts Opts) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	sessions := scs.New()
	sessions.Lifetime = sessionTimeout
	sessions.Cookie = scs.SessionCookie{
		Name:     sessionCookie,
		Path:     "/",
		HttpOnly: true,
		Persist:  true,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	}

	app := &App{
		searcher:  opts.Searcher,
		logger:    shared.WithLogger(opts.Logger, "component", "web"),
		sessions:  sessions,
		templates: tmpl,
		router:    server.NewBasicRouter(),
	}

	key := sha256.Sum256([]byte(opts.SessionSecret))

	app.router.Use(
		server.Recoverer(app.logger),
		server.RequestLogger(app.logger),
		metrics.Middleware,
	)
	if opts.RequestsPerMinute > 0 {
		app.router.Use(httprate.LimitByIP(opts.RequestsPerMinute, time.Minute))
	}
	app.router.Use(
		sessions.LoadAndSave,
		csrf.Protect(key[:],
			csrf.Secure(opts.Secure),
			csrf.Path("/"),
			csrf.CookieName(csrfCookie),
			csrf.FieldName(csrfField),
			csrf.ErrorHandler(http.HandlerFunc(app.csrfFailure)),
		),
	)

	app.router.HandleFunc(http.MethodGet, "/{$}", app.index)
	app.router.HandleFunc(http.MethodPost, "/{$}", app.search)
	app.router.HandleFunc(http.MethodGet, "/api/search", app.apiSearch)
	app.router.Handler(newOpsHandler())

	return app, nil
}

// ServeHTTP implements [http.Handler].
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, pageData{})
}

// search handles the form submission. A catalog warning is stored as a flash message
// and shown by the page rendered for this request.
func (a *App) search(w http.ResponseWriter, r *http.Request) {
	resp, err := a.searcher.Search(r.Context(), r.PostFormValue("query"))
	if err != nil {
		a.logger.Error("search failed", "error", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	if resp.Warning != "" {
		a.sessions.Put(r.Context(), flashKey, resp.Warning)
	}
	a.render(w, r, pageData{Query: resp.Query, Response: resp})
}

func (a *App) apiSearch(w http.ResponseWriter, r *http.Request) {
	resp, err := a.searcher.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.logger.Error("search failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// opsHandler serves the health check and the Prometheus scrape endpoint.
type opsHandler struct {
	metrics http.Handler
}

func newOpsHandler() *opsHandler {
	return &opsHandler{metrics: metrics.Handler()}
}

func (h *opsHandler) Routes() []string {
	return []string{"GET /healthz", "GET /metrics"}
}

func (h *opsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/healthz":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case "/metrics":
		h.metrics.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (a *App) csrfFailure(w http.ResponseWriter, r *http.Request) {
	a.logger.Warn("csrf validation failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
}

func (a *App) render(w http.ResponseWriter, r *http.Request, data pageData) {
	data.Flash = a.sessions.PopString(r.Context(), flashKey)
	data.CSRFField = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		a.logger.Error("failed to render page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
