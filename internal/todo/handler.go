package todo

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler serves the task pages.
type Handler struct {
	store   Store
	metrics *Metrics
}

// NewHandler builds a handler; metrics may be nil.
func NewHandler(store Store, metrics *Metrics) *Handler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handler{store: store, metrics: metrics}
}

// Router wires the routes behind request logging and panic recovery.
func (h *Handler) Router(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(&log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/update_task/{pk}", func(r chi.Router) {
		r.Get("/", h.updateForm)
		r.Post("/", h.update)
	})
	r.Route("/delete_task/{pk}", func(r chi.Router) {
		r.Get("/", h.deleteForm)
		r.Post("/", h.delete)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

type listPage struct {
	Title string
	Tasks []Task
	Draft string
	Error string
}

type taskPage struct {
	Title string
	Task  Task
	Error string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, "", "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, code int, draft, msg string) {
	tasks, err := h.store.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render(w, r, code, "list.html", listPage{Title: "Tasks", Tasks: tasks, Draft: draft, Error: msg})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	t := Task{Title: strings.TrimSpace(r.FormValue("title")), Complete: formBool(r.FormValue("complete"))}
	if err := t.Validate(); err != nil {
		h.renderList(w, r, http.StatusBadRequest, t.Title, err.Error())
		return
	}
	if err := h.store.Create(r.Context(), &t); err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.created.Inc()
	zerolog.Ctx(r.Context()).Info().Int64("task", t.ID).Msg("task created")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) updateForm(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, "update.html", taskPage{Title: "Update task", Task: t})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	t.Title = strings.TrimSpace(r.FormValue("title"))
	t.Complete = formBool(r.FormValue("complete"))
	if err := t.Validate(); err != nil {
		render(w, r, http.StatusBadRequest, "update.html", taskPage{Title: "Update task", Task: t, Error: err.Error()})
		return
	}
	if err := h.store.Update(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.updated.Inc()
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, "delete.html", taskPage{Title: "Delete task", Task: t})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), t.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.deleted.Inc()
	zerolog.Ctx(r.Context()).Info().Int64("task", t.ID).Msg("task deleted")
	http.Redirect(w, r, "/", http.StatusFound)
}

// load fetches the task named by {pk}, answering 404 itself when absent.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Task, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pk"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return Task{}, false
	}
	t, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return Task{}, false
	}
	return t, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// render executes into a buffer so a template error never sends a half page.
func render(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// formBool treats any value but empty, "0", "false" and "off" as checked.
func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}
