package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"

	"airdrop-go/internal/model"
	"airdrop-go/internal/repositories"
	"airdrop-go/internal/services/loading"
)

type Catalog interface {
	ListProjectNames(ctx context.Context) ([]string, error)
	GetProjectInfo(ctx context.Context, name string) (model.Project, error)
	GetRequirements(ctx context.Context, name string) ([]model.Requirement, error)
	Search(ctx context.Context, column, value string) ([]model.Project, error)
	FilterByStatus(ctx context.Context, status string) ([]model.Project, error)
	GroupByStatus(ctx context.Context) (map[string][]model.Project, error)
}

type Answerer interface {
	Answer(ctx context.Context, text string) string
}

type Reloader interface {
	Path() string
	Reload(ctx context.Context, path string) (loading.Summary, error)
}

type Handler struct {
	catalog  Catalog
	answerer Answerer
	reloader Reloader
	log      *slog.Logger
}

func NewHandler(catalog Catalog, answerer Answerer, reloader Reloader, log *slog.Logger) *Handler {
	return &Handler{catalog: catalog, answerer: answerer, reloader: reloader, log: log}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/projects", h.handleListProjects)
	r.Get("/projects/{name}", h.handleGetProject)
	r.Get("/projects/{name}/requirements", h.handleGetRequirements)
	r.Get("/search", h.handleSearch)
	r.Get("/statuses", h.handleGroupByStatus)
	r.Get("/statuses/{status}", h.handleFilterByStatus)
	r.Post("/ask", h.handleAsk)
	r.Post("/reload", h.handleReload)
	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Post("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/allocs", pprof.Handler("allocs").ServeHTTP)
		r.Get("/goroutine", pprof.Handler("goroutine").ServeHTTP)
		r.Get("/heap", pprof.Handler("heap").ServeHTTP)
	})
	return r
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.ListProjectNames(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": names})
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.catalog.GetProjectInfo(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) handleGetRequirements(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.catalog.GetRequirements(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requirements": reqs})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	projects, err := h.catalog.Search(r.Context(), query.Get("column"), query.Get("value"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) handleFilterByStatus(w http.ResponseWriter, r *http.Request) {
	projects, err := h.catalog.FilterByStatus(r.Context(), chi.URLParam(r, "status"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) handleGroupByStatus(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.GroupByStatus(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": groups})
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"question\": \"...\"}"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": h.answerer.Answer(r.Context(), req.Question)})
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reloader.Reload(r.Context(), h.reloader.Path())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"projects":     summary.Projects,
		"requirements": summary.Requirements,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repositories.ErrInvalidColumn):
		status = http.StatusBadRequest
	case errors.Is(err, loading.ErrSourceNotFound),
		errors.Is(err, loading.ErrSourceParse),
		errors.Is(err, loading.ErrSourceSchema):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
