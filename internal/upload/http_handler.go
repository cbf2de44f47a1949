package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/campushq/onboard/internal/auth"
	"github.com/campushq/onboard/internal/domain"
	"github.com/campushq/onboard/internal/repository"
	"github.com/campushq/onboard/internal/roster"

	"github.com/google/uuid"
)

// Handler exposes the upload pipeline over HTTP. The tenant scope always
// comes from the authenticated identity, never from the request payload.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the upload endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register attaches the upload routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/uploads", h.Submit)
	mux.HandleFunc("GET /api/uploads", h.History)
	mux.HandleFunc("GET /api/uploads/template", h.Template)
	mux.HandleFunc("GET /api/uploads/{id}", h.Get)
}

// Submit accepts a multipart roster file and runs the whole job synchronously.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	kind, err := domain.ParseMemberKind(r.FormValue("memberKind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), Request{
		TenantID: identity.TenantID,
		UserID:   identity.UserID,
		Kind:     kind,
		FileName: header.Filename,
		Data:     file,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if result.Job.Status == domain.JobStatusParseFailed {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// History returns prior jobs for the tenant, most recent first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	jobs, err := h.service.History(r.Context(), identity.TenantID, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// Get returns one job with its row outcomes.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid job id: %v", err), http.StatusBadRequest)
		return
	}

	detail, err := h.service.Job(r.Context(), identity.TenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// Template serves the expected header set for a member kind as a downloadable
// CSV or XLSX file.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseMemberKind(r.URL.Query().Get("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}

	name := strings.ToLower(string(kind)) + "_roster_template"
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
		if err := roster.WriteTemplateCSV(w, kind); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
		if err := roster.WriteTemplateXLSX(w, kind); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, fmt.Sprintf("unsupported template format %q", format), http.StatusBadRequest)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
