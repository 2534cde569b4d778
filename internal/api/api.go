// Package api serves content listings and raw markdown files.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/repository"
	"github.com/svmesh/svmesh-web/internal/routes"
	"github.com/svmesh/svmesh-web/internal/util"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

type Handler struct {
	repo repository.ContentRepository
}

func NewHandler(repo repository.ContentRepository) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the listing and file routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(routes.APIContentCategory, h.ServeListing)
	mux.HandleFunc(routes.ContentFile, h.ServeFile)
}

type listingResponse struct {
	Files []string `json:"files"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var listingErrors = map[string]string{
	config.CategoryUpdates: config.ErrListUpdatesFiles,
	config.CategoryPages:   config.ErrListPagesFiles,
}

func (h *Handler) ServeListing(w http.ResponseWriter, r *http.Request) {
	if !readMethod(w, r) {
		return
	}

	category := r.PathValue("category")
	if !repository.ValidCategory(category) {
		http.NotFound(w, r)
		return
	}

	files, err := h.repo.List(r.Context(), category)
	if err != nil {
		apiLogger.Error().Stack().Err(err).Str("category", category).Msg("Error listing content files")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   listingErrors[category],
			Details: err.Error(),
		})
		return
	}

	w.Header().Set(config.HCacheControl, "no-cache")
	writeJSON(w, http.StatusOK, listingResponse{Files: files})
}

func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if !readMethod(w, r) {
		return
	}

	category := r.PathValue("category")
	name := r.PathValue("file")
	if !repository.ValidCategory(category) || !repository.ValidName(name) {
		http.NotFound(w, r)
		return
	}

	file, err := h.repo.Read(r.Context(), category, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		apiLogger.Error().Stack().Err(err).Str("category", category).Str("file", name).Msg("Error reading content file")
		http.Error(w, config.ErrInternalServer, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeMarkdown)
	w.Header().Set(config.HETag, util.ETag(file.Content))
	w.Header().Set(config.HCacheControl, "no-cache")
	http.ServeContent(w, r, name, file.ModTime, bytes.NewReader(file.Content))
}

func readMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apiLogger.Error().Err(err).Msg("Error encoding JSON response")
	}
}
