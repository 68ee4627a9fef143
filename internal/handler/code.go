package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codevault/internal/auth"
	"github.com/sakif/codevault/internal/model"
	"github.com/sakif/codevault/internal/service"
)

// CodeHandler serves the authenticated code CRUD endpoints. The owner scope
// for every operation comes from the account the middleware injected — never
// from the request payload.
type CodeHandler struct {
	codes  *service.CodeService
	logger *slog.Logger
}

// NewCodeHandler creates a CodeHandler.
func NewCodeHandler(codes *service.CodeService, logger *slog.Logger) *CodeHandler {
	return &CodeHandler{
		codes:  codes,
		logger: logger,
	}
}

// HandleList returns all codes owned by the caller.
//
// HTTP: GET /v1/code → 200 JSON array
func (h *CodeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	codes, err := h.codes.List(r.Context(), account.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, codes)
}

// addCodeRequest is the PUT /v1/code payload.
type addCodeRequest struct {
	Content     string  `json:"content"`
	DisplayName string  `json:"display_name"`
	WebsiteURL  *string `json:"website_url"`
}

// HandleAdd stores a new code for the caller.
//
// HTTP: PUT /v1/code → 200 created code
func (h *CodeHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req addCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	code, err := h.codes.Add(r.Context(), account.ID, req.Content, req.DisplayName, req.WebsiteURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, code)
}

// HandleEdit applies a partial update to one of the caller's codes.
//
// HTTP: PATCH /v1/code/{id} → 200 updated code
//
// The patch distinguishes absent fields from explicit nulls; see
// model.CodePatch. Patching website_url clears icon_url.
func (h *CodeHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var patch model.CodePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	code, err := h.codes.Edit(r.Context(), account.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, code)
}

// HandleDelete removes one of the caller's codes.
//
// HTTP: DELETE /v1/code/{id} → 204
func (h *CodeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.codes.Delete(r.Context(), account.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
