package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codevault/internal/auth"
	"github.com/sakif/codevault/internal/service"
)

// AccountHandler serves the authenticated account endpoints.
type AccountHandler struct {
	accounts *service.AccountService
	codes    *service.CodeService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts *service.AccountService, codes *service.CodeService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		codes:    codes,
		logger:   logger,
	}
}

// HandleDelete deletes the authenticated account and everything it owns.
//
// HTTP: DELETE /v1/user → 204
//
// Outstanding session tokens are not revoked; they die at the middleware's
// account lookup from now on.
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth; guard anyway.
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.accounts.Delete(r.Context(), account.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChecksumResponse carries the sync-state digest of a user's codes.
type ChecksumResponse struct {
	Checksum string `json:"checksum"`
}

// HandleChecksum returns the digest clients use to cheap-check whether their
// local copy is current before pulling the full listing.
//
// HTTP: GET /v1/user/checksum → 200 {"checksum": "..."}
func (h *AccountHandler) HandleChecksum(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	checksum, err := h.codes.Checksum(r.Context(), account.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ChecksumResponse{Checksum: checksum})
}
