package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/auth"
	"github.com/sakif/codevault/internal/service"
)

// AuthHandler serves the unauthenticated entry points of the login flow: the
// instance metadata document and the OAuth callback.
type AuthHandler struct {
	provider    *auth.Provider
	tokens      *auth.TokenService
	accounts    *service.AccountService
	redirectURI string
	version     string
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	provider *auth.Provider,
	tokens *auth.TokenService,
	accounts *service.AccountService,
	redirectURI, version string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		tokens:      tokens,
		accounts:    accounts,
		redirectURI: redirectURI,
		version:     version,
		logger:      logger,
	}
}

// InstanceMetadata is everything a client needs to start a login against this
// instance: where to send the user, and which client ID to present.
type InstanceMetadata struct {
	Version     string `json:"version"`
	ClientID    string `json:"client_id"`
	Authorize   string `json:"authorize"`
	RedirectURI string `json:"redirect_uri"`
}

// HandleInstanceMetadata returns instance metadata.
//
// HTTP: GET /v1/
// Auth: none — clients call this before they have any credential.
func (h *AuthHandler) HandleInstanceMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InstanceMetadata{
		Version:     h.version,
		ClientID:    h.provider.ClientID(),
		Authorize:   h.provider.AuthorizationEndpoint(),
		RedirectURI: h.redirectURI,
	})
}

// HandleOAuthCallback completes a login.
//
// HTTP: GET /v1/oauth?code=...
// Auth: none — the authorization code IS the credential.
//
// Flow: exchange the code for an upstream access token, fetch the profile,
// resolve or create the local account, issue a session token, set the cookie.
// Exchange failures are the client's fault (replayed or edited URLs → 400);
// userinfo failures after a successful exchange are ours (→ 500).
func (h *AuthHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, h.logger, apperror.ValidationFailed("Missing `code` query parameter."))
		return
	}

	accessToken, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, h.logger, apperror.TokenExchangeFailed(err))
		return
	}

	profile, err := h.provider.Userinfo(r.Context(), accessToken)
	if err != nil {
		writeError(w, h.logger, apperror.UserinfoFetchFailed(err))
		return
	}

	account, err := h.accounts.ResolveOrCreate(r.Context(), profile)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(account)
	if err != nil {
		h.logger.Warn("issuing session token failed", slog.String("error", err.Error()))
		writeError(w, h.logger, apperror.Store(err))
		return
	}

	h.logger.Info("login completed",
		slog.String("accountID", account.ID),
		slog.String("username", account.Username),
	)

	http.SetCookie(w, auth.SessionCookie(token))
	w.WriteHeader(http.StatusOK)
}
