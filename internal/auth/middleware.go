package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/model"
	"github.com/sakif/codevault/internal/repository"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the injected account.
type contextKey string

const accountKey contextKey = "account"

// RequireAuth enforces authentication on protected routes.
//
// Per-request state machine:
//  1. Extract — session cookie first, then "Authorization: Bearer"; nothing
//     presented (or blank after trimming) → 401 MissingAuthentication.
//  2. Verify — signature/expiry via TokenService → 401 InvalidSignature or
//     InvalidAuthentication.
//  3. Resolve — load the account behind the subject claim; a token for a
//     deleted account → 401 AccountGone.
//  4. Continue — inject *model.Account into the context and call the next
//     handler.
//
// Auth rejections are not logged; they are routine client behaviour. Store
// failures during resolution are logged and reported as 500 StoreError.
func RequireAuth(tokens *TokenService, accounts repository.AccountRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				writeAuthError(w, apperror.MissingAuthentication())
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				var appErr *apperror.AppError
				if !errors.As(err, &appErr) {
					appErr = apperror.InvalidAuthentication()
				}
				writeAuthError(w, appErr)
				return
			}

			account, err := accounts.GetByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					writeAuthError(w, apperror.AccountGone())
					return
				}
				logger.Warn("auth: resolving account failed",
					slog.String("accountID", claims.Subject),
					slog.String("error", err.Error()),
				)
				writeAuthError(w, apperror.Store(err))
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext retrieves the authenticated account injected by
// RequireAuth. The second return is false on unprotected routes.
func AccountFromContext(ctx context.Context) (*model.Account, bool) {
	account, ok := ctx.Value(accountKey).(*model.Account)
	return account, ok && account != nil
}

// extractToken pulls the session token from the request, preferring the
// cookie over the bearer header.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if v := strings.TrimSpace(cookie.Value); v != "" {
			return v
		}
	}

	header := r.Header.Get("Authorization")
	if bearer, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}

	return ""
}

// writeAuthError renders the standard error envelope. Duplicated from the
// handler package in miniature to keep auth free of an import cycle.
func writeAuthError(w http.ResponseWriter, appErr *apperror.AppError) {
	status := http.StatusUnauthorized
	if errors.Is(appErr, apperror.ErrStore) {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message":   appErr.Message,
		"errorKind": appErr.Kind,
	})
}
