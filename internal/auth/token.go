// Package auth provides the session token codec, the OIDC client for the
// upstream identity provider, and the authentication middleware.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. The client fetches GET /v1/ and sends the user to the provider's
//    authorization URL itself.
// 2. The provider redirects back with an authorization code; the client hands
//    it to GET /v1/oauth?code=...
// 3. The server exchanges the code for an access token, fetches the profile,
//    resolves or creates the local account, and issues a session token.
// 4. The token travels back as an HttpOnly cookie (and is echoed for clients
//    that prefer the Authorization header).
// 5. The middleware verifies the token on every protected request and loads
//    the account into the request context.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "codevault_jwt"

// TokenValidity is the fixed lifetime of a session token. There is no
// server-side revocation; expiry is the only termination mechanism.
const TokenValidity = 90 * 24 * time.Hour

// Claims is the session token payload. Subject carries the account ID; the
// display fields are denormalized snapshots taken at issuance, included purely
// for client convenience. They can go stale relative to the account record.
type Claims struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens with a symmetric secret.
// Issue and Verify are pure functions of their inputs plus the clock — no
// store access, no suspension.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret is treated as a raw byte
// sequence; rotation and length policy are the operator's concern.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue creates a signed session token for the account, valid for
// TokenValidity from now.
func (s *TokenService) Issue(account *model.Account) (string, error) {
	return s.IssueWithValidity(account, TokenValidity)
}

// IssueWithValidity creates a token with a custom validity window. Negative
// durations produce an already-expired token; used by tests.
func (s *TokenService) IssueWithValidity(account *model.Account, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Username:    account.Username,
		DisplayName: account.DisplayName,
		AvatarURL:   account.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses a session token and validates its signature and expiry.
//
// The returned error distinguishes the two failure families the API reports:
//   - apperror.ErrInvalidSignature — parses as a JWT, but the signature is
//     wrong or the token has expired
//   - apperror.ErrInvalidAuthentication — not a parseable token at all
//
// Verify never consults the account store; a valid token whose subject was
// deleted is the middleware's problem.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			// Pinning HMAC prevents algorithm-confusion attacks ("none", or
			// an RSA public key used as an HMAC secret).
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, apperror.InvalidSignature()
		}
		return nil, apperror.InvalidAuthentication()
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, apperror.InvalidAuthentication()
	}

	return c, nil
}

// SessionCookie wraps a signed token in the cookie the service sets at login:
// Strict same-site, Secure, HttpOnly. No Max-Age — the embedded exp claim is
// the source of truth for expiry.
func SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
