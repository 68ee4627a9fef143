package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// discoveryDocument is the portion of the provider's
// /.well-known/openid-configuration response we care about.
type discoveryDocument struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
}

// UserInfo is the profile returned by the provider's userinfo endpoint.
// Providers return a much larger object — we only unmarshal what we store.
type UserInfo struct {
	Subject   string `json:"sub"`                // stable upstream identifier
	Username  string `json:"preferred_username"` // login name
	Name      string `json:"name"`               // display name, may be empty
	AvatarURL string `json:"picture"`
}

// Provider performs the OAuth authorization-code exchange and userinfo fetch
// against an OIDC identity provider whose endpoints were discovered at
// startup. The configuration is immutable for the process lifetime.
type Provider struct {
	config      *oauth2.Config
	userinfoURL string
}

// Discover fetches {issuer}/.well-known/openid-configuration and builds a
// Provider from it. Called exactly once at startup; any failure here is a
// startup precondition violation and the process must not start.
func Discover(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*Provider, error) {
	wellKnown := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building discovery request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: fetching %s: %w", wellKnown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: discovery returned status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("auth: decoding discovery document: %w", err)
	}

	if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" || doc.UserinfoEndpoint == "" {
		return nil, fmt.Errorf("auth: discovery document is missing endpoints")
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  doc.AuthorizationEndpoint,
				TokenURL: doc.TokenEndpoint,
			},
		},
		userinfoURL: doc.UserinfoEndpoint,
	}, nil
}

// AuthorizationEndpoint returns the provider's authorization URL. Exposed via
// the instance metadata endpoint so clients can start the flow themselves.
func (p *Provider) AuthorizationEndpoint() string {
	return p.config.Endpoint.AuthURL
}

// ClientID returns the OAuth client identifier registered with the provider.
func (p *Provider) ClientID() string {
	return p.config.ClientID
}

// Exchange trades an authorization code for the provider's access token.
//
// Failure here is the EXPECTED outcome of a replayed, expired, or tampered
// code — a user re-loading a stale callback URL. Callers surface it as a
// client-correctable error, not a server fault.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("auth: exchanging authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("auth: provider returned an empty access token")
	}
	return token.AccessToken, nil
}

// Userinfo fetches the profile behind an access token.
//
// Unlike Exchange, failure here is unexpected: the same provider validated
// this token moments ago. Callers treat it as a server-side fault.
func (p *Provider) Userinfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	// oauth2.NewClient returns an *http.Client that attaches
	// "Authorization: Bearer <token>" to every request.
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
	}))

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo response: %w", err)
	}

	if info.Subject == "" {
		return nil, fmt.Errorf("auth: userinfo response has no subject")
	}

	return &info, nil
}
