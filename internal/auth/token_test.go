package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/model"
)

func testAccount() *model.Account {
	return &model.Account{
		ID:          "acct0000000000ab",
		Username:    "sam",
		DisplayName: "Sam Vimes",
		AvatarURL:   "https://example.com/sam.png",
		UpstreamID:  "upstream-123",
	}
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	if _, err := NewTokenService(""); err == nil {
		t.Fatal("NewTokenService(\"\") should fail")
	}
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret-for-round-trip")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	account := testAccount()
	token, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.Subject != account.ID {
		t.Errorf("Subject = %q, want %q", claims.Subject, account.ID)
	}
	if claims.Username != account.Username {
		t.Errorf("Username = %q, want %q", claims.Username, account.Username)
	}
	if claims.DisplayName != account.DisplayName {
		t.Errorf("DisplayName = %q, want %q", claims.DisplayName, account.DisplayName)
	}
	if claims.AvatarURL != account.AvatarURL {
		t.Errorf("AvatarURL = %q, want %q", claims.AvatarURL, account.AvatarURL)
	}

	// Expiry should land ~90 days out.
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < TokenValidity-time.Minute || remaining > TokenValidity {
		t.Errorf("token validity = %v, want ~%v", remaining, TokenValidity)
	}
}

func TestVerify_Expired(t *testing.T) {
	svc, _ := NewTokenService("test-secret")

	token, err := svc.IssueWithValidity(testAccount(), -time.Hour)
	if err != nil {
		t.Fatalf("IssueWithValidity() error = %v", err)
	}

	_, err = svc.Verify(token)
	if !errors.Is(err, apperror.ErrInvalidSignature) {
		t.Errorf("Verify(expired) error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer, _ := NewTokenService("secret-one")
	verifier, _ := NewTokenService("secret-two")

	token, err := issuer.Issue(testAccount())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, apperror.ErrInvalidSignature) {
		t.Errorf("Verify(wrong secret) error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc, _ := NewTokenService("test-secret")

	for _, input := range []string{
		"not-a-jwt",
		"a.b.c",
		"",
	} {
		_, err := svc.Verify(input)
		if !errors.Is(err, apperror.ErrInvalidAuthentication) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidAuthentication", input, err)
		}
	}
}

func TestSessionCookie_Flags(t *testing.T) {
	cookie := SessionCookie("some-token")

	if cookie.Name != SessionCookieName {
		t.Errorf("Name = %q, want %q", cookie.Name, SessionCookieName)
	}
	if cookie.Value != "some-token" {
		t.Errorf("Value = %q", cookie.Value)
	}
	if !cookie.Secure || !cookie.HttpOnly {
		t.Error("cookie must be Secure and HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict", cookie.SameSite)
	}
	if cookie.Path != "/" {
		t.Errorf("Path = %q, want /", cookie.Path)
	}
}
