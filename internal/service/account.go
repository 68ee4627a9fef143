// Package service contains the business logic layer: account resolution and
// ownership-scoped code management. Services accept plain values and return
// domain errors; they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/auth"
	"github.com/sakif/codevault/internal/ident"
	"github.com/sakif/codevault/internal/model"
	"github.com/sakif/codevault/internal/repository"
)

// AccountService maps upstream identities to local accounts.
type AccountService struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts repository.AccountRepository, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		logger:   logger,
	}
}

// ResolveOrCreate returns the local account bound to an upstream profile,
// creating one on first login. This is the only account-creation path.
//
// An existing account is returned unchanged — the denormalized profile fields
// are NOT refreshed from the latest userinfo.
//
// Two concurrent first logins for the same upstream identity race on the
// insert; the accounts.upstream_id UNIQUE constraint fails the loser, which
// then re-fetches the winner's row. Exactly one account ever exists per
// upstream identity.
func (s *AccountService) ResolveOrCreate(ctx context.Context, profile *auth.UserInfo) (*model.Account, error) {
	account, err := s.accounts.GetByUpstreamID(ctx, profile.Subject)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("resolving account: %w", err)
	}

	displayName := profile.Name
	if displayName == "" {
		displayName = profile.Username
	}

	account = &model.Account{
		ID:          ident.New(ident.Length),
		Username:    profile.Username,
		DisplayName: displayName,
		AvatarURL:   profile.AvatarURL,
		UpstreamID:  profile.Subject,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Benign race: another request created the account between our
			// lookup and insert. Use theirs.
			s.logger.Info("account creation lost race, re-fetching",
				slog.String("upstreamID", profile.Subject),
			)
			return s.accounts.GetByUpstreamID(ctx, profile.Subject)
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info("account created",
		slog.String("accountID", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

// Delete removes an account together with every code it owns. Session tokens
// referencing the account stay cryptographically valid until they expire, but
// the middleware's account lookup fails from here on (AccountGone).
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	s.logger.Info("account deleted", slog.String("accountID", accountID))
	return nil
}
