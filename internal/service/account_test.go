package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/auth"
	"github.com/sakif/codevault/internal/ident"
	"github.com/sakif/codevault/internal/model"
)

// fakeAccountRepo is a map-backed AccountRepository. createErr, when set, is
// returned from the next Create call and then cleared, which lets tests
// simulate losing the insert race exactly once.
type fakeAccountRepo struct {
	byID       map[string]*model.Account
	byUpstream map[string]*model.Account
	createErr  error
	creates    int

	// upstreamMisses makes the next N GetByUpstreamID calls miss, simulating
	// a row that appears between the resolver's lookup and its insert.
	upstreamMisses int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:       make(map[string]*model.Account),
		byUpstream: make(map[string]*model.Account),
	}
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *model.Account) error {
	f.creates++
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return err
	}
	if _, exists := f.byUpstream[account.UpstreamID]; exists {
		return apperror.Conflict(errors.New("unique violation"))
	}
	f.byID[account.ID] = account
	f.byUpstream[account.UpstreamID] = account
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, apperror.NotFound()
}

func (f *fakeAccountRepo) GetByUpstreamID(ctx context.Context, upstreamID string) (*model.Account, error) {
	if f.upstreamMisses > 0 {
		f.upstreamMisses--
		return nil, apperror.NotFound()
	}
	if a, ok := f.byUpstream[upstreamID]; ok {
		return a, nil
	}
	return nil, apperror.NotFound()
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	a, ok := f.byID[id]
	if !ok {
		return apperror.NotFound()
	}
	delete(f.byID, id)
	delete(f.byUpstream, a.UpstreamID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProfile() *auth.UserInfo {
	return &auth.UserInfo{
		Subject:   "upstream-sub-1",
		Username:  "sam",
		Name:      "Sam Vimes",
		AvatarURL: "https://example.com/sam.png",
	}
}

func TestResolveOrCreate_FirstLogin(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, testLogger())

	account, err := svc.ResolveOrCreate(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}

	if len(account.ID) != ident.Length {
		t.Errorf("ID length = %d, want %d", len(account.ID), ident.Length)
	}
	if account.Username != "sam" {
		t.Errorf("Username = %q", account.Username)
	}
	if account.DisplayName != "Sam Vimes" {
		t.Errorf("DisplayName = %q", account.DisplayName)
	}
	if account.UpstreamID != "upstream-sub-1" {
		t.Errorf("UpstreamID = %q", account.UpstreamID)
	}
}

func TestResolveOrCreate_DisplayNameDefaultsToUsername(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, testLogger())

	profile := testProfile()
	profile.Name = ""

	account, err := svc.ResolveOrCreate(context.Background(), profile)
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if account.DisplayName != profile.Username {
		t.Errorf("DisplayName = %q, want the username %q", account.DisplayName, profile.Username)
	}
}

func TestResolveOrCreate_SecondLoginReturnsSameAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, testLogger())
	ctx := context.Background()

	first, err := svc.ResolveOrCreate(ctx, testProfile())
	if err != nil {
		t.Fatalf("first ResolveOrCreate() error = %v", err)
	}

	// Second login with updated upstream profile data: same account, stale
	// fields preserved.
	changed := testProfile()
	changed.Name = "Commander Vimes"
	changed.AvatarURL = "https://example.com/new.png"

	second, err := svc.ResolveOrCreate(ctx, changed)
	if err != nil {
		t.Fatalf("second ResolveOrCreate() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second login resolved %q, want %q", second.ID, first.ID)
	}
	if second.DisplayName != first.DisplayName {
		t.Errorf("DisplayName refreshed to %q, want the original snapshot", second.DisplayName)
	}
	if repo.creates != 1 {
		t.Errorf("Create called %d times, want 1", repo.creates)
	}
}

func TestResolveOrCreate_LostRaceRefetches(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, testLogger())
	ctx := context.Background()

	// The winner's row lands between our lookup (miss) and our insert
	// (conflict); the re-fetch then finds it.
	winner := &model.Account{
		ID:         "winner0000000001",
		Username:   "sam",
		UpstreamID: "upstream-sub-1",
	}
	repo.byID[winner.ID] = winner
	repo.byUpstream[winner.UpstreamID] = winner
	repo.upstreamMisses = 1
	repo.createErr = apperror.Conflict(errors.New("unique violation"))

	account, err := svc.ResolveOrCreate(ctx, testProfile())
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if account.ID != winner.ID {
		t.Errorf("resolved %q, want the winner %q", account.ID, winner.ID)
	}
}

func TestAccountDelete(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, testLogger())
	ctx := context.Background()

	account, err := svc.ResolveOrCreate(ctx, testProfile())
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}

	if err := svc.Delete(ctx, account.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByID(ctx, account.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("account should be gone, got err = %v", err)
	}
}
