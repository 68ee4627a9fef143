package service

import (
	"context"
	"fmt"
	"hash/crc32"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/ident"
	"github.com/sakif/codevault/internal/model"
	"github.com/sakif/codevault/internal/repository"
)

const (
	MaxContentLength     = 8192
	MaxDisplayNameLength = 256
)

// CodeService manages user-owned codes. Every operation takes the owner's
// account ID and threads it into the repository query — ownership is enforced
// at the query level, never by comparing after the fact.
type CodeService struct {
	codes  repository.CodeRepository
	logger *slog.Logger
}

// NewCodeService creates a CodeService.
func NewCodeService(codes repository.CodeRepository, logger *slog.Logger) *CodeService {
	return &CodeService{
		codes:  codes,
		logger: logger,
	}
}

// List returns all codes owned by the account.
func (s *CodeService) List(ctx context.Context, ownerID string) ([]model.Code, error) {
	codes, err := s.codes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing codes: %w", err)
	}
	return codes, nil
}

// Add validates and stores a new code for the account.
func (s *CodeService) Add(ctx context.Context, ownerID, content, displayName string, websiteURL *string) (*model.Code, error) {
	content = strings.TrimSpace(content)
	displayName = strings.TrimSpace(displayName)

	if content == "" {
		return nil, apperror.ValidationFailed("content is required")
	}
	if len(content) > MaxContentLength {
		return nil, apperror.ValidationFailed(
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	if displayName == "" {
		return nil, apperror.ValidationFailed("display_name is required")
	}
	if len(displayName) > MaxDisplayNameLength {
		return nil, apperror.ValidationFailed(
			fmt.Sprintf("display_name must be %d characters or less", MaxDisplayNameLength))
	}

	code := &model.Code{
		ID:          ident.New(ident.Length),
		OwnerID:     ownerID,
		Content:     content,
		DisplayName: displayName,
		WebsiteURL:  websiteURL,
		// IconURL starts empty; clients set it via PATCH, and it is cleared
		// whenever the website changes.
	}

	if err := s.codes.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("adding code: %w", err)
	}

	s.logger.Info("code added",
		slog.String("codeID", code.ID),
		slog.String("ownerID", ownerID),
	)

	return code, nil
}

// Edit applies a partial update to one of the account's codes and returns the
// updated record. Only fields mentioned in the patch change.
//
// Invariant: a patch that sets website_url — to a value or explicitly to null
// — also clears icon_url, because any cached icon was fetched for the old
// website.
func (s *CodeService) Edit(ctx context.Context, ownerID, id string, patch model.CodePatch) (*model.Code, error) {
	code, err := s.codes.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("editing code: %w", err)
	}

	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, apperror.ValidationFailed("content must not be empty")
		}
		if len(content) > MaxContentLength {
			return nil, apperror.ValidationFailed(
				fmt.Sprintf("content must be %d characters or less", MaxContentLength))
		}
		code.Content = content
	}

	if patch.DisplayName != nil {
		displayName := strings.TrimSpace(*patch.DisplayName)
		if displayName == "" {
			return nil, apperror.ValidationFailed("display_name must not be empty")
		}
		if len(displayName) > MaxDisplayNameLength {
			return nil, apperror.ValidationFailed(
				fmt.Sprintf("display_name must be %d characters or less", MaxDisplayNameLength))
		}
		code.DisplayName = displayName
	}

	if patch.IconURL.Set {
		code.IconURL = patch.IconURL.Ptr()
	}

	if patch.WebsiteURL.Set {
		code.WebsiteURL = patch.WebsiteURL.Ptr()
		code.IconURL = nil
	}

	if err := s.codes.Update(ctx, code); err != nil {
		return nil, fmt.Errorf("editing code: %w", err)
	}

	return code, nil
}

// Delete removes one of the account's codes.
func (s *CodeService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.codes.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("deleting code: %w", err)
	}

	s.logger.Info("code deleted",
		slog.String("codeID", id),
		slog.String("ownerID", ownerID),
	)

	return nil
}

// Checksum returns a cheap digest over all of the account's codes. Clients
// compare it against a locally computed value to decide whether a full sync
// is needed. The digest is the decimal CRC-32 (IEEE) of each code's content,
// display name, icon URL and website URL concatenated in ID order.
func (s *CodeService) Checksum(ctx context.Context, ownerID string) (string, error) {
	codes, err := s.codes.ListByOwner(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("computing checksum: %w", err)
	}

	var b strings.Builder
	for _, code := range codes {
		b.WriteString(code.Content)
		b.WriteString(code.DisplayName)
		if code.IconURL != nil {
			b.WriteString(*code.IconURL)
		}
		if code.WebsiteURL != nil {
			b.WriteString(*code.WebsiteURL)
		}
	}

	sum := crc32.ChecksumIEEE([]byte(b.String()))
	return strconv.FormatUint(uint64(sum), 10), nil
}
