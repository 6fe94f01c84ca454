package shortlink

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/abdusco/shortlink/internal/repo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxInsertAttempts bounds re-allocation when a generated code loses the
// insert race to a concurrent request.
const maxInsertAttempts = 3

type LinkStore interface {
	CodeLookup
	Create(ctx context.Context, link *internal.ShortLink) error
	GetForOwner(ctx context.Context, ownerID, id string) (*internal.ShortLink, error)
	ListByOwner(ctx context.Context, ownerID string) ([]internal.ShortLink, error)
	Update(ctx context.Context, ownerID, id string, update repo.LinkUpdate) error
	Delete(ctx context.Context, ownerID, id string) error
	StatsForOwner(ctx context.Context, ownerID string, createdSince time.Time) (*internal.LinkStats, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*internal.User, error)
}

type CreateParams struct {
	OriginalURL string
	ShortCode   string
	ExpiresAt   *time.Time
}

type UpdateParams struct {
	OriginalURL *string
	ShortCode   *string
}

// Service implements owner-scoped link management.
type Service struct {
	links     LinkStore
	users     UserLookup
	allocator *Allocator
	now       func() time.Time
}

func NewService(links LinkStore, users UserLookup, allocator *Allocator) *Service {
	return &Service{
		links:     links,
		users:     users,
		allocator: allocator,
		now:       time.Now,
	}
}

// Create stores a new link for ownerID. A unique violation on insert is
// authoritative: custom codes fail with internal.ErrCodeTaken, generated codes
// are re-allocated.
func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*internal.ShortLink, error) {
	originalURL, err := ValidateURL(params.OriginalURL)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if params.ExpiresAt != nil {
		t := params.ExpiresAt.UTC().Truncate(time.Microsecond)
		expiresAt = &t
	}

	requested := strings.TrimSpace(params.ShortCode)
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		code, err := s.allocator.Allocate(ctx, requested)
		if err != nil {
			return nil, err
		}

		link := &internal.ShortLink{
			ID:           uuid.NewString(),
			OriginalURL:  originalURL,
			ShortCode:    code,
			CustomDomain: owner.CustomDomain,
			UserID:       owner.ID,
			ExpiresAt:    expiresAt,
			CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
		}

		err = s.links.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, internal.ErrCodeTaken) || requested != "" {
			return nil, err
		}

		log.Warn().Str("short_code", code).Int("attempt", attempt).Msg("generated short code lost insert race, retrying")
	}

	return nil, internal.ErrAllocationExhausted
}

func (s *Service) List(ctx context.Context, ownerID string) ([]internal.ShortLink, error) {
	return s.links.ListByOwner(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*internal.ShortLink, error) {
	return s.links.GetForOwner(ctx, ownerID, id)
}

func (s *Service) Update(ctx context.Context, ownerID, id string, params UpdateParams) (*internal.ShortLink, error) {
	link, err := s.links.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	var update repo.LinkUpdate
	if params.OriginalURL != nil {
		originalURL, err := ValidateURL(*params.OriginalURL)
		if err != nil {
			return nil, err
		}
		update.OriginalURL = &originalURL
	}

	if params.ShortCode != nil {
		code := strings.TrimSpace(*params.ShortCode)
		if code == "" {
			return nil, internal.NewValidationError("Short code cannot be empty")
		}
		if code != link.ShortCode {
			code, err = s.allocator.Allocate(ctx, code)
			if err != nil {
				return nil, err
			}
			update.ShortCode = &code
		}
	}

	if err := s.links.Update(ctx, ownerID, id, update); err != nil {
		return nil, err
	}
	return s.links.GetForOwner(ctx, ownerID, id)
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.links.Delete(ctx, ownerID, id)
}

// Stats aggregates the owner's links; "today" starts at midnight UTC.
func (s *Service) Stats(ctx context.Context, ownerID string) (*internal.LinkStats, error) {
	startOfDay := s.now().UTC().Truncate(24 * time.Hour)
	return s.links.StatsForOwner(ctx, ownerID, startOfDay)
}
