package repo

import (
	"context"
	"fmt"

	"github.com/abdusco/shortlink/internal"
	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type linkRow struct {
	ID           string  `db:"id"`
	OriginalURL  string  `db:"original_url"`
	ShortCode    string  `db:"short_code"`
	CustomDomain *string `db:"custom_domain"`
	UserID       string  `db:"user_id"`
	Clicks       int64   `db:"clicks"`
	ExpiresAt    *Date   `db:"expires_at"`
	CreatedAt    Date    `db:"created_at"`
}

var linkColumns = []any{
	"id", "original_url", "short_code", "custom_domain", "user_id", "clicks", "expires_at", "created_at",
}

// LinkUpdate lists the editable fields of a link; nil fields are left alone.
type LinkUpdate struct {
	OriginalURL *string
	ShortCode   *string
}

type LinksRepo struct {
	db *goqu.Database
}

func NewLinksRepo(db *goqu.Database) *LinksRepo {
	return &LinksRepo{db: db}
}

// Create inserts the link. It never overwrites: a taken short code yields internal.ErrCodeTaken.
func (r *LinksRepo) Create(ctx context.Context, link *internal.ShortLink) error {
	log.Debug().Str("short_code", link.ShortCode).Str("url", link.OriginalURL).Msg("creating link")

	query := r.db.Insert("links").Rows(goqu.Record{
		"id":            link.ID,
		"original_url":  link.OriginalURL,
		"short_code":    link.ShortCode,
		"custom_domain": nullString(link.CustomDomain),
		"user_id":       link.UserID,
		"clicks":        link.Clicks,
		"expires_at":    nullDate(link.ExpiresAt),
		"created_at":    NewDate(link.CreatedAt),
	})

	if _, err := query.Executor().ExecContext(ctx); err != nil {
		if isUniqueViolation(err) {
			log.Debug().Str("short_code", link.ShortCode).Msg("short code collided on insert")
			return internal.ErrCodeTaken
		}
		log.Error().Err(err).Str("short_code", link.ShortCode).Msg("failed to create link")
		return fmt.Errorf("failed to insert link: %w", err)
	}

	log.Info().Str("id", link.ID).Str("short_code", link.ShortCode).Msg("link created successfully")
	return nil
}

func (r *LinksRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var id string
	found, err := r.db.From("links").Select("id").Where(goqu.Ex{"short_code": code}).ScanValContext(ctx, &id)
	if err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return found, nil
}

func (r *LinksRepo) GetByCode(ctx context.Context, code string) (*internal.ShortLink, error) {
	log.Debug().Str("short_code", code).Msg("fetching link by short code")
	return r.getOne(ctx, goqu.Ex{"short_code": code})
}

// GetForOwner returns the link only if ownerID owns it.
func (r *LinksRepo) GetForOwner(ctx context.Context, ownerID, id string) (*internal.ShortLink, error) {
	return r.getOne(ctx, goqu.Ex{"id": id, "user_id": ownerID})
}

// ListByOwner returns the owner's links, newest first.
func (r *LinksRepo) ListByOwner(ctx context.Context, ownerID string) ([]internal.ShortLink, error) {
	query := r.db.From("links").
		Select(linkColumns...).
		Where(goqu.Ex{"user_id": ownerID}).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())

	var rows []linkRow
	if err := query.ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return lo.Map(rows, func(row linkRow, _ int) internal.ShortLink {
		return *row.toDomain()
	}), nil
}

// Update applies the non-nil fields to a link owned by ownerID.
func (r *LinksRepo) Update(ctx context.Context, ownerID, id string, update LinkUpdate) error {
	record := goqu.Record{}
	if update.OriginalURL != nil {
		record["original_url"] = *update.OriginalURL
	}
	if update.ShortCode != nil {
		record["short_code"] = *update.ShortCode
	}
	if len(record) == 0 {
		_, err := r.GetForOwner(ctx, ownerID, id)
		return err
	}

	res, err := r.db.Update("links").
		Set(record).
		Where(goqu.Ex{"id": id, "user_id": ownerID}).
		Executor().ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return internal.ErrCodeTaken
		}
		return fmt.Errorf("failed to update link: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}
	if n == 0 {
		return internal.ErrLinkNotFound
	}

	log.Info().Str("id", id).Msg("link updated")
	return nil
}

// Delete removes a link owned by ownerID.
func (r *LinksRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.Delete("links").
		Where(goqu.Ex{"id": id, "user_id": ownerID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if n == 0 {
		return internal.ErrLinkNotFound
	}

	log.Info().Str("id", id).Msg("link deleted")
	return nil
}

// IncrementClicks adds one to the link's counter in the datastore.
// It reports false when the link no longer exists.
func (r *LinksRepo) IncrementClicks(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Update("links").
		Set(goqu.Record{"clicks": goqu.L("clicks + 1")}).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to increment clicks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to increment clicks: %w", err)
	}
	return n > 0, nil
}

func (r *LinksRepo) getOne(ctx context.Context, where goqu.Ex) (*internal.ShortLink, error) {
	var row linkRow
	found, err := r.db.From("links").Select(linkColumns...).Where(where).ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch link: %w", err)
	}
	if !found {
		return nil, internal.ErrLinkNotFound
	}
	return row.toDomain(), nil
}

func (r *linkRow) toDomain() *internal.ShortLink {
	return &internal.ShortLink{
		ID:           r.ID,
		OriginalURL:  r.OriginalURL,
		ShortCode:    r.ShortCode,
		CustomDomain: r.CustomDomain,
		UserID:       r.UserID,
		Clicks:       r.Clicks,
		ExpiresAt:    timePtr(r.ExpiresAt),
		CreatedAt:    r.CreatedAt.Time(),
	}
}
