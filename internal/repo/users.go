package repo

import (
	"context"
	"fmt"

	"github.com/abdusco/shortlink/internal"
	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"
)

type userRow struct {
	ID           string  `db:"id"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	Name         string  `db:"name"`
	CustomDomain *string `db:"custom_domain"`
	CreatedAt    Date    `db:"created_at"`
}

var userColumns = []any{"id", "email", "password_hash", "name", "custom_domain", "created_at"}

type UsersRepo struct {
	db *goqu.Database
}

func NewUsersRepo(db *goqu.Database) *UsersRepo {
	return &UsersRepo{db: db}
}

// Create inserts the user. A taken email yields internal.ErrUserExists.
func (r *UsersRepo) Create(ctx context.Context, user *internal.User) error {
	log.Debug().Str("user_id", user.ID).Msg("creating user")

	query := r.db.Insert("users").Rows(goqu.Record{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"name":          user.Name,
		"custom_domain": nullString(user.CustomDomain),
		"created_at":    NewDate(user.CreatedAt),
	})

	if _, err := query.Executor().ExecContext(ctx); err != nil {
		if isUniqueViolation(err) {
			return internal.ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msg("user created successfully")
	return nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (*internal.User, error) {
	return r.getOne(ctx, goqu.Ex{"email": email})
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (*internal.User, error) {
	return r.getOne(ctx, goqu.Ex{"id": id})
}

func (r *UsersRepo) getOne(ctx context.Context, where goqu.Ex) (*internal.User, error) {
	var row userRow
	found, err := r.db.From("users").Select(userColumns...).Where(where).ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if !found {
		return nil, internal.ErrUserNotFound
	}
	return row.toDomain(), nil
}

func (r *userRow) toDomain() *internal.User {
	return &internal.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		CustomDomain: r.CustomDomain,
		CreatedAt:    r.CreatedAt.Time(),
	}
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
