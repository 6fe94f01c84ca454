package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type UserStore interface {
	Create(ctx context.Context, user *internal.User) error
	GetByEmail(ctx context.Context, email string) (*internal.User, error)
}

type RegisterParams struct {
	Email    string
	Password string
	Name     string
}

// Authenticator registers users and exchanges credentials for bearer tokens.
type Authenticator struct {
	users         UserStore
	tokens        *Tokens
	hashCost      int
	now           func() time.Time
	checkPassword func(password, hash string) bool
	// dummyHash stands in for the stored hash when no user matches.
	dummyHash func() string
}

func NewAuthenticator(users UserStore, tokens *Tokens, hashCost int) *Authenticator {
	return &Authenticator{
		users:         users,
		tokens:        tokens,
		hashCost:      hashCost,
		now:           time.Now,
		checkPassword: CheckPassword,
		dummyHash: sync.OnceValue(func() string {
			hash, err := HashPassword("shortlink-dummy-password", hashCost)
			if err != nil {
				log.Error().Err(err).Msg("failed to prepare dummy password hash")
			}
			return hash
		}),
	}
}

func (a *Authenticator) Tokens() *Tokens {
	return a.tokens
}

func (a *Authenticator) Register(ctx context.Context, params RegisterParams) (*internal.User, string, error) {
	name := strings.TrimSpace(params.Name)
	if strings.TrimSpace(params.Email) == "" || params.Password == "" || name == "" {
		return nil, "", internal.NewValidationError("All fields are required")
	}
	email, ok := normalizeEmail(params.Email)
	if !ok {
		return nil, "", internal.NewValidationError("Valid email is required")
	}
	if len(params.Password) > maxPasswordBytes {
		return nil, "", internal.NewValidationError("Password is too long")
	}

	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		return nil, "", internal.ErrUserExists
	} else if !errors.Is(err, internal.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := HashPassword(params.Password, a.hashCost)
	if err != nil {
		return nil, "", err
	}

	user := &internal.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    a.now().UTC(),
	}
	// a concurrent registration can still win the race; the store reports ErrUserExists then
	if err := a.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, token, nil
}

// Login fails with internal.ErrInvalidCredentials for both unknown emails and
// wrong passwords.
func (a *Authenticator) Login(ctx context.Context, rawEmail, password string) (*internal.User, string, error) {
	if strings.TrimSpace(rawEmail) == "" || password == "" {
		return nil, "", internal.NewValidationError("Email and password are required")
	}

	email, ok := normalizeEmail(rawEmail)
	if !ok {
		a.checkPassword(password, a.dummyHash())
		log.Debug().Msg("login with malformed email")
		return nil, "", internal.ErrInvalidCredentials
	}

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, internal.ErrUserNotFound) {
		a.checkPassword(password, a.dummyHash())
		log.Debug().Msg("login for unknown email")
		return nil, "", internal.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !a.checkPassword(password, user.PasswordHash) {
		log.Debug().Str("user_id", user.ID).Msg("login with wrong password")
		return nil, "", internal.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// normalizeEmail reduces an address, display name included, to its lower-cased
// bare form. It reports false for anything that is not a single address.
func normalizeEmail(raw string) (string, bool) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return strings.ToLower(addr.Address), true
}
