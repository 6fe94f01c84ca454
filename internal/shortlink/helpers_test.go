package shortlink

import (
	"context"
	"testing"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/abdusco/shortlink/internal/db/dbtest"
	"github.com/abdusco/shortlink/internal/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users    *repo.UsersRepo
	links    *repo.LinksRepo
	service  *Service
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	instance := dbtest.Open(t)
	users := repo.NewUsersRepo(instance.Database)
	links := repo.NewLinksRepo(instance.Database)

	return &fixture{
		users:    users,
		links:    links,
		service:  NewService(links, users, NewAllocator(links, 7)),
		resolver: NewResolver(links, "https", "example.org"),
	}
}

func (f *fixture) user(t *testing.T, email string) *internal.User {
	t.Helper()
	user := &internal.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "x",
		Name:         "User",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}
