package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yamdb/internal/dbtest"
	"yamdb/internal/domain"
	"yamdb/internal/permissions"
)

type fixture struct {
	db      *gorm.DB
	catalog *CatalogStore
	reviews *ReviewStore
	users   *UserStore
	admin   permissions.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.New(t)
	f := &fixture{
		db:      gdb,
		catalog: NewCatalogStore(gdb),
		reviews: NewReviewStore(gdb),
		users:   NewUserStore(gdb),
	}
	f.admin = f.principal(t, "admin", domain.RoleAdmin)
	return f
}

func (f *fixture) principal(t *testing.T, username string, role domain.Role) permissions.Principal {
	t.Helper()
	u := domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, f.db.Create(&u).Error)
	return permissions.FromUser(u)
}

func (f *fixture) title(t *testing.T, name string) *domain.Title {
	t.Helper()
	title, err := f.catalog.CreateTitle(context.Background(), f.admin, TitleInput{Name: name, Year: 2000})
	require.NoError(t, err)
	return title
}

func (f *fixture) review(t *testing.T, p permissions.Principal, titleID uint, score int) *domain.Review {
	t.Helper()
	r, err := f.reviews.CreateReview(context.Background(), p, titleID, ReviewInput{Text: "review text", Score: score})
	require.NoError(t, err)
	return r
}

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
