package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pawfinderz-backend/internal/dbtest"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func seedUser(t *testing.T, repo *Repository, email string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		Name:         "Riley",
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func TestCreateNormalizesEmailAndDefaultsRole(t *testing.T) {
	_, repo := newTestService(t)
	user := seedUser(t, repo, "  Riley@Example.COM ")

	assert.Equal(t, "riley@example.com", user.Email)
	assert.Equal(t, enums.UserRoleUser, user.Role)
	assert.True(t, user.IsActive)

	found, err := repo.FindByEmail(context.Background(), "RILEY@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestMeOmitsPasswordHash(t *testing.T) {
	svc, repo := newTestService(t)
	user := seedUser(t, repo, "me@example.com")

	dto, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, dto.Email)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateProfileAppliesPartialChanges(t *testing.T) {
	svc, repo := newTestService(t)
	user := seedUser(t, repo, "edit@example.com")

	bio := "  foster parent  "
	name := "Riley Q"
	dto, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Riley Q", dto.Name)
	require.NotNil(t, dto.Bio)
	assert.Equal(t, "foster parent", *dto.Bio)

	empty := ""
	dto, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Bio: &empty})
	require.NoError(t, err)
	assert.Nil(t, dto.Bio)
	assert.Equal(t, "Riley Q", dto.Name)

	short := "R"
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Name: &short})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPublicProfileHidesInactiveUsers(t *testing.T) {
	svc, repo := newTestService(t)
	user := seedUser(t, repo, "public@example.com")

	profile, err := svc.PublicProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.PetsCount)

	_, err = repo.Update(context.Background(), user.ID, map[string]any{"is_active": false})
	require.NoError(t, err)
	_, err = svc.PublicProfile(context.Background(), user.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersAndPages(t *testing.T) {
	_, repo := newTestService(t)
	ctx := context.Background()
	seedUser(t, repo, "a@example.com")
	seedUser(t, repo, "b@example.com")
	admin, err := repo.Create(ctx, CreateUserDTO{Name: "Ops", Email: "ops@example.com", PasswordHash: "x", Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	rows, total, err := repo.List(ctx, pagination.Params{Page: 1, Limit: 2}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rows, 2)

	role := enums.UserRoleAdmin
	rows, total, err = repo.List(ctx, pagination.Params{}, ListFilters{Role: &role})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, admin.ID, rows[0].ID)

	rows, _, err = repo.List(ctx, pagination.Params{Sort: "name"}, ListFilters{Query: "OPS"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, _, err = repo.List(ctx, pagination.Params{Sort: "drop table"}, ListFilters{})
	assert.Error(t, err)

	count, err := repo.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
