package service

import (
	"context"
	"strings"
	"testing"

	"warbler/internal/models"
	"warbler/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	alice := svc.signup(t, "alice")
	svc.signup(t, "bob")

	t.Run("partial update", func(t *testing.T) {
		user, err := svc.users.UpdateProfile(ctx, UpdateProfileInput{
			UserID:   alice.ID,
			Bio:      ptr("Birds of a feather"),
			Location: ptr("Berkeley"),
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "Birds of a feather", user.Bio)

		got, err := svc.users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Berkeley", got.Location)
		assert.Equal(t, models.DefaultImageURL, got.ImageURL)
	})

	t.Run("empty image resets to default", func(t *testing.T) {
		user, err := svc.users.UpdateProfile(ctx, UpdateProfileInput{
			UserID:         alice.ID,
			ImageURL:       ptr(""),
			HeaderImageURL: ptr("https://example.com/h.jpg"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultImageURL, user.ImageURL)
		assert.Equal(t, "https://example.com/h.jpg", user.HeaderImageURL)
	})

	t.Run("rename keeps password", func(t *testing.T) {
		_, err := svc.users.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, Username: ptr("alicia")})
		require.NoError(t, err)

		user, err := svc.auth.Authenticate(ctx, "alicia", "password")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, alice.ID, user.ID)
	})

	t.Run("taken username", func(t *testing.T) {
		_, err := svc.users.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, Username: ptr("bob")})
		assert.True(t, models.IsConstraint(err))
	})

	t.Run("validation", func(t *testing.T) {
		inputs := []UpdateProfileInput{
			{UserID: alice.ID, Username: ptr("x")},
			{UserID: alice.ID, Email: ptr("nope")},
			{UserID: alice.ID, Bio: ptr(strings.Repeat("b", 501))},
			{UserID: alice.ID, Location: ptr(strings.Repeat("l", 101))},
			{UserID: alice.ID, ImageURL: ptr("javascript:alert(1)")},
		}
		for _, in := range inputs {
			_, err := svc.users.UpdateProfile(ctx, in)
			assert.True(t, models.IsValidation(err), "%+v", in)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.users.UpdateProfile(ctx, UpdateProfileInput{UserID: 9999, Bio: ptr("x")})
		assert.True(t, models.IsNotFound(err))
	})
}

func TestUserService_Lookups(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	alice := svc.signup(t, "alice")
	svc.signup(t, "alfred")
	svc.signup(t, "bob")

	got, err := svc.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.users.GetByUsername(ctx, "nobody")
	assert.True(t, models.IsNotFound(err))

	found, err := svc.users.SearchUsers(ctx, "AL", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alfred", found[0].Username)

	all, err := svc.users.SearchUsers(ctx, "  ", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserService_DeleteUserRecordsOutcome(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	users := &userRepoStub{
		deleteFn: func(_ context.Context, id uint) error {
			if id == 404 {
				return models.NewNotFoundError("User", id)
			}
			return nil
		},
	}
	svc := NewUserService(users, Observer{Metrics: m})

	require.NoError(t, svc.DeleteUser(context.Background(), 1))
	assert.True(t, models.IsNotFound(svc.DeleteUser(context.Background(), 404)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("delete_user", observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("delete_user", observability.OutcomeRejected)))
}
