package service

import (
	"context"
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_FollowLifecycle(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	alice := svc.signup(t, "alice")
	bob := svc.signup(t, "bob")

	require.NoError(t, svc.follows.Follow(ctx, alice.ID, bob.ID))

	following, err := svc.follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followedBy, err := svc.follows.IsFollowedBy(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, followedBy)

	following, err = svc.follows.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)

	followers, err := svc.follows.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	ids, err := svc.follows.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)

	ids, err = svc.follows.FollowerIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)

	err = svc.follows.Follow(ctx, alice.ID, bob.ID)
	assert.True(t, models.IsConstraint(err))

	removed, err := svc.follows.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	following, err = svc.follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	removed, err = svc.follows.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFollowService_FollowRejections(t *testing.T) {
	follows := &followRepoStub{
		createFn: func(context.Context, uint, uint) error {
			t.Fatal("Create must not be called")
			return nil
		},
	}
	users := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if id == 404 {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id}, nil
		},
	}
	svc := NewFollowService(users, follows, Observer{})
	ctx := context.Background()

	tests := []struct {
		name       string
		followerID uint
		followedID uint
		check      func(error) bool
	}{
		{"self follow", 1, 1, models.IsValidation},
		{"missing follower", 404, 1, models.IsNotFound},
		{"missing followed", 1, 404, models.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Follow(ctx, tt.followerID, tt.followedID)
			require.Error(t, err)
			assert.True(t, tt.check(err), err)
		})
	}
}

func TestFollowService_FollowCounts(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	alice := svc.signup(t, "alice")
	bob := svc.signup(t, "bob")
	carol := svc.signup(t, "carol")

	require.NoError(t, svc.follows.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.follows.Follow(ctx, carol.ID, bob.ID))
	require.NoError(t, svc.follows.Follow(ctx, bob.ID, alice.ID))
	msg, err := svc.messages.Post(ctx, bob.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, svc.likes.Like(ctx, bob.ID, msg.ID))

	counts, err := svc.follows.FollowCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Counts{Messages: 1, Followers: 2, Following: 1, Likes: 1}, *counts)

	_, err = svc.follows.FollowCounts(ctx, 9999)
	assert.True(t, models.IsNotFound(err))

	_, err = svc.follows.Followers(ctx, 9999)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowService_DeleteUserRemovesEdges(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	alice := svc.signup(t, "alice")
	bob := svc.signup(t, "bob")

	require.NoError(t, svc.follows.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.follows.Follow(ctx, bob.ID, alice.ID))
	_, err := svc.messages.Post(ctx, alice.ID, "bye")
	require.NoError(t, err)

	require.NoError(t, svc.users.DeleteUser(ctx, alice.ID))

	followers, err := svc.follows.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	counts, err := svc.follows.FollowCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Counts{}, *counts)

	timeline, err := svc.messages.Timeline(ctx, bob.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, timeline)
}
