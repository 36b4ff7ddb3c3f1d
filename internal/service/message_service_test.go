package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_PostValidation(t *testing.T) {
	messages := &messageRepoStub{
		createFn: func(context.Context, *models.Message) error {
			t.Fatal("Create must not be called")
			return nil
		},
	}
	svc := NewMessageService(noopUserRepo(), messages, 0, Observer{})

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"too long", strings.Repeat("a", 141)},
		{"too many runes", strings.Repeat("é", 141)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Post(context.Background(), 1, tt.text)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
		})
	}
}

func TestMessageService_PostTrimsAndStamps(t *testing.T) {
	var stored *models.Message
	messages := &messageRepoStub{
		createFn: func(_ context.Context, m *models.Message) error {
			m.ID = 7
			stored = m
			return nil
		},
	}
	svc := NewMessageService(noopUserRepo(), messages, 0, Observer{})
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	msg, err := svc.Post(context.Background(), 3, "  "+strings.Repeat("é", 140)+"  ")
	require.NoError(t, err)
	assert.Equal(t, uint(7), msg.ID)
	assert.Equal(t, strings.Repeat("é", 140), stored.Text)
	assert.Equal(t, uint(3), stored.UserID)
	assert.Equal(t, fixed, stored.Timestamp)
}

func TestMessageService_MaxLengthFromConfig(t *testing.T) {
	messages := &messageRepoStub{
		createFn: func(context.Context, *models.Message) error { return nil },
	}
	svc := NewMessageService(noopUserRepo(), messages, 10, Observer{})

	_, err := svc.Post(context.Background(), 1, strings.Repeat("a", 11))
	assert.True(t, models.IsValidation(err))

	_, err = svc.Post(context.Background(), 1, strings.Repeat("a", 10))
	assert.NoError(t, err)
}

func TestMessageService_PostUnknownUser(t *testing.T) {
	svc := newServices(t)
	_, err := svc.messages.Post(context.Background(), 9999, "hello")
	assert.True(t, models.IsNotFound(err))
}

func TestMessageService_DeleteOwnership(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	alice := svc.signup(t, "alice")
	bob := svc.signup(t, "bob")

	msg, err := svc.messages.Post(ctx, alice.ID, "mine")
	require.NoError(t, err)

	err = svc.messages.Delete(ctx, msg.ID, bob.ID)
	assert.True(t, models.IsForbidden(err))

	got, err := svc.messages.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Text)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)

	require.NoError(t, svc.messages.Delete(ctx, msg.ID, alice.ID))

	_, err = svc.messages.Get(ctx, msg.ID)
	assert.True(t, models.IsNotFound(err))

	err = svc.messages.Delete(ctx, msg.ID, alice.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestMessageService_DeleteLostRace(t *testing.T) {
	messages := &messageRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Message, error) {
			return &models.Message{ID: id, UserID: 1}, nil
		},
		deleteOwnedFn: func(context.Context, uint, uint) (bool, error) {
			return false, nil
		},
	}
	svc := NewMessageService(noopUserRepo(), messages, 0, Observer{})

	err := svc.Delete(context.Background(), 5, 1)
	assert.True(t, models.IsNotFound(err))
}

func TestMessageService_TimelineAndList(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	alice := svc.signup(t, "alice")
	bob := svc.signup(t, "bob")
	carol := svc.signup(t, "carol")
	require.NoError(t, svc.follows.Follow(ctx, alice.ID, bob.ID))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.messages.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	post := func(userID uint, text string) *models.Message {
		msg, err := svc.messages.Post(ctx, userID, text)
		require.NoError(t, err)
		return msg
	}
	post(alice.ID, "a1")
	post(bob.ID, "b1")
	post(carol.ID, "c1")
	post(alice.ID, "a2")

	timeline, err := svc.messages.Timeline(ctx, alice.ID, 10)
	require.NoError(t, err)
	texts := make([]string, 0, len(timeline))
	for _, m := range timeline {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"a2", "b1", "a1"}, texts)

	mine, err := svc.messages.ListByUser(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a2", mine[0].Text)

	_, err = svc.messages.Timeline(ctx, 9999, 10)
	assert.True(t, models.IsNotFound(err))
}
