// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/observability"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Uint64

// NewDB opens a private in-memory SQLite database with the schema applied.
// It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{Env: "test", DBDriver: "sqlite", DBPath: ":memory:"}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{
		ApplySchema: true,
		Logger:      observability.NopLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// CreateUser inserts a user with a unique username derived from prefix.
// The stored password is not a valid bcrypt hash.
func CreateUser(t testing.TB, db *gorm.DB, prefix string) *models.User {
	t.Helper()

	n := seq.Add(1)
	user := &models.User{
		Username: fmt.Sprintf("%s%d", prefix, n),
		Email:    fmt.Sprintf("%s%d@example.com", prefix, n),
		Password: "not-a-hash",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateMessage inserts a message by userID at ts.
func CreateMessage(t testing.TB, db *gorm.DB, userID uint, text string, ts time.Time) *models.Message {
	t.Helper()

	msg := &models.Message{UserID: userID, Text: text, Timestamp: ts}
	require.NoError(t, db.Omit("User").Create(msg).Error)
	return msg
}

// Follow inserts the edge follower -> followed.
func Follow(t testing.TB, db *gorm.DB, followerID, followedID uint) {
	t.Helper()
	require.NoError(t, db.Omit("Follower", "Followed").
		Create(&models.Follow{FollowerID: followerID, FollowedID: followedID}).Error)
}

// Like inserts a like of messageID by userID.
func Like(t testing.TB, db *gorm.DB, userID, messageID uint) {
	t.Helper()
	require.NoError(t, db.Omit("User", "Message").
		Create(&models.Like{UserID: userID, MessageID: messageID}).Error)
}
