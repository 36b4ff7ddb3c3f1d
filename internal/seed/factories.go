// Package seed creates demo data for development databases and tests.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"warbler/internal/config"
	"warbler/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is given to every generated user.
const DefaultPassword = "password123"

// Options tune the generated data.
type Options struct {
	// SkipBcrypt hashes at bcrypt.MinCost instead of DefaultCost.
	SkipBcrypt bool
	// MaxDays bounds how far back message timestamps are spread.
	MaxDays int
	// Seed makes gofakeit output reproducible when non-zero.
	Seed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	state *factoryState
}

// factoryState is shared between a Factory and its transactional copies.
type factoryState struct {
	// hashes caches bcrypt output per raw password.
	hashes map[string]string
	seq    int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(seed),
		state: &factoryState{hashes: make(map[string]string)},
	}
}

// WithDB returns a copy of f writing through db, typically a transaction.
func (f *Factory) WithDB(db *gorm.DB) *Factory {
	cp := *f
	cp.db = db
	return &cp
}

// HashPassword returns the bcrypt hash of raw, reusing earlier results.
func (f *Factory) HashPassword(raw string) (string, error) {
	if h, ok := f.state.hashes[raw]; ok {
		return h, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	f.state.hashes[raw] = string(h)
	return f.state.hashes[raw], nil
}

// BuildUser returns an unsaved user with fake profile data.
func (f *Factory) BuildUser() (*models.User, error) {
	hash, err := f.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}
	f.state.seq++
	username := fmt.Sprintf("%s%d_%d", truncate(sanitizeUsername(f.faker.Username()), 20), f.faker.Number(100, 999), f.state.seq)
	return &models.User{
		Username:       username,
		Email:          strings.ToLower(username) + "@" + f.faker.DomainName(),
		Password:       hash,
		ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		HeaderImageURL: models.DefaultHeaderImageURL,
		Bio:            truncate(f.faker.Sentence(10), 500),
		Location:       truncate(f.faker.City()+", "+f.faker.StateAbr(), 100),
	}, nil
}

// CreateUser persists a fake user. Overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser()
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateMessage persists a fake message by user with a timestamp spread
// over the last MaxDays days.
func (f *Factory) CreateMessage(ctx context.Context, user *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	msg := &models.Message{
		UserID:    user.ID,
		Text:      truncate(f.faker.HipsterSentence(f.faker.Number(4, 18)), config.MaxMessageLength),
		Timestamp: time.Now().UTC().Add(-back),
	}
	for _, override := range overrides {
		override(msg)
	}
	if err := f.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// Follow persists follower -> followed, ignoring an existing edge.
func (f *Factory) Follow(ctx context.Context, followerID, followedID uint) error {
	return f.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&models.Follow{FollowerID: followerID, FollowedID: followedID}).Error
}

// Like persists a like, ignoring an existing one.
func (f *Factory) Like(ctx context.Context, userID, messageID uint) error {
	return f.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&models.Like{UserID: userID, MessageID: messageID}).Error
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() < 3 {
		return "warbler"
	}
	return b.String()
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
