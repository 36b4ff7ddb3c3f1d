package seed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"warbler/internal/config"
	"warbler/internal/models"
	"warbler/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a hand-written data set. Messages are referenced by their
// position in Messages.
//
//	users:
//	  - username: alice
//	    email: alice@example.com
//	    password: secret123
//	messages:
//	  - user: alice
//	    text: hello
//	follows:
//	  - follower: bob
//	    followed: alice
//	likes:
//	  - user: bob
//	    message: 0
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Messages []FixtureMessage `yaml:"messages"`
	Follows  []FixtureFollow  `yaml:"follows"`
	Likes    []FixtureLike    `yaml:"likes"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	ImageURL string `yaml:"image_url"`
	Bio      string `yaml:"bio"`
	Location string `yaml:"location"`
}

type FixtureMessage struct {
	User      string    `yaml:"user"`
	Text      string    `yaml:"text"`
	Timestamp time.Time `yaml:"timestamp"`
}

type FixtureFollow struct {
	Follower string `yaml:"follower"`
	Followed string `yaml:"followed"`
}

type FixtureLike struct {
	User    string `yaml:"user"`
	Message int    `yaml:"message"`
}

// LoadFixture reads and validates a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes and validates a YAML fixture. Unknown fields are
// rejected.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks field rules and that every reference resolves.
func (fx *Fixture) Validate() error {
	known := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		if err := validation.ValidateUsername(u.Username); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if err := validation.ValidateEmail(u.Email); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if u.Password != "" {
			if err := validation.ValidatePassword(u.Password); err != nil {
				return fmt.Errorf("users[%d]: %w", i, err)
			}
		}
		if known[u.Username] {
			return fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		known[u.Username] = true
	}
	for i, m := range fx.Messages {
		if !known[m.User] {
			return fmt.Errorf("messages[%d]: unknown user %q", i, m.User)
		}
		if err := validation.ValidateMessageText(m.Text, config.MaxMessageLength); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	for i, f := range fx.Follows {
		if !known[f.Follower] || !known[f.Followed] {
			return fmt.Errorf("follows[%d]: unknown user", i)
		}
		if f.Follower == f.Followed {
			return fmt.Errorf("follows[%d]: %q cannot follow themselves", i, f.Follower)
		}
	}
	for i, l := range fx.Likes {
		if !known[l.User] {
			return fmt.Errorf("likes[%d]: unknown user %q", i, l.User)
		}
		if l.Message < 0 || l.Message >= len(fx.Messages) {
			return fmt.Errorf("likes[%d]: message index %d out of range", i, l.Message)
		}
	}
	return nil
}

// ApplyFixture writes fx in one transaction. Users without a password get
// DefaultPassword.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (Summary, error) {
	var sum Summary
	f := s.factory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txf := f.WithDB(tx)
		ids := make(map[string]uint, len(fx.Users))

		for _, fu := range fx.Users {
			password := fu.Password
			if password == "" {
				password = DefaultPassword
			}
			hash, err := txf.HashPassword(password)
			if err != nil {
				return err
			}
			user := &models.User{
				Username:       fu.Username,
				Email:          fu.Email,
				Password:       hash,
				ImageURL:       orDefault(fu.ImageURL, models.DefaultImageURL),
				HeaderImageURL: models.DefaultHeaderImageURL,
				Bio:            fu.Bio,
				Location:       fu.Location,
			}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("create user %q: %w", fu.Username, err)
			}
			ids[fu.Username] = user.ID
			sum.Users++
		}

		msgIDs := make([]uint, len(fx.Messages))
		for i, fm := range fx.Messages {
			ts := fm.Timestamp
			if ts.IsZero() {
				// Later entries are newer.
				ts = time.Now().UTC().Add(-time.Duration(len(fx.Messages)-i) * time.Minute)
			}
			msg, err := txf.CreateMessage(ctx, &models.User{ID: ids[fm.User]}, func(m *models.Message) {
				m.Text = strings.TrimSpace(fm.Text)
				m.Timestamp = ts
			})
			if err != nil {
				return fmt.Errorf("create message %d: %w", i, err)
			}
			msgIDs[i] = msg.ID
			sum.Messages++
		}

		for _, ff := range fx.Follows {
			if err := txf.Follow(ctx, ids[ff.Follower], ids[ff.Followed]); err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
			sum.Follows++
		}
		for _, fl := range fx.Likes {
			if err := txf.Like(ctx, ids[fl.User], msgIDs[fl.Message]); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			sum.Likes++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	s.log.InfoContext(ctx, "applied fixture", slog.String("summary", sum.String()))
	return sum, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
