package seed

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// Summary counts the rows a seeding run created.
type Summary struct {
	Users    int
	Messages int
	Follows  int
	Likes    int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d messages, %d follows, %d likes", s.Users, s.Messages, s.Follows, s.Likes)
}

// Seeder populates a database with generated or fixture data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	log     *slog.Logger
}

// NewSeeder returns a Seeder. log may be nil.
func NewSeeder(db *gorm.DB, opts Options, log *slog.Logger) *Seeder {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Seeder{db: db, factory: NewFactory(db, opts), log: log}
}

// Factory exposes the underlying factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// ClearAll deletes every row, dependents first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Follow{}, &models.Message{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// SeedNetwork creates users with a few messages each, then has every user
// follow and like a random sample of the others.
func (s *Seeder) SeedNetwork(ctx context.Context, users, messagesPerUser int) (Summary, error) {
	var sum Summary
	if users <= 0 {
		return sum, nil
	}
	f := s.factory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txf := f.WithDB(tx)

		created := make([]*models.User, 0, users)
		for i := 0; i < users; i++ {
			u, err := txf.CreateUser(ctx)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			created = append(created, u)
		}
		sum.Users = len(created)

		var msgs []*models.Message
		for _, u := range created {
			for j := 0; j < messagesPerUser; j++ {
				m, err := txf.CreateMessage(ctx, u)
				if err != nil {
					return fmt.Errorf("create message: %w", err)
				}
				msgs = append(msgs, m)
			}
		}
		sum.Messages = len(msgs)

		for _, u := range created {
			for _, other := range sample(f, created, len(created)/3) {
				if other.ID == u.ID {
					continue
				}
				if err := txf.Follow(ctx, u.ID, other.ID); err != nil {
					return fmt.Errorf("create follow: %w", err)
				}
				sum.Follows++
			}
			for _, m := range sample(f, msgs, len(msgs)/5) {
				if err := txf.Like(ctx, u.ID, m.ID); err != nil {
					return fmt.Errorf("create like: %w", err)
				}
				sum.Likes++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	s.log.InfoContext(ctx, "seeded network", slog.String("summary", sum.String()))
	return sum, nil
}

// sample returns up to n distinct elements of items in random order.
func sample[T any](f *Factory, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	f.faker.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}
