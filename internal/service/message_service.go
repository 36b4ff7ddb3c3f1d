package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"warbler/internal/config"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"
)

type MessageService struct {
	users     repository.UserRepository
	messages  repository.MessageRepository
	maxLength int
	now       func() time.Time
	obs       Observer
}

// NewMessageService returns a MessageService accepting messages of up to
// maxLength characters. Zero means config.MaxMessageLength.
func NewMessageService(users repository.UserRepository, messages repository.MessageRepository, maxLength int, obs Observer) *MessageService {
	if maxLength <= 0 || maxLength > config.MaxMessageLength {
		maxLength = config.MaxMessageLength
	}
	return &MessageService{
		users:     users,
		messages:  messages,
		maxLength: maxLength,
		now:       func() time.Time { return time.Now().UTC() },
		obs:       obs,
	}
}

// Post stores a new message by userID.
func (s *MessageService) Post(ctx context.Context, userID uint, text string) (*models.Message, error) {
	var msg *models.Message
	err := s.obs.run(ctx, "post_message", func(ctx context.Context) error {
		if err := validation.ValidateMessageText(text, s.maxLength); err != nil {
			return models.NewValidationError(err.Error())
		}
		if _, err := s.users.GetByID(ctx, userID); err != nil {
			return err
		}

		candidate := &models.Message{
			UserID:    userID,
			Text:      strings.TrimSpace(text),
			Timestamp: s.now(),
		}
		if err := s.messages.Create(ctx, candidate); err != nil {
			return err
		}
		msg = candidate

		s.obs.logger().InfoContext(ctx, "message posted",
			slog.Uint64("user_id", uint64(userID)),
			slog.Uint64("message_id", uint64(msg.ID)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Delete removes messageID if requestingUserID wrote it. Anyone else gets a
// ForbiddenError and the message stays.
func (s *MessageService) Delete(ctx context.Context, messageID, requestingUserID uint) error {
	return s.obs.run(ctx, "delete_message", func(ctx context.Context) error {
		msg, err := s.messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if msg.UserID != requestingUserID {
			return models.NewForbiddenError("not authorized to delete this message")
		}

		removed, err := s.messages.DeleteOwned(ctx, messageID, requestingUserID)
		if err != nil {
			return err
		}
		if !removed {
			return models.NewNotFoundError("Message", messageID)
		}

		s.obs.logger().InfoContext(ctx, "message deleted",
			slog.Uint64("user_id", uint64(requestingUserID)),
			slog.Uint64("message_id", uint64(messageID)))
		return nil
	})
}

func (s *MessageService) Get(ctx context.Context, messageID uint) (*models.Message, error) {
	return s.messages.GetByID(ctx, messageID)
}

// ListByUser returns the messages of userID, newest first.
func (s *MessageService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByUser(ctx, userID, limit, offset)
}

// Timeline returns the newest messages by userID and the users they follow.
func (s *MessageService) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.messages.Timeline(ctx, userID, limit)
}
