package messages

import (
	"context"

	"tunebox/internal/models"
)

// Store captures the persistence needs for direct messages.
type Store interface {
	SendMessage(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error)
	ListMessagesBetween(ctx context.Context, userA, userB int64) ([]models.Message, error)
}

// Service is the append-only message log between two users.
type Service interface {
	Send(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error)
	Conversation(ctx context.Context, userA, userB int64) ([]models.Message, error)
}

type service struct {
	store Store
}

// New constructs a messages Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Send(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error) {
	if err := ctx.Err(); err != nil {
		return models.Message{}, err
	}
	return s.store.SendMessage(ctx, senderID, receiverID, content)
}

func (s *service) Conversation(ctx context.Context, userA, userB int64) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListMessagesBetween(ctx, userA, userB)
}
