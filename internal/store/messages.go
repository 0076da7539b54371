package store

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"tunebox/internal/models"
)

// SendMessage appends a message from sender to receiver. Both users must
// exist; content is required and capped at models.MaxMessageLength characters.
func (s *Store) SendMessage(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error) {
	if senderID <= 0 || receiverID <= 0 {
		return models.Message{}, invalidf("sender_id and receiver_id are required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, invalidf("content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return models.Message{}, invalidf("content must be at most %d characters", models.MaxMessageLength)
	}

	msg := models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp
	`, senderID, receiverID, content).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Message{}, ErrUserNotFound
		}
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListMessagesBetween returns the conversation between two users in either
// direction, oldest first.
func (s *Store) ListMessagesBetween(ctx context.Context, userA, userB int64) ([]models.Message, error) {
	if userA <= 0 || userB <= 0 {
		return nil, invalidf("both user ids are required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, timestamp
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY timestamp ASC, id ASC
	`, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
