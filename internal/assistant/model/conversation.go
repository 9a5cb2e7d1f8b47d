package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository persists the ordered, append-only message history
// of a session.
type ConversationRepository interface {
	// AddMessage appends a message to the conversation history.
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the conversation history in append order.
	LoadHistory(ctx context.Context, conversationID string) ([]*schema.Message, error)

	// ClearHistory removes all conversation history for a conversation.
	ClearHistory(ctx context.Context, conversationID string) error

	// MessageCount returns the number of messages in the conversation.
	MessageCount(ctx context.Context, conversationID string) (int, error)
}
