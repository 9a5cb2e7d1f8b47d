// Package conversations manages per-session message history: a fixed system
// persona seeded once at session start, followed by alternating user and
// assistant turns in append order.
package conversations

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// ErrEmptyContent rejects appending a blank turn.
var ErrEmptyContent = errors.New("conversation message content is empty")

// Manager wraps a ConversationRepository with the persona invariant: the
// system message is always exactly first and never duplicated or removed.
type Manager struct {
	repo    model.ConversationRepository
	persona string
}

func NewManager(repo model.ConversationRepository, persona string) *Manager {
	return &Manager{repo: repo, persona: persona}
}

// StartSession seeds the persona message when the session is empty.
// Calling it on an existing session is a no-op, which keeps the persona
// unique across turns.
func (m *Manager) StartSession(ctx context.Context, conversationID string) error {
	n, err := m.repo.MessageCount(ctx, conversationID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return m.repo.AddMessage(ctx, conversationID, schema.SystemMessage(m.persona))
}

// AppendUser appends a user turn.
func (m *Manager) AppendUser(ctx context.Context, conversationID, content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	return m.repo.AddMessage(ctx, conversationID, schema.UserMessage(content))
}

// AppendAssistant appends an assistant turn.
func (m *Manager) AppendAssistant(ctx context.Context, conversationID, content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	return m.repo.AddMessage(ctx, conversationID, schema.AssistantMessage(content, nil))
}

// Snapshot returns the ordered message history, persona first.
func (m *Manager) Snapshot(ctx context.Context, conversationID string) ([]*schema.Message, error) {
	return m.repo.LoadHistory(ctx, conversationID)
}

// ClearSession drops the history and re-seeds the persona, so a cleared
// session still satisfies the persona-first invariant.
func (m *Manager) ClearSession(ctx context.Context, conversationID string) error {
	if err := m.repo.ClearHistory(ctx, conversationID); err != nil {
		return err
	}
	return m.repo.AddMessage(ctx, conversationID, schema.SystemMessage(m.persona))
}
