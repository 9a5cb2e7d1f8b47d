package conversations

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// MemoryRepository keeps conversation history in process memory. Sessions
// live until the process exits or ClearHistory is called.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]*schema.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: map[string][]*schema.Message{}}
}

func (r *MemoryRepository) AddMessage(_ context.Context, conversationID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conversationID] = append(r.sessions[conversationID], message)
	return nil
}

func (r *MemoryRepository) LoadHistory(_ context.Context, conversationID string) ([]*schema.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.sessions[conversationID]
	out := make([]*schema.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *MemoryRepository) ClearHistory(_ context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, conversationID)
	return nil
}

func (r *MemoryRepository) MessageCount(_ context.Context, conversationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[conversationID]), nil
}

var _ model.ConversationRepository = (*MemoryRepository)(nil)
