package conversation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/repomesh/repomesh/core"
)

// InMemoryStore is a volatile core.ConversationStore keeping conversations in
// a process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo setups. Each returned conversation is cloned to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*core.Conversation)}
}

// Create adds a new conversation with a fresh unique id.
func (s *InMemoryStore) Create(participants []string) (*core.Conversation, error) {
	conv := core.NewConversation()
	for _, name := range participants {
		conv.AddParticipant(name, "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.ID] = conv
	return conv.Clone(), nil
}

// Get returns a clone of the conversation for id.
func (s *InMemoryStore) Get(id string) (*core.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrConversationNotFound, id)
	}
	return conv.Clone(), nil
}

// List returns all known conversation ids in lexical order.
func (s *InMemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddParticipant adds name to the participant set (idempotent).
func (s *InMemoryStore) AddParticipant(id, name, contextSummary string) error {
	conv, err := s.live(id)
	if err != nil {
		return err
	}
	conv.AddParticipant(name, contextSummary)
	return nil
}

// RemoveParticipant removes name from the participant set.
func (s *InMemoryStore) RemoveParticipant(id, name string) error {
	conv, err := s.live(id)
	if err != nil {
		return err
	}
	conv.RemoveParticipant(name)
	return nil
}

// AppendMessage appends to the shared log.
func (s *InMemoryStore) AppendMessage(id string, msg core.Message) error {
	conv, err := s.live(id)
	if err != nil {
		return err
	}
	conv.AddMessage(msg)
	return nil
}

// RecentMessages returns the last limit messages in append order.
func (s *InMemoryStore) RecentMessages(id string, limit int) ([]core.Message, error) {
	conv, err := s.live(id)
	if err != nil {
		return nil, err
	}
	return conv.RecentMessages(limit), nil
}

// JoinContext renders the joining-agent context summary.
func (s *InMemoryStore) JoinContext(id string, maxMessages int) (string, error) {
	conv, err := s.live(id)
	if err != nil {
		return "", err
	}
	return conv.JoinContext(maxMessages), nil
}

func (s *InMemoryStore) live(id string) (*core.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrConversationNotFound, id)
	}
	return conv, nil
}
