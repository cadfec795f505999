package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/repomesh/repomesh/core"
)

// InMemoryStore is a volatile core.AgentStore keeping records in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo setups. Each returned record is cloned to prevent external
// mutation of internal state.
type InMemoryStore struct {
	overwrite bool

	mu     sync.RWMutex
	agents map[string]*core.AgentRecord
}

// NewInMemoryStore constructs an empty in-memory agent store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{overwrite: opts.Overwrite, agents: make(map[string]*core.AgentRecord)}
}

// Register adds a new agent record, rejecting duplicates unless Overwrite was set.
func (s *InMemoryStore) Register(config core.AgentConfig) (*core.AgentRecord, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[config.Name]; exists && !s.overwrite {
		return nil, fmt.Errorf("%w: %s", core.ErrAgentExists, config.Name)
	}

	rec := core.NewAgentRecord(config)
	s.agents[config.Name] = rec
	return rec.Clone(), nil
}

// Get returns a clone of the record for name.
func (s *InMemoryStore) Get(name string) (*core.AgentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	return rec.Clone(), nil
}

// List returns all registered agent names in lexical order.
func (s *InMemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes the agent from the index.
func (s *InMemoryStore) Unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[name]; !ok {
		return false
	}
	delete(s.agents, name)
	return true
}

// AppendMessage appends to the agent's private history.
func (s *InMemoryStore) AppendMessage(name string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.agents[name]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	rec.AddMessage(msg)
	return nil
}

// SetSessionID records the agent's latest session continuation token.
func (s *InMemoryStore) SetSessionID(name, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.agents[name]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	rec.SetSessionID(sessionID)
	return nil
}

// Load behaves like Get; there is no durable layer beneath this store.
func (s *InMemoryStore) Load(name string) (*core.AgentRecord, error) {
	return s.Get(name)
}

// Summarize renders the agent's recent history for context sharing.
func (s *InMemoryStore) Summarize(name string, maxMessages int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.agents[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	return rec.ContextSummary(maxMessages), nil
}
