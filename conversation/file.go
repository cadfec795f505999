package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/repomesh/repomesh/core"
	"github.com/repomesh/repomesh/internal/util"
	"github.com/repomesh/repomesh/logging"
)

// Options configures the file-backed conversation store.
type Options struct {
	// Logger receives store-level diagnostics.
	Logger logging.Logger
}

// FileStore is a durable core.ConversationStore keeping one JSON document per
// conversation under its root directory. Records are loaded lazily: Get first
// consults the in-memory index, then the disk. Safe for concurrent use.
type FileStore struct {
	dir    string
	logger logging.Logger

	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewFileStore creates the root directory if needed.
func NewFileStore(dir string, optFns ...func(o *Options)) (*FileStore, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversations dir: %w", err)
	}

	return &FileStore{
		dir:           dir,
		logger:        opts.Logger,
		conversations: make(map[string]*core.Conversation),
	}, nil
}

// Create persists a new conversation with a fresh unique id, adding the given
// participants in order.
func (s *FileStore) Create(participants []string) (*core.Conversation, error) {
	conv := core.NewConversation()
	for _, name := range participants {
		conv.AddParticipant(name, "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(conv); err != nil {
		return nil, err
	}
	s.conversations[conv.ID] = conv

	return conv.Clone(), nil
}

// Get returns a clone of the conversation for id, loading it from disk when
// it is not yet in the index.
func (s *FileStore) Get(id string) (*core.Conversation, error) {
	s.mu.RLock()
	conv, ok := s.conversations[id]
	s.mu.RUnlock()
	if ok {
		return conv.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(id)
}

// List returns ids of all conversations known in memory or on disk, in
// lexical order.
func (s *FileStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.conversations))
	for id := range s.conversations {
		seen[id] = struct{}{}
	}
	entries, err := os.ReadDir(s.dir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			seen[strings.TrimSuffix(entry.Name(), ".json")] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddParticipant adds name to the participant set (idempotent) and persists.
func (s *FileStore) AddParticipant(id, name, contextSummary string) error {
	return s.mutate(id, func(conv *core.Conversation) {
		conv.AddParticipant(name, contextSummary)
	})
}

// RemoveParticipant removes name from the participant set and persists.
func (s *FileStore) RemoveParticipant(id, name string) error {
	return s.mutate(id, func(conv *core.Conversation) {
		conv.RemoveParticipant(name)
	})
}

// AppendMessage appends to the shared log and persists.
func (s *FileStore) AppendMessage(id string, msg core.Message) error {
	return s.mutate(id, func(conv *core.Conversation) {
		conv.AddMessage(msg)
	})
}

// RecentMessages returns the last limit messages in append order.
func (s *FileStore) RecentMessages(id string, limit int) ([]core.Message, error) {
	conv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return conv.RecentMessages(limit), nil
}

// JoinContext renders the joining-agent context summary.
func (s *FileStore) JoinContext(id string, maxMessages int) (string, error) {
	conv, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return conv.JoinContext(maxMessages), nil
}

// mutate applies fn to the live record under the store lock and persists the
// result atomically, keeping every mutation single-writer per conversation.
func (s *FileStore) mutate(id string, fn func(conv *core.Conversation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		loaded, err := s.loadLiveLocked(id)
		if err != nil {
			return err
		}
		conv = loaded
	}

	fn(conv)
	return s.saveLocked(conv)
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) saveLocked(conv *core.Conversation) error {
	if err := util.WriteJSONAtomic(s.path(conv.ID), conv.Clone()); err != nil {
		return fmt.Errorf("persist conversation %s: %w", conv.ID, err)
	}
	return nil
}

// loadLiveLocked reads a conversation from disk into the index and returns
// the live record. Caller must hold the write lock.
func (s *FileStore) loadLiveLocked(id string) (*core.Conversation, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrConversationNotFound, id)
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var conv core.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	s.conversations[id] = &conv
	return &conv, nil
}

func (s *FileStore) loadLocked(id string) (*core.Conversation, error) {
	conv, err := s.loadLiveLocked(id)
	if err != nil {
		return nil, err
	}
	return conv.Clone(), nil
}
