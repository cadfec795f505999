package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/repomesh/repomesh/core"
	"github.com/repomesh/repomesh/internal/util"
	"github.com/repomesh/repomesh/logging"
)

const (
	configFile  = "config.json"
	historyFile = "history.json"
)

// Options configures the file-backed agent store.
type Options struct {
	// Overwrite replaces an existing record on duplicate registration instead
	// of rejecting it with core.ErrAgentExists. Off by default; overwrites
	// are logged as warnings.
	Overwrite bool
	// Logger receives store-level diagnostics.
	Logger logging.Logger
}

// FileStore is a durable core.AgentStore keeping one directory per agent
// under its root. Existing records are loaded into the in-memory index at
// construction time; all mutations are persisted immediately via atomic
// write-then-rename. Safe for concurrent use.
type FileStore struct {
	dir       string
	overwrite bool
	logger    logging.Logger

	mu     sync.RWMutex
	agents map[string]*core.AgentRecord
}

// NewFileStore creates the root directory if needed and repopulates the index
// from any agent records already on disk.
func NewFileStore(dir string, optFns ...func(o *Options)) (*FileStore, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create agents dir: %w", err)
	}

	s := &FileStore{
		dir:       dir,
		overwrite: opts.Overwrite,
		logger:    opts.Logger,
		agents:    make(map[string]*core.AgentRecord),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read agents dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.loadFromDisk(entry.Name())
		if err != nil {
			if errors.Is(err, core.ErrAgentNotFound) {
				continue
			}
			s.logger.Warn("skipping unreadable agent record", "agent", entry.Name(), "error", err)
			continue
		}
		s.agents[rec.Name()] = rec
	}

	return s, nil
}

// Register persists a new agent record, rejecting duplicate names unless the
// store was configured with Overwrite.
func (s *FileStore) Register(config core.AgentConfig) (*core.AgentRecord, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[config.Name]; exists {
		if !s.overwrite {
			return nil, fmt.Errorf("%w: %s", core.ErrAgentExists, config.Name)
		}
		s.logger.Warn("overwriting existing agent registration", "agent", config.Name)
	}

	rec := core.NewAgentRecord(config)
	if err := s.saveConfigLocked(rec); err != nil {
		return nil, err
	}
	if err := s.saveHistoryLocked(rec); err != nil {
		return nil, err
	}
	s.agents[config.Name] = rec

	return rec.Clone(), nil
}

// Get returns a clone of the record for name.
func (s *FileStore) Get(name string) (*core.AgentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	return rec.Clone(), nil
}

// List returns all registered agent names in lexical order.
func (s *FileStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes the agent from the index. The durable record stays on
// disk and will be picked up again by the next construction.
func (s *FileStore) Unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[name]; !ok {
		return false
	}
	delete(s.agents, name)
	return true
}

// AppendMessage appends to the agent's private history and persists the
// history file.
func (s *FileStore) AppendMessage(name string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.agents[name]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	rec.AddMessage(msg)
	return s.saveHistoryLocked(rec)
}

// SetSessionID records the agent's latest session continuation token. The
// token is an in-memory affordance for resuming runtime context within one
// process lifetime; it is not part of the durable record.
func (s *FileStore) SetSessionID(name, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.agents[name]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	rec.SetSessionID(sessionID)
	return nil
}

// Load reconstructs identity and history from durable storage, bypassing the
// in-memory index.
func (s *FileStore) Load(name string) (*core.AgentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadFromDisk(name)
}

// Summarize renders the agent's recent history for context sharing.
func (s *FileStore) Summarize(name string, maxMessages int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.agents[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	return rec.ContextSummary(maxMessages), nil
}

func (s *FileStore) agentDir(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) saveConfigLocked(rec *core.AgentRecord) error {
	dir := s.agentDir(rec.Name())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create agent dir: %w", err)
	}
	if err := util.WriteJSONAtomic(filepath.Join(dir, configFile), rec.Config); err != nil {
		return fmt.Errorf("persist agent config: %w", err)
	}
	return nil
}

func (s *FileStore) saveHistoryLocked(rec *core.AgentRecord) error {
	dir := s.agentDir(rec.Name())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create agent dir: %w", err)
	}
	if err := util.WriteJSONAtomic(filepath.Join(dir, historyFile), rec.History()); err != nil {
		return fmt.Errorf("persist agent history: %w", err)
	}
	return nil
}

func (s *FileStore) loadFromDisk(name string) (*core.AgentRecord, error) {
	raw, err := os.ReadFile(filepath.Join(s.agentDir(name), configFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
		}
		return nil, fmt.Errorf("read agent config: %w", err)
	}

	var config core.AgentConfig
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("decode agent config: %w", err)
	}
	rec := core.NewAgentRecord(config)

	raw, err = os.ReadFile(filepath.Join(s.agentDir(name), historyFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rec, nil
		}
		return nil, fmt.Errorf("read agent history: %w", err)
	}
	var history []core.Message
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("decode agent history: %w", err)
	}
	rec.RestoreHistory(history)

	return rec, nil
}
