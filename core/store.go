package core

// AgentStore owns durable identity, configuration and rolling history, one
// record per unique agent name. Implementations guard their index for
// concurrent use and hand out clones so callers never alias internal state.
type AgentStore interface {
	// Register persists a new agent record. Duplicate names are rejected with
	// ErrAgentExists unless the implementation was configured to overwrite.
	Register(config AgentConfig) (*AgentRecord, error)

	// Get returns the record for name or ErrAgentNotFound.
	Get(name string) (*AgentRecord, error)

	// List returns all registered agent names in lexical order.
	List() []string

	// Unregister removes the agent from the index without deleting its
	// durable record. Returns false if the name was not registered.
	Unregister(name string) bool

	// AppendMessage appends to the agent's private history and persists it.
	AppendMessage(name string, msg Message) error

	// SetSessionID records the agent's latest session continuation token.
	SetSessionID(name, sessionID string) error

	// Load reconstructs identity and history from durable storage, bypassing
	// the in-memory index. Returns ErrAgentNotFound when nothing is stored.
	Load(name string) (*AgentRecord, error)

	// Summarize renders the agent's recent history for context sharing (see
	// AgentRecord.ContextSummary).
	Summarize(name string, maxMessages int) (string, error)
}

// ConversationStore owns multi-party message logs and participant membership,
// one record per unique conversation id.
type ConversationStore interface {
	// Create persists a new conversation with a fresh unique id and adds the
	// given participants in order. Callers resolve names against the agent
	// registry before handing them in.
	Create(participants []string) (*Conversation, error)

	// Get returns the conversation for id or ErrConversationNotFound.
	// Implementations may load lazily from durable storage.
	Get(id string) (*Conversation, error)

	// List returns all known conversation ids in lexical order.
	List() []string

	// AddParticipant adds name to the participant set (idempotent) with an
	// optional context summary embedded in the join announcement.
	AddParticipant(id, name, contextSummary string) error

	// RemoveParticipant removes name from the participant set (no-op when
	// absent) and records the departure.
	RemoveParticipant(id, name string) error

	// AppendMessage appends to the shared log and persists it.
	AppendMessage(id string, msg Message) error

	// RecentMessages returns the last limit messages in append order.
	RecentMessages(id string, limit int) ([]Message, error)

	// JoinContext renders the joining-agent context summary (see
	// Conversation.JoinContext).
	JoinContext(id string, maxMessages int) (string, error)
}
