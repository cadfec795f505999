// Package repomesh provides a high-level façade over the orchestrator and its
// stores for coordinating per-repository agents backed by an external CLI
// agent runtime. Most applications interact with this package by:
//  1. Creating a RepoMesh via New() (optionally overriding the in-memory
//     stores with durable ones, or the runtime adapter with a fake)
//  2. Registering one or more agents, each bound to a repository checkout
//  3. Executing commands directly, or convening conversations and
//     broadcasting messages to their participants
//
// The façade delegates coordination to orchestrator.Orchestrator while
// keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply
// file-backed stores, an output directory for invocation capture, and a
// structured logger.
package repomesh

import (
	"context"

	"github.com/repomesh/repomesh/classify"
	"github.com/repomesh/repomesh/core"
	"github.com/repomesh/repomesh/logging"
	"github.com/repomesh/repomesh/orchestrator"
)

// Options configures the RepoMesh instance.
type Options struct {
	// Stores (default to in-memory implementations if not provided)
	AgentStore        core.AgentStore
	ConversationStore core.ConversationStore

	// Invoker executes prompts against the external runtime (defaults to the
	// Claude Code CLI adapter).
	Invoker core.Invoker

	// Classifier maps free-form tasks onto command tags (defaults to a
	// runtime-backed classifier over the Invoker).
	Classifier classify.Classifier

	// OutputDir enables structured stream capture of every invocation.
	OutputDir string

	// ContextWindow is the number of recent conversation messages embedded
	// into broadcast prompts.
	ContextWindow int

	// DefaultModel is the tier used when callers pass none.
	DefaultModel core.ModelTier

	// SkipPermissions bypasses the runtime's interactive permission prompts.
	SkipPermissions bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// RepoMesh is the high-level façade aggregating the orchestrator and stores.
type RepoMesh struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a new RepoMesh instance with optional overrides. Any unset
// collaborator is initialized with its default implementation.
func New(optFns ...func(o *Options)) *RepoMesh {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	orch := orchestrator.New(func(o *orchestrator.Options) {
		o.AgentStore = opts.AgentStore
		o.ConversationStore = opts.ConversationStore
		o.Invoker = opts.Invoker
		o.Classifier = opts.Classifier
		o.Logger = opts.Logger
		o.OutputDir = opts.OutputDir
		o.ContextWindow = opts.ContextWindow
		o.DefaultModel = opts.DefaultModel
		o.SkipPermissions = opts.SkipPermissions
	})

	return &RepoMesh{opts: opts, orch: orch}
}

// RegisterAgent registers a new agent bound to one repository checkout.
func (m *RepoMesh) RegisterAgent(config core.AgentConfig) (*core.AgentRecord, error) {
	return m.orch.RegisterAgent(config)
}

// UnregisterAgent removes an agent from the index, leaving durable records
// intact.
func (m *RepoMesh) UnregisterAgent(name string) bool {
	return m.orch.UnregisterAgent(name)
}

// GetAgent returns the record for a registered agent.
func (m *RepoMesh) GetAgent(name string) (*core.AgentRecord, error) {
	return m.orch.GetAgent(name)
}

// ListAgents returns all registered agent names.
func (m *RepoMesh) ListAgents() []string {
	return m.orch.ListAgents()
}

// CreateConversation creates a conversation with the given agents as initial
// participants, silently skipping unknown names.
func (m *RepoMesh) CreateConversation(names ...string) (*core.Conversation, error) {
	return m.orch.CreateConversation(names...)
}

// GetConversation returns the conversation for id.
func (m *RepoMesh) GetConversation(id string) (*core.Conversation, error) {
	return m.orch.GetConversation(id)
}

// InviteAgent adds a registered agent to an existing conversation with a
// summary of the recent history as join context.
func (m *RepoMesh) InviteAgent(conversationID, agentName string) error {
	return m.orch.InviteAgent(conversationID, agentName)
}

// RemoveAgentFromConversation drops an agent from the participant set.
func (m *RepoMesh) RemoveAgentFromConversation(conversationID, agentName string) error {
	return m.orch.RemoveAgentFromConversation(conversationID, agentName)
}

// SendMessage broadcasts a message to conversation participants in
// participant-list order, returning their individual responses.
func (m *RepoMesh) SendMessage(ctx context.Context, conversationID, text string, targets ...string) ([]orchestrator.AgentResponse, error) {
	return m.orch.SendMessage(ctx, conversationID, text, targets...)
}

// ClassifyTask maps free-form task text onto a task command for an agent.
func (m *RepoMesh) ClassifyTask(ctx context.Context, agentName, task string, tier core.ModelTier) (core.Command, bool, error) {
	return m.orch.ClassifyTask(ctx, agentName, task, tier)
}

// ClassifyAndExecute classifies the task and executes the resolved command
// with the raw task text as its argument.
func (m *RepoMesh) ClassifyAndExecute(ctx context.Context, agentName, task string, classifierTier, executionTier core.ModelTier) (orchestrator.AgentResponse, error) {
	return m.orch.ClassifyAndExecute(ctx, agentName, task, classifierTier, executionTier)
}

// ExecuteCommand runs a slash command on one agent directly.
func (m *RepoMesh) ExecuteCommand(ctx context.Context, agentName string, tag core.Command, args []string, tier core.ModelTier) (orchestrator.AgentResponse, error) {
	return m.orch.ExecuteCommand(ctx, agentName, tag, args, tier)
}

// Status reports registered agent names and known conversation ids.
func (m *RepoMesh) Status() orchestrator.Snapshot {
	return m.orch.Status()
}
