package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/repomesh/repomesh/claude"
	"github.com/repomesh/repomesh/classify"
	"github.com/repomesh/repomesh/conversation"
	"github.com/repomesh/repomesh/core"
	"github.com/repomesh/repomesh/logging"
	"github.com/repomesh/repomesh/registry"
)

const (
	// defaultContextWindow bounds how many conversation messages are embedded
	// into a participant's prompt.
	defaultContextWindow = 10
	// joinContextWindow bounds the summary rendered for a newly invited agent.
	joinContextWindow = 20
)

// AgentResponse is the outcome of executing one prompt against one agent.
type AgentResponse struct {
	AgentName string `json:"agent_name"`
	Content   string `json:"content"`
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
}

// Options configures the Orchestrator. Zero-value fields fall back to
// in-memory stores, the CLI runtime adapter and a runtime-backed classifier.
type Options struct {
	// AgentStore holds agent identity and history.
	AgentStore core.AgentStore
	// ConversationStore holds shared conversation logs.
	ConversationStore core.ConversationStore
	// Invoker executes prompts against the external runtime.
	Invoker core.Invoker
	// Classifier maps free-form tasks onto command tags.
	Classifier classify.Classifier
	// Logger receives orchestration diagnostics.
	Logger logging.Logger
	// OutputDir, when set, switches invocations to structured capture mode
	// with per-invocation artifacts under this directory.
	OutputDir string
	// ContextWindow is the number of recent conversation messages embedded
	// into broadcast prompts. Defaults to defaultContextWindow.
	ContextWindow int
	// DefaultModel is used when a caller passes an empty tier.
	DefaultModel core.ModelTier
	// SkipPermissions bypasses the runtime's interactive permission prompts
	// on every invocation.
	SkipPermissions bool
}

// Orchestrator is the top-level coordination API. Safe for concurrent use;
// operations serialize per agent name and per conversation id.
type Orchestrator struct {
	agents          core.AgentStore
	conversations   core.ConversationStore
	invoker         core.Invoker
	classifier      classify.Classifier
	logger          logging.Logger
	outputDir       string
	contextWindow   int
	defaultModel    core.ModelTier
	skipPermissions bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds an Orchestrator, filling unset collaborators with defaults.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:        logging.NoOpLogger{},
		ContextWindow: defaultContextWindow,
		DefaultModel:  core.ModelTierBalanced,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.AgentStore == nil {
		opts.AgentStore = registry.NewInMemoryStore()
	}
	if opts.ConversationStore == nil {
		opts.ConversationStore = conversation.NewInMemoryStore()
	}
	if opts.Invoker == nil {
		opts.Invoker = claude.New(func(o *claude.Options) {
			o.Logger = opts.Logger
		})
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.NewRuntimeClassifier(opts.Invoker, func(o *classify.Options) {
			o.Logger = opts.Logger
			o.SkipPermissions = opts.SkipPermissions
		})
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = defaultContextWindow
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = core.ModelTierBalanced
	}

	return &Orchestrator{
		agents:          opts.AgentStore,
		conversations:   opts.ConversationStore,
		invoker:         opts.Invoker,
		classifier:      opts.Classifier,
		logger:          opts.Logger,
		outputDir:       opts.OutputDir,
		contextWindow:   opts.ContextWindow,
		defaultModel:    opts.DefaultModel,
		skipPermissions: opts.SkipPermissions,
		locks:           make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex for key, creating it on first use. Keys are
// namespaced so an agent named like a conversation id cannot collide.
func (o *Orchestrator) lockFor(key string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[key]
	if !ok {
		l = &sync.Mutex{}
		o.locks[key] = l
	}
	return l
}

func (o *Orchestrator) agentLock(name string) *sync.Mutex {
	return o.lockFor("agent:" + name)
}

func (o *Orchestrator) conversationLock(id string) *sync.Mutex {
	return o.lockFor("conversation:" + id)
}

// RegisterAgent registers a new agent and returns its record.
func (o *Orchestrator) RegisterAgent(config core.AgentConfig) (*core.AgentRecord, error) {
	rec, err := o.agents.Register(config)
	if err != nil {
		return nil, err
	}
	o.logger.Info("agent registered", "agent", config.Name, "repo", config.RepoPath)
	return rec, nil
}

// UnregisterAgent removes an agent from the index. Durable records are left
// intact; a later Load can still read them.
func (o *Orchestrator) UnregisterAgent(name string) bool {
	removed := o.agents.Unregister(name)
	if removed {
		o.logger.Info("agent unregistered", "agent", name)
	}
	return removed
}

// GetAgent returns the agent record for name.
func (o *Orchestrator) GetAgent(name string) (*core.AgentRecord, error) {
	return o.agents.Get(name)
}

// ListAgents returns all registered agent names.
func (o *Orchestrator) ListAgents() []string {
	return o.agents.List()
}

// CreateConversation creates a conversation with the given agents as initial
// participants. Names not present in the agent index are silently skipped.
func (o *Orchestrator) CreateConversation(names ...string) (*core.Conversation, error) {
	participants := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := o.agents.Get(name); err != nil {
			o.logger.Warn("skipping unknown agent", "agent", name)
			continue
		}
		participants = append(participants, name)
	}

	conv, err := o.conversations.Create(participants)
	if err != nil {
		return nil, err
	}
	o.logger.Info("conversation created", "conversation_id", conv.ID, "participants", len(participants))
	return conv, nil
}

// GetConversation returns the conversation for id.
func (o *Orchestrator) GetConversation(id string) (*core.Conversation, error) {
	return o.conversations.Get(id)
}

// InviteAgent adds a registered agent to an existing conversation, handing it
// a summary of the recent history as join context.
func (o *Orchestrator) InviteAgent(conversationID, agentName string) error {
	if _, err := o.agents.Get(agentName); err != nil {
		return err
	}

	lock := o.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	joinContext, err := o.conversations.JoinContext(conversationID, joinContextWindow)
	if err != nil {
		return err
	}
	if joinContext == core.NoConversationHistory {
		joinContext = ""
	}
	return o.conversations.AddParticipant(conversationID, agentName, joinContext)
}

// RemoveAgentFromConversation drops an agent from the participant set. The
// conversation stays active even when emptied.
func (o *Orchestrator) RemoveAgentFromConversation(conversationID, agentName string) error {
	lock := o.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	return o.conversations.RemoveParticipant(conversationID, agentName)
}

// ClassifyTask maps free-form task text onto a task command for the given
// agent's repository. An unknown agent yields no match rather than an error.
func (o *Orchestrator) ClassifyTask(ctx context.Context, agentName, task string, tier core.ModelTier) (core.Command, bool, error) {
	rec, err := o.agents.Get(agentName)
	if err != nil {
		o.logger.Warn("classification for unknown agent", "agent", agentName)
		return "", false, nil
	}

	start := time.Now()
	tag, ok, err := o.classifier.Classify(ctx, rec.RepoPath(), task, o.tierOrDefault(tier))
	if err != nil {
		return "", false, err
	}
	o.logger.Info("task classified",
		"agent", agentName,
		"tag", string(tag),
		"matched", ok,
		"duration", time.Since(start))
	return tag, ok, nil
}

// ClassifyAndExecute classifies the task and executes the resolved command
// with the raw task text as its argument. When classification yields no
// match the whole call fails; there is no silent default command.
func (o *Orchestrator) ClassifyAndExecute(ctx context.Context, agentName, task string, classifierTier, executionTier core.ModelTier) (AgentResponse, error) {
	tag, ok, err := o.ClassifyTask(ctx, agentName, task, classifierTier)
	if err != nil {
		return AgentResponse{AgentName: agentName, Content: err.Error()}, err
	}
	if !ok {
		err := fmt.Errorf("%w: task %q", core.ErrNoClassification, shorten(task, 80))
		return AgentResponse{AgentName: agentName, Content: err.Error()}, err
	}

	return o.ExecuteCommand(ctx, agentName, tag, []string{task}, executionTier)
}

// ExecuteCommand runs a slash command on one agent directly, outside any
// conversation. The prompt is the tag followed by the space-joined arguments.
func (o *Orchestrator) ExecuteCommand(ctx context.Context, agentName string, tag core.Command, args []string, tier core.ModelTier) (AgentResponse, error) {
	rec, err := o.agents.Get(agentName)
	if err != nil {
		return AgentResponse{
			AgentName: agentName,
			Content:   fmt.Sprintf("Agent %q not found", agentName),
		}, err
	}

	lock := o.agentLock(agentName)
	lock.Lock()
	defer lock.Unlock()

	prompt := string(tag)
	if len(args) > 0 {
		prompt += " " + strings.Join(args, " ")
	}

	return o.dispatch(ctx, rec, prompt, tier)
}

// SendMessage broadcasts a message to conversation participants. When targets
// is non-empty only those participants are addressed; dispatch always follows
// participant-list order so the log stays reproducible. One failed
// participant never aborts the rest.
func (o *Orchestrator) SendMessage(ctx context.Context, conversationID, text string, targets ...string) ([]AgentResponse, error) {
	lock := o.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := o.conversations.Get(conversationID)
	if err != nil {
		return nil, err
	}

	contextMessages, err := o.conversations.RecentMessages(conversationID, o.contextWindow)
	if err != nil {
		return nil, err
	}

	if err := o.conversations.AppendMessage(conversationID, core.NewMessage(core.RoleUser, text)); err != nil {
		return nil, err
	}

	targetSet := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		targetSet[t] = struct{}{}
	}

	start := time.Now()
	var responses []AgentResponse
	failures := 0

	for _, name := range conv.ParticipantNames() {
		if len(targetSet) > 0 {
			if _, ok := targetSet[name]; !ok {
				continue
			}
		}

		rec, err := o.agents.Get(name)
		if err != nil {
			o.logger.Warn("participant not registered, skipping", "agent", name)
			continue
		}

		resp := o.dispatchToParticipant(ctx, rec, contextMessages, text)
		responses = append(responses, resp)

		if !resp.Success {
			failures++
			continue
		}

		reply := core.NewAgentMessage(core.RoleAssistant, resp.Content, name)
		if err := o.conversations.AppendMessage(conversationID, reply); err != nil {
			return responses, err
		}
		if err := o.agents.AppendMessage(name, reply); err != nil {
			o.logger.Warn("failed to record agent history", "agent", name, "error", err)
		}
	}

	o.logger.Info("broadcast completed",
		"conversation_id", conversationID,
		"responses", len(responses),
		"failures", failures,
		"duration", time.Since(start))

	return responses, nil
}

// dispatchToParticipant executes one broadcast leg under the agent's lock.
func (o *Orchestrator) dispatchToParticipant(ctx context.Context, rec *core.AgentRecord, contextMessages []core.Message, text string) AgentResponse {
	lock := o.agentLock(rec.Name())
	lock.Lock()
	defer lock.Unlock()

	prompt := buildPrompt(rec, contextMessages, text)
	resp, err := o.dispatch(ctx, rec, prompt, o.defaultModel)
	if err != nil {
		return AgentResponse{AgentName: rec.Name(), Content: err.Error()}
	}
	return resp
}

// dispatch runs one prompt against the runtime in the agent's repository,
// recording the session continuation token when one comes back. Callers hold
// the agent lock.
func (o *Orchestrator) dispatch(ctx context.Context, rec *core.AgentRecord, prompt string, tier core.ModelTier) (AgentResponse, error) {
	invocationID := core.NewID()
	agentName := rec.Name()

	req := core.InvokeRequest{
		Prompt:           prompt,
		Model:            o.tierOrDefault(tier),
		WorkingDirectory: rec.RepoPath(),
		SkipPermissions:  o.skipPermissions,
		SessionID:        rec.SessionID(),
		InvocationID:     invocationID,
		AgentName:        agentName,
	}
	if o.outputDir != "" {
		req.OutputFile = filepath.Join(o.outputDir, invocationID, agentName, "raw_output.jsonl")
	}

	start := time.Now()
	resp, err := o.invoker.Invoke(ctx, req)
	if err != nil {
		o.logger.Error("runtime invocation failed",
			"agent", agentName,
			"invocation_id", invocationID,
			"error", err)
		return AgentResponse{AgentName: agentName, Content: err.Error()}, err
	}

	o.logger.Info("runtime invocation completed",
		"agent", agentName,
		"invocation_id", invocationID,
		"success", resp.Success,
		"duration", time.Since(start))

	if resp.SessionID != "" {
		if err := o.agents.SetSessionID(agentName, resp.SessionID); err != nil {
			o.logger.Warn("failed to record session id", "agent", agentName, "error", err)
		}
	}

	return AgentResponse{
		AgentName: agentName,
		Content:   resp.Output,
		Success:   resp.Success,
		SessionID: resp.SessionID,
	}, nil
}

func (o *Orchestrator) tierOrDefault(tier core.ModelTier) core.ModelTier {
	if tier == "" {
		return o.defaultModel
	}
	return tier
}

// Snapshot is a point-in-time view of orchestrator state.
type Snapshot struct {
	Agents            []string `json:"agents"`
	AgentCount        int      `json:"agent_count"`
	Conversations     []string `json:"conversations"`
	ConversationCount int      `json:"conversation_count"`
	OutputDir         string   `json:"output_dir,omitempty"`
}

// Status reports registered agent names and known conversation ids.
func (o *Orchestrator) Status() Snapshot {
	agents := o.agents.List()
	conversations := o.conversations.List()
	return Snapshot{
		Agents:            agents,
		AgentCount:        len(agents),
		Conversations:     conversations,
		ConversationCount: len(conversations),
		OutputDir:         o.outputDir,
	}
}
