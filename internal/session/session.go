// Package session orchestrates one chat conversation: it turns host actions
// into prompts, dispatches them to the transport client, and applies the
// results to the owned history.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"

	"github.com/forgehq/forge-go/internal/chat"
	"github.com/forgehq/forge-go/internal/config"
	"github.com/forgehq/forge-go/internal/llm"
	"github.com/forgehq/forge-go/internal/logger"
	"github.com/forgehq/forge-go/internal/prompt"
	"github.com/forgehq/forge-go/internal/transcript"
)

// ErrCancelled is returned when the host reports that the user backed out of
// an input prompt. Nothing is sent and nothing changes.
var ErrCancelled = errors.New("input cancelled")

// FSM states. Each submission runs its own machine from Idle back to Idle.
type fsmState stateless.State

var (
	stateIdle     fsmState = "Idle"
	stateBuilding fsmState = "Building"
	stateSending  fsmState = "Sending"
)

// FSM triggers.
type fsmTrigger stateless.Trigger

var (
	triggerSubmit      fsmTrigger = "Submit"
	triggerBuilt       fsmTrigger = "Built"
	triggerBuildFailed fsmTrigger = "BuildFailed"
	triggerDelivered   fsmTrigger = "Delivered"
	triggerSendFailed  fsmTrigger = "SendFailed"
)

// Manager owns the state of one session. It is the only writer of its
// history; hosts read turns through the render callbacks or the transcript.
//
// Overlapping submissions are not interlocked: if two actions are in flight
// at once, their exchanges land in history in completion order.
type Manager struct {
	id           string
	cfg          config.LLMConfig
	client       llm.Client
	host         Host
	state        *chat.State
	store        *transcript.Store
	systemPrompt string
}

// New creates a session manager. The configuration is fixed for the
// session's lifetime; reconfiguring means creating a new manager.
func New(client llm.Client, host Host, store *transcript.Store, cfg config.LLMConfig) *Manager {
	sys := cfg.SystemPrompt
	if sys == "" {
		sys = prompt.DefaultSystemPrompt
	}
	return &Manager{
		id:           uuid.NewString(),
		cfg:          cfg,
		client:       client,
		host:         host,
		state:        chat.NewState(),
		store:        store,
		systemPrompt: sys,
	}
}

func (m *Manager) ID() string { return m.id }

// History returns a copy of the session's message history.
func (m *Manager) History() []chat.Message { return m.state.Snapshot() }

// Transcript returns the rendered turns recorded for this session.
func (m *Manager) Transcript() []transcript.Entry { return m.store.List(m.id) }

// Chat prompts the host for a free-form message and submits it.
func (m *Manager) Chat(ctx context.Context) error {
	text, ok := m.host.PromptUser("Chat")
	if !ok {
		return ErrCancelled
	}
	return m.Submit(ctx, prompt.ActionChat, text, "")
}

// Explain submits the current selection for explanation.
func (m *Manager) Explain(ctx context.Context) error {
	return m.codeAction(ctx, prompt.ActionExplain)
}

// GenerateTests submits the current selection for test generation.
func (m *Manager) GenerateTests(ctx context.Context) error {
	return m.codeAction(ctx, prompt.ActionTests)
}

// Refactor submits the current selection for refactoring suggestions.
func (m *Manager) Refactor(ctx context.Context) error {
	return m.codeAction(ctx, prompt.ActionRefactor)
}

// FixBug submits the current selection for bug hunting.
func (m *Manager) FixBug(ctx context.Context) error {
	return m.codeAction(ctx, prompt.ActionFixBug)
}

func (m *Manager) codeAction(ctx context.Context, action prompt.Action) error {
	return m.Submit(ctx, action, m.host.SelectedText(), m.host.LanguageTag())
}

// ClearChat empties history and transcript. The next exchange starts a fresh
// conversation.
func (m *Manager) ClearChat() {
	m.state.Clear()
	m.store.Clear(m.id)
	logger.L.Info("history cleared", "session", m.id)
}

// submitFrame carries one submission's data across FSM states.
type submitFrame struct {
	user      chat.Message
	assistant chat.Message
	err       error
}

// Submit runs one action through Building and Sending and back to Idle. A
// build failure surfaces as a host warning with no network call; a transport
// failure renders an error line; only a confirmed success appends the
// exchange to history. Failed exchanges leave no trace in history, so the
// next request's context matches what the model actually saw.
func (m *Manager) Submit(ctx context.Context, action prompt.Action, input, lang string) error {
	frame := &submitFrame{}
	fsm := stateless.NewStateMachine(stateIdle)

	fsm.Configure(stateIdle).
		Permit(triggerSubmit, stateBuilding)

	fsm.Configure(stateBuilding).
		OnEntry(func(ctx context.Context, _ ...any) error {
			text, err := prompt.Build(action, input, lang)
			if err != nil {
				frame.err = err
				return fsm.FireCtx(ctx, triggerBuildFailed)
			}
			frame.user = chat.Message{Role: chat.RoleUser, Content: text}
			return fsm.FireCtx(ctx, triggerBuilt)
		}).
		Permit(triggerBuilt, stateSending).
		Permit(triggerBuildFailed, stateIdle)

	fsm.Configure(stateSending).
		OnEntry(func(ctx context.Context, _ ...any) error {
			// Optimistic echo: show the outbound message before the
			// network result is known.
			m.host.RenderMessage(chat.RoleUser, frame.user.Content)
			m.store.Save(m.id, chat.RoleUser, frame.user.Content)

			reply, err := m.send(ctx, frame.user)
			if err != nil {
				frame.err = err
				return fsm.FireCtx(ctx, triggerSendFailed)
			}
			frame.assistant = reply
			return fsm.FireCtx(ctx, triggerDelivered)
		}).
		Permit(triggerDelivered, stateIdle).
		Permit(triggerSendFailed, stateIdle)

	if err := fsm.FireCtx(ctx, triggerSubmit); err != nil {
		logger.L.Error("submit state machine error", "session", m.id, "error", err)
		return err
	}

	switch {
	case errors.Is(frame.err, prompt.ErrEmptyInput):
		logger.L.Warn("nothing to submit", "session", m.id, "action", action)
		m.host.NotifyWarning("nothing selected to send")
		return frame.err
	case frame.err != nil:
		logger.L.Error("exchange failed", "session", m.id, "action", action, "error", frame.err)
		errLine := "Error: " + frame.err.Error()
		m.host.RenderMessage(chat.RoleAssistant, errLine)
		m.store.Save(m.id, chat.RoleAssistant, errLine)
		return frame.err
	}

	m.state.AppendExchange(frame.user, frame.assistant)
	m.store.Save(m.id, chat.RoleAssistant, frame.assistant.Content)
	m.host.RenderMessage(chat.RoleAssistant, frame.assistant.Content)
	logger.L.Debug("exchange recorded", "session", m.id, "action", action, "history", m.state.Len())
	return nil
}

// send assembles the outbound message list from a history snapshot plus the
// new user message and dispatches it once.
func (m *Manager) send(ctx context.Context, user chat.Message) (chat.Message, error) {
	history := m.state.Snapshot()
	msgs := make([]chat.Message, 0, len(history)+2)
	if m.systemPrompt != "" {
		msgs = append(msgs, chat.Message{Role: chat.RoleSystem, Content: m.systemPrompt})
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, user)

	if m.cfg.Stream {
		if fr, ok := m.host.(FragmentRenderer); ok {
			return m.client.ChatStream(ctx, msgs, fr.RenderFragment)
		}
		return m.client.ChatStream(ctx, msgs, func(string) {})
	}
	return m.client.Chat(ctx, msgs)
}
