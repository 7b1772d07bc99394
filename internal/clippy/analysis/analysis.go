// Package analysis wires the classifier, prompt builder, model provider,
// segmenter and session store into the two user-facing operations: analyzing
// submitted text and continuing a conversation about it.
//
// Model failures never escape as errors. They are turned into result fields
// so callers can always render something.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/longkey1/clippyai/internal/clippy"
	"github.com/longkey1/clippyai/internal/clippy/classify"
	"github.com/longkey1/clippyai/internal/clippy/prompt"
	"github.com/longkey1/clippyai/internal/clippy/segment"
	"github.com/longkey1/clippyai/internal/clippy/session"
	"github.com/longkey1/clippyai/internal/events"
)

// NoSessionMessage is returned as the chat response when a follow-up refers
// to no known session.
const NoSessionMessage = "No active session. Start by analyzing code first."

// Request is one call into the service.
type Request struct {
	Text                string
	SessionID           string
	IsFollowup          bool
	ConversationContext []clippy.ContextMessage
	AdditionalContext   string
}

// Result carries either the two analysis parts or a chat response.
type Result struct {
	Explanation  string
	Fixes        string
	ChatResponse string
	SessionID    string
	Mode         clippy.Mode
	Failed       bool
}

// Publisher receives completion events. events.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Options configures a Service. Provider and Store are required; the other
// collaborators fall back to their defaults when nil.
type Options struct {
	Provider      clippy.Provider
	Store         *session.Store
	Classifier    *classify.Classifier
	Builder       *prompt.Builder
	Segmenter     segment.Segmenter
	Publisher     Publisher
	Logger        *slog.Logger
	ContextWindow int
}

// Service runs analysis and chat turns against a single provider.
type Service struct {
	provider      clippy.Provider
	store         *session.Store
	classifier    *classify.Classifier
	builder       atomic.Pointer[prompt.Builder]
	segmenter     segment.Segmenter
	publisher     Publisher
	logger        *slog.Logger
	contextWindow int
}

// New creates a Service from opts.
func New(opts Options) *Service {
	s := &Service{
		provider:      opts.Provider,
		store:         opts.Store,
		classifier:    opts.Classifier,
		segmenter:     opts.Segmenter,
		publisher:     opts.Publisher,
		logger:        opts.Logger,
		contextWindow: opts.ContextWindow,
	}
	if s.classifier == nil {
		s.classifier = classify.New()
	}
	if opts.Builder != nil {
		s.builder.Store(opts.Builder)
	} else {
		s.builder.Store(prompt.NewBuilder())
	}
	if s.segmenter == nil {
		s.segmenter = segment.NewMarkerSegmenter()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.contextWindow <= 0 {
		s.contextWindow = session.DefaultContextWindow
	}
	return s
}

// SetBuilder swaps the prompt builder, e.g. after prompt templates are
// reloaded. Calls already in flight keep the builder they started with.
func (s *Service) SetBuilder(b *prompt.Builder) {
	s.builder.Store(b)
}

// Store returns the session store the service appends to.
func (s *Service) Store() *session.Store {
	return s.store
}

// Analyze runs one analysis or stateless follow-up. Exactly one model call is
// made, except when a follow-up names an unknown session.
func (s *Service) Analyze(ctx context.Context, req Request) Result {
	if req.IsFollowup {
		if len(req.ConversationContext) > 0 {
			return s.statelessFollowup(ctx, req)
		}
		if req.SessionID != "" {
			return s.Chat(ctx, req.SessionID, req.Text)
		}
	}
	return s.initial(ctx, req)
}

func (s *Service) initial(ctx context.Context, req Request) Result {
	text := req.Text
	if extra := strings.TrimSpace(req.AdditionalContext); extra != "" {
		text += "\n\nAdditional Context: " + extra
	}

	decision := s.classifier.Decide(text)
	s.logger.Debug("classified input",
		"mode", decision.Mode,
		"rule", decision.Rule,
		"keywords", decision.Features.Keywords,
		"patterns", decision.Features.Patterns,
	)

	sessionID := req.SessionID
	if sessionID == "" || !s.store.Exists(sessionID) {
		sessionID = s.store.StartNewSession(text)
	} else {
		s.store.Append(sessionID, clippy.RoleUser, session.AnalysisRequest(text))
	}

	p := s.builder.Load().BuildInitialPrompt(text, decision.Mode)
	start := time.Now()
	reply, err := s.provider.Generate(ctx, p)
	elapsed := time.Since(start)

	s.publish(events.SubjectAnalysisCompleted, events.Completed{
		SessionID:    sessionID,
		Mode:         decision.Mode.String(),
		Provider:     s.provider.Name(),
		Failed:       err != nil,
		DurationMS:   elapsed.Milliseconds(),
		InputLength:  len(text),
		OutputLength: len(reply),
		Timestamp:    time.Now(),
	})

	if err != nil {
		s.logger.Error("analysis failed", "provider", s.provider.Name(), "session_id", sessionID, "error", err)
		return Result{
			Explanation: fmt.Sprintf("Failed to get response from %s.", s.provider.Name()),
			Fixes:       err.Error(),
			SessionID:   sessionID,
			Mode:        decision.Mode,
			Failed:      true,
		}
	}

	s.store.Append(sessionID, clippy.RoleAssistant, reply)
	seg := s.segmenter.Segment(reply, decision.Mode)
	s.logger.Info("analysis completed", "session_id", sessionID, "mode", decision.Mode, "duration", elapsed)

	return Result{
		Explanation: seg.Explanation,
		Fixes:       seg.Fixes,
		SessionID:   sessionID,
		Mode:        decision.Mode,
	}
}

// statelessFollowup answers from caller-supplied context. Appending the reply
// to any session is the caller's job.
func (s *Service) statelessFollowup(ctx context.Context, req Request) Result {
	newText := strings.TrimSpace(req.Text)
	history := req.ConversationContext
	if newText == "" {
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Role == clippy.RoleUser {
				newText = history[i].Content
				history = history[:i]
				break
			}
		}
	} else if n := len(history); n > 0 && history[n-1].Role == clippy.RoleUser && strings.TrimSpace(history[n-1].Content) == newText {
		// The new turn is also the last context entry; render it once.
		history = history[:n-1]
	}
	if len(history) > s.contextWindow {
		history = history[len(history)-s.contextWindow:]
	}

	reply, err := s.generateChat(ctx, req.SessionID, s.builder.Load().BuildFollowupPrompt(history, newText), len(newText))
	if err != nil {
		return Result{ChatResponse: "Error: " + err.Error(), SessionID: req.SessionID, Failed: true}
	}
	return Result{ChatResponse: reply, SessionID: req.SessionID}
}

// Chat asks the model about message with the bounded context window of the
// session. The user turn and the reply are stored together, only when the
// model answers.
func (s *Service) Chat(ctx context.Context, sessionID, message string) Result {
	if sessionID == "" || !s.store.Exists(sessionID) {
		s.logger.Warn("chat without session", "session_id", sessionID)
		return Result{ChatResponse: NoSessionMessage, SessionID: sessionID}
	}

	// The window counts the new turn, which is rendered after the transcript.
	history := s.store.Context(sessionID, s.contextWindow)
	if keep := s.contextWindow - 1; len(history) > keep {
		history = history[len(history)-keep:]
	}

	reply, err := s.generateChat(ctx, sessionID, s.builder.Load().BuildFollowupPrompt(history, message), len(message))
	if err != nil {
		return Result{ChatResponse: "Error: " + err.Error(), SessionID: sessionID, Failed: true}
	}

	if !s.store.Append(sessionID, clippy.RoleUser, message) {
		return Result{ChatResponse: NoSessionMessage, SessionID: sessionID}
	}
	s.store.Append(sessionID, clippy.RoleAssistant, reply)
	return Result{ChatResponse: reply, SessionID: sessionID}
}

func (s *Service) generateChat(ctx context.Context, sessionID, p string, inputLen int) (string, error) {
	start := time.Now()
	reply, err := s.provider.Generate(ctx, p)
	elapsed := time.Since(start)

	s.publish(events.SubjectChatCompleted, events.Completed{
		SessionID:    sessionID,
		Provider:     s.provider.Name(),
		Followup:     true,
		Failed:       err != nil,
		DurationMS:   elapsed.Milliseconds(),
		InputLength:  inputLen,
		OutputLength: len(reply),
		Timestamp:    time.Now(),
	})

	if err != nil {
		s.logger.Error("chat failed", "provider", s.provider.Name(), "session_id", sessionID, "error", err)
		return "", err
	}
	s.logger.Info("chat completed", "session_id", sessionID, "duration", elapsed)
	return reply, nil
}

func (s *Service) publish(subject string, ev events.Completed) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, ev); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
