// Package chat runs conversation turns: generate SQL from the user's text,
// execute it, summarize the rows, and record every step as a message.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sqlchat/sqlchat/internal/nl2sql"
	"github.com/sqlchat/sqlchat/internal/observability"
	"github.com/sqlchat/sqlchat/internal/query"
)

var (
	ErrEmptyInput      = errors.New("message text is empty")
	ErrTurnInProgress  = errors.New("a turn is already in progress for this session")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

type Generator interface {
	Generate(ctx context.Context, userInput string, strategy nl2sql.Strategy) (string, bool)
}

type Executor interface {
	Execute(ctx context.Context, sqlText string) query.Result
}

type Summarizer interface {
	Summarize(ctx context.Context, rawResult string) string
}

// Pipeline bundles the three collaborators a turn calls, in order.
type Pipeline struct {
	Generator  Generator
	Executor   Executor
	Summarizer Summarizer
}

type Options struct {
	DefaultStrategy nl2sql.Strategy
	// RejectConcurrent makes a second Submit fail fast with ErrTurnInProgress
	// instead of waiting for the running turn.
	RejectConcurrent bool
}

type TurnResult struct {
	State    TurnState     `json:"state"`
	Strategy string        `json:"strategy"`
	SQL      string        `json:"sql,omitempty"`
	Result   *query.Result `json:"result,omitempty"`
	Messages []Message     `json:"messages"`
}

type Session struct {
	id       string
	pipeline Pipeline
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
	turn     chan struct{}

	mu        sync.Mutex
	messages  []Message
	nextID    int64
	strategy  nl2sql.Strategy
	state     TurnState
	createdAt time.Time
	updatedAt time.Time
}

func NewSession(id string, pipeline Pipeline, opts Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultStrategy == "" {
		opts.DefaultStrategy = nl2sql.StrategySingleDomain
	}
	s := &Session{
		id:       id,
		pipeline: pipeline,
		opts:     opts,
		logger:   logger.With(slog.String("component", "chat.session"), slog.String("session_id", id)),
		now:      func() time.Time { return time.Now().UTC() },
		turn:     make(chan struct{}, 1),
		strategy: opts.DefaultStrategy,
		state:    StateIdle,
	}
	s.createdAt = s.now()
	s.updatedAt = s.createdAt
	s.append(SenderAssistant, KindGreeting, GreetingText)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Strategy() nl2sql.Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// SetStrategy changes the strategy used by later turns. A running turn keeps
// the strategy it started with.
func (s *Session) SetStrategy(strategy nl2sql.Strategy) {
	s.mu.Lock()
	s.strategy = strategy
	s.updatedAt = s.now()
	s.mu.Unlock()
	s.logger.Debug("strategy changed", slog.String("strategy", strategy.String()))
}

func (s *Session) State() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit runs one full turn for text. An empty strategy uses the session's
// current one. Pipeline failures end the turn with a message, never an error;
// errors are reserved for input that never started a turn.
func (s *Session) Submit(ctx context.Context, text string, strategy nl2sql.Strategy) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyInput
	}
	if err := s.acquire(ctx); err != nil {
		return TurnResult{}, err
	}
	defer s.release()

	if strategy == "" {
		strategy = s.Strategy()
	}
	start := time.Now()
	first := s.append(SenderUser, KindText, text)
	s.setState(StateAwaitingQuery)

	turn := TurnResult{Strategy: strategy.String()}
	finish := func(state TurnState) (TurnResult, error) {
		s.setState(state)
		observability.ObserveTurn(string(state))
		turn.State = state
		turn.Messages = s.messagesFrom(first.ID)
		s.logger.InfoContext(ctx, "turn finished",
			slog.String("state", string(state)),
			slog.String("strategy", turn.Strategy),
			slog.Duration("elapsed", time.Since(start)),
		)
		return turn, nil
	}

	sqlText, ok := s.pipeline.Generator.Generate(ctx, text, strategy)
	if !ok {
		s.append(SenderAssistant, KindNotice, NoQueryNotice)
		return finish(StateQueryFailed)
	}
	turn.SQL = sqlText
	s.append(SenderAssistant, KindSQL, sqlText)
	s.setState(StateAwaitingExecution)

	result := s.pipeline.Executor.Execute(ctx, sqlText)
	turn.Result = &result
	switch result.Kind {
	case query.KindError:
		s.append(SenderAssistant, KindError, result.Text())
		return finish(StateExecutionError)
	case query.KindEmpty:
		s.append(SenderAssistant, KindNotice, NoResultsNotice)
		return finish(StateExecutionEmpty)
	}

	raw := result.Text()
	s.append(SenderAssistant, KindResult, raw)
	s.setState(StateAwaitingSummary)

	summary := s.pipeline.Summarizer.Summarize(ctx, raw)
	s.append(SenderAssistant, KindSummary, summary)
	return finish(StateSummaryReady)
}

func (s *Session) acquire(ctx context.Context) error {
	if s.opts.RejectConcurrent {
		select {
		case s.turn <- struct{}{}:
			return nil
		default:
			return ErrTurnInProgress
		}
	}
	select {
	case s.turn <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() {
	<-s.turn
}

func (s *Session) append(sender Sender, kind Kind, text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg := Message{
		ID:        s.nextID,
		Text:      text,
		Sender:    sender,
		Kind:      kind,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, msg)
	s.updatedAt = msg.CreatedAt
	return msg
}

func (s *Session) messagesFrom(id int64) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, msg := range s.messages {
		if msg.ID == id {
			out := make([]Message, len(s.messages)-i)
			copy(out, s.messages[i:])
			return out
		}
	}
	return nil
}

func (s *Session) setState(state TurnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
