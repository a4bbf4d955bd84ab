package chat

import "time"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Kind tells the UI how to render a message.
type Kind string

const (
	KindGreeting Kind = "greeting"
	KindText     Kind = "text"
	KindSQL      Kind = "sql"
	KindResult   Kind = "result"
	KindSummary  Kind = "summary"
	KindError    Kind = "error"
	KindNotice   Kind = "notice"
)

type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type TurnState string

const (
	StateIdle              TurnState = "idle"
	StateAwaitingQuery     TurnState = "awaiting_query"
	StateQueryFailed       TurnState = "query_failed"
	StateAwaitingExecution TurnState = "awaiting_execution"
	StateExecutionError    TurnState = "execution_error"
	StateExecutionEmpty    TurnState = "execution_empty"
	StateAwaitingSummary   TurnState = "awaiting_summary"
	StateSummaryReady      TurnState = "summary_ready"
)

// Terminal reports whether a turn ends in this state.
func (s TurnState) Terminal() bool {
	switch s {
	case StateQueryFailed, StateExecutionError, StateExecutionEmpty, StateSummaryReady:
		return true
	default:
		return false
	}
}

const (
	GreetingText    = "Hello! I can help you generate SQL queries for your calendar events database. What would you like to know?"
	NoQueryNotice   = "I couldn't generate a SQL query for that request."
	NoResultsNotice = "No results found for that query."
)
