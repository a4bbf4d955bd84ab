package query

import (
	"encoding/json"
	"time"
)

type Kind string

const (
	KindRows  Kind = "rows"
	KindEmpty Kind = "empty"
	KindError Kind = "error"
)

// ErrorPrefix starts every error result message.
const ErrorPrefix = "Error: "

type Result struct {
	Kind      Kind          `json:"kind"`
	Columns   []string      `json:"columns,omitempty"`
	Rows      [][]any       `json:"rows,omitempty"`
	Message   string        `json:"message,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"-"`
}

func ErrorResult(message string) Result {
	return Result{Kind: KindError, Message: ErrorPrefix + message}
}

func (r Result) IsError() bool {
	return r.Kind == KindError
}

// Text renders the result the way it is shown in a conversation: the rows as
// a JSON array of arrays, the error message verbatim, or "" when empty.
func (r Result) Text() string {
	switch r.Kind {
	case KindError:
		return r.Message
	case KindRows:
		body, err := json.Marshal(r.Rows)
		if err != nil {
			return ErrorPrefix + "render rows: " + err.Error()
		}
		return string(body)
	default:
		return ""
	}
}
