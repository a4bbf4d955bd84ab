// Package llm talks to chat-completion services that speak the OpenAI wire
// format. Callers send a single user-role prompt and get the first choice's
// text back.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var ErrEmptyChoices = errors.New("empty chat completion choices")

type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat completion failed status=%d body=%s", e.StatusCode, e.Body)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
