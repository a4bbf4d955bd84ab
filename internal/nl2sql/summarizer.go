package nl2sql

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sqlchat/sqlchat/internal/llm"
	"github.com/sqlchat/sqlchat/internal/observability"
)

const (
	SummaryNoResults = "No results found."
	SummaryFailed    = "Error generating friendly response."
)

const summaryInstruction = "Summarize the following SQL query result in plain, friendly language " +
	"for someone who does not read SQL. Keep it short and mention the notable values.\n\nResult:\n"

type SummarizerConfig struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type Summarizer struct {
	completer llm.Completer
	cfg       SummarizerConfig
	logger    *slog.Logger
}

func NewSummarizer(completer llm.Completer, cfg SummarizerConfig, logger *slog.Logger) *Summarizer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 150
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "nl2sql.summarizer")),
	}
}

// Summarize never fails; model errors collapse into SummaryFailed.
func (s *Summarizer) Summarize(ctx context.Context, rawResult string) string {
	if s == nil || s.completer == nil {
		return SummaryFailed
	}
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := s.completer.Complete(callCtx, llm.Request{
		Prompt:      summaryInstruction + rawResult,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	elapsed := time.Since(start)
	observability.ObserveModelCall(observability.ModelPurposeSummary, err, elapsed)
	if err != nil {
		s.logger.WarnContext(ctx, "summary generation failed",
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return SummaryFailed
	}
	summary := strings.TrimSpace(text)
	if summary == "" {
		return SummaryNoResults
	}
	return summary
}
