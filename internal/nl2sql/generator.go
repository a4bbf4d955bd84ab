package nl2sql

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sqlchat/sqlchat/internal/llm"
	"github.com/sqlchat/sqlchat/internal/observability"
)

type GeneratorConfig struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Generator turns a natural-language request into a candidate SQL statement.
type Generator struct {
	completer llm.Completer
	cfg       GeneratorConfig
	logger    *slog.Logger
}

func NewGenerator(completer llm.Completer, cfg GeneratorConfig, logger *slog.Logger) *Generator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "nl2sql.generator")),
	}
}

// Generate returns the sanitized SQL and true, or "" and false when the model
// could not be reached or produced nothing usable.
func (g *Generator) Generate(ctx context.Context, userInput string, strategy Strategy) (string, bool) {
	if g == nil || g.completer == nil {
		return "", false
	}
	prompt := BuildPrompt(userInput, strategy)

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := g.completer.Complete(callCtx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	elapsed := time.Since(start)
	observability.ObserveModelCall(observability.ModelPurposeQuery, err, elapsed)
	if err != nil {
		g.logger.WarnContext(ctx, "sql generation failed",
			slog.String("strategy", strategy.String()),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		g.logger.WarnContext(ctx, "sql generation returned empty completion", slog.String("strategy", strategy.String()))
		return "", false
	}

	sql := ExtractSQL(text)
	if sql == "" {
		g.logger.WarnContext(ctx, "sql generation returned no statement", slog.String("strategy", strategy.String()))
		return "", false
	}
	g.logger.DebugContext(ctx, "sql generated",
		slog.String("strategy", strategy.String()),
		slog.Duration("elapsed", elapsed),
	)
	return sql, true
}
