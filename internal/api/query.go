package api

import (
	"net/http"

	"github.com/sqlchat/sqlchat/internal/nl2sql"
	"github.com/sqlchat/sqlchat/internal/query"
)

type schemaResponse struct {
	Schema          string                `json:"schema"`
	Tables          []nl2sql.TableContext `json:"tables"`
	Strategies      []nl2sql.Strategy     `json:"strategies"`
	DefaultStrategy nl2sql.Strategy       `json:"default_strategy"`
	ReadOnly        bool                  `json:"read_only"`
}

type readOnlyReporter interface {
	ReadOnly() bool
}

type translateResponse struct {
	SQL      string          `json:"sql"`
	Strategy nl2sql.Strategy `json:"strategy"`
}

type queryResponse struct {
	query.Result
	Rendered   string `json:"text"`
	DurationMs int64  `json:"duration_ms"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schemaResponse{
		Schema:          nl2sql.SchemaDescription(),
		Tables:          nl2sql.SchemaTables,
		Strategies:      nl2sql.Strategies(),
		DefaultStrategy: defaultStrategy(deps),
		ReadOnly:        executorReadOnly(deps.Executor),
	})
}

func executorReadOnly(executor any) bool {
	reporter, ok := executor.(readOnlyReporter)
	return ok && reporter.ReadOnly()
}

func handleTranslateQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Generator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TRANSLATE_NOT_CONFIGURED", "query translation is not configured", false, nil)
		return
	}

	var request translateRequest
	if err := decodeRequest(w, r, &request); err != nil {
		writeRequestError(w, r, err)
		return
	}
	strategy := strategyOrDefault(request.Strategy)
	if strategy == "" {
		strategy = defaultStrategy(deps)
	}

	sqlText, ok := deps.Generator.Generate(r.Context(), request.Prompt, strategy)
	if !ok {
		writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to generate a query for the prompt", true, map[string]any{"strategy": strategy})
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{SQL: sqlText, Strategy: strategy})
}

// handleQuery runs SQL directly. Execution failures are part of the result
// envelope, so the status stays 200 once the request itself is valid.
func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Executor == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query execution is not configured", false, nil)
		return
	}

	var request queryRequest
	if err := decodeRequest(w, r, &request); err != nil {
		writeRequestError(w, r, err)
		return
	}

	result := deps.Executor.Execute(r.Context(), request.SQL)
	writeJSON(w, http.StatusOK, queryResponse{
		Result:     result,
		Rendered:   result.Text(),
		DurationMs: result.Duration.Milliseconds(),
	})
}

func defaultStrategy(deps Dependencies) nl2sql.Strategy {
	if deps.DefaultStrategy != "" {
		return deps.DefaultStrategy
	}
	return nl2sql.StrategySingleDomain
}
