package nl2sql

import (
	"strings"

	"github.com/sqlchat/sqlchat/internal/query"
)

const (
	sqlFence = "```sql"
	fence    = "```"
)

// ExtractSQL pulls a bare statement out of a model completion. Text after the
// first "```sql" marker is kept, then everything from the next closing fence on
// is dropped. Without a "```sql" marker a bare "```" opens the block when it
// leads the text or is followed by another fence; a lone fence after the
// statement only closes it. Input without fences is only trimmed. The result
// never contains a fence, so applying ExtractSQL to its own output changes
// nothing.
func ExtractSQL(modelText string) string {
	text := modelText
	if idx := strings.Index(text, sqlFence); idx >= 0 {
		text = text[idx+len(sqlFence):]
	} else if idx := strings.Index(text, fence); idx >= 0 && opensBlock(text, idx) {
		text = dropLanguageTag(text[idx+len(fence):])
	}
	if idx := strings.Index(text, fence); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func opensBlock(text string, idx int) bool {
	if strings.TrimSpace(text[:idx]) == "" {
		return true
	}
	return strings.Contains(text[idx+len(fence):], fence)
}

// dropLanguageTag removes a one-word info string such as "SQL" or "postgres"
// that follows an opening fence on the same line. A SQL keyword in that spot
// is the start of the statement and stays.
func dropLanguageTag(text string) string {
	newline := strings.IndexByte(text, '\n')
	if newline < 0 {
		return text
	}
	tag := strings.TrimSpace(text[:newline])
	if tag == "" || strings.ContainsAny(tag, " \t") || query.IsStatementKeyword(tag) {
		return text
	}
	return text[newline+1:]
}
