package query

import (
	"regexp"
	"strings"
)

var (
	leadingKeywordPattern   = regexp.MustCompile(`^[\s(]*([A-Za-z]+)`)
	returningPattern        = regexp.MustCompile(`(?i)\breturning\b`)
	dataModifyingCTEPattern = regexp.MustCompile(`(?i)\b(insert|update|delete|merge)\b`)
)

var rowReturningKeywords = map[string]struct{}{
	"select":    {},
	"with":      {},
	"values":    {},
	"table":     {},
	"from":      {},
	"show":      {},
	"describe":  {},
	"explain":   {},
	"pragma":    {},
	"summarize": {},
}

var statementKeywords = map[string]struct{}{
	"insert":   {},
	"update":   {},
	"delete":   {},
	"merge":    {},
	"upsert":   {},
	"replace":  {},
	"create":   {},
	"drop":     {},
	"alter":    {},
	"truncate": {},
	"begin":    {},
	"commit":   {},
	"rollback": {},
	"attach":   {},
	"detach":   {},
	"copy":     {},
	"set":      {},
	"vacuum":   {},
	"analyze":  {},
	"call":     {},
	"grant":    {},
	"revoke":   {},
	"install":  {},
	"load":     {},
}

// IsStatementKeyword reports whether word opens a SQL statement.
func IsStatementKeyword(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if _, ok := rowReturningKeywords[word]; ok {
		return true
	}
	_, ok := statementKeywords[word]
	return ok
}

// statement is one ';'-separated piece of the input. text is what gets sent to
// the driver; code is the same piece with comments blanked and quoted literals
// emptied, used only for classification.
type statement struct {
	text string
	code string
}

func (s statement) keyword() string {
	matches := leadingKeywordPattern.FindStringSubmatch(s.code)
	if len(matches) != 2 {
		return ""
	}
	return strings.ToLower(matches[1])
}

// returnsRows reports whether the statement is expected to produce a result
// set. Everything else runs through Exec.
func (s statement) returnsRows() bool {
	if _, ok := rowReturningKeywords[s.keyword()]; ok {
		return true
	}
	return returningPattern.MatchString(s.code)
}

// splitStatements cuts sqlText on semicolons that sit outside quotes and
// comments. Pieces holding only whitespace or comments are dropped.
func splitStatements(sqlText string) []statement {
	var (
		statements []statement
		text       strings.Builder
		code       strings.Builder
	)
	flush := func() {
		if strings.TrimSpace(code.String()) != "" {
			statements = append(statements, statement{
				text: strings.TrimSpace(text.String()),
				code: code.String(),
			})
		}
		text.Reset()
		code.Reset()
	}

	for i := 0; i < len(sqlText); {
		c := sqlText[i]
		switch {
		case c == '-' && strings.HasPrefix(sqlText[i:], "--"):
			end := strings.IndexByte(sqlText[i:], '\n')
			if end < 0 {
				end = len(sqlText)
			} else {
				end += i
			}
			text.WriteString(sqlText[i:end])
			code.WriteByte(' ')
			i = end
		case c == '/' && strings.HasPrefix(sqlText[i:], "/*"):
			end := strings.Index(sqlText[i+2:], "*/")
			if end < 0 {
				end = len(sqlText)
			} else {
				end += i + 4
			}
			text.WriteString(sqlText[i:end])
			code.WriteByte(' ')
			i = end
		case c == '\'' || c == '"':
			end := closingQuote(sqlText, i)
			text.WriteString(sqlText[i:end])
			code.WriteByte(c)
			code.WriteByte(c)
			i = end
		case c == ';':
			flush()
			i++
		default:
			text.WriteByte(c)
			code.WriteByte(c)
			i++
		}
	}
	flush()
	return statements
}

// closingQuote returns the index just past the quote that closes the literal
// opened at start. A doubled quote is an escape. Unterminated literals run to
// the end of the input.
func closingQuote(sqlText string, start int) int {
	quote := sqlText[start]
	for i := start + 1; i < len(sqlText); i++ {
		if sqlText[i] != quote {
			continue
		}
		if i+1 < len(sqlText) && sqlText[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(sqlText)
}

// IsReadOnly accepts a single SELECT or WITH statement. A WITH statement that
// wraps INSERT, UPDATE, DELETE or MERGE is rejected.
func IsReadOnly(sqlText string) bool {
	statements := splitStatements(sqlText)
	if len(statements) != 1 {
		return false
	}
	switch stmt := statements[0]; stmt.keyword() {
	case "select":
		return true
	case "with":
		return !dataModifyingCTEPattern.MatchString(stmt.code)
	default:
		return false
	}
}
