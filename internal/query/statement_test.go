package query

import "testing"

func TestIsReadOnly(t *testing.T) {
	allowed := []string{
		"SELECT * FROM event",
		"  select count(*) from task;",
		"WITH recent AS (SELECT * FROM event) SELECT * FROM recent",
		"/* titles */ SELECT title FROM event",
		"SELECT * FROM event WHERE title = 'a; b';",
		`SELECT * FROM "delete"`,
	}
	for _, stmt := range allowed {
		if !IsReadOnly(stmt) {
			t.Fatalf("IsReadOnly(%q) = false", stmt)
		}
	}
	rejected := []string{
		"",
		"INSERT INTO event (title) VALUES ('x')",
		"DROP TABLE event",
		"SELECT 1; DROP TABLE event",
		"-- only a comment",
		"WITH gone AS (DELETE FROM event RETURNING id) SELECT * FROM gone",
	}
	for _, stmt := range rejected {
		if IsReadOnly(stmt) {
			t.Fatalf("IsReadOnly(%q) = true", stmt)
		}
	}
}

func returnsRows(sqlText string) bool {
	for _, stmt := range splitStatements(sqlText) {
		if stmt.returnsRows() {
			return true
		}
	}
	return false
}

func TestReturnsRows(t *testing.T) {
	cases := map[string]bool{
		"SELECT 1":                                                 true,
		"(SELECT 1)":                                               true,
		"-- list\nSELECT * FROM task":                              true,
		"PRAGMA table_info(event)":                                 true,
		"INSERT INTO event VALUES (1)":                             false,
		"CREATE TABLE x (id INTEGER)":                              false,
		"DELETE FROM task RETURNING id":                            true,
		"update task set isCompleted = true":                       false,
		"/* all events */ SELECT * FROM event":                     true,
		"/* multi\nline */\n-- and a line\nSELECT 1":               true,
		"INSERT INTO event VALUES (1); SELECT COUNT(*) FROM event": true,
		"INSERT INTO event (title) VALUES ('Returning home')":      false,
		"INSERT INTO event (title) VALUES ('it''s; returning') ":   false,
		"SELECT 1; -- trailing note":                               true,
		"/* SELECT */ DELETE FROM task":                            false,
	}
	for stmt, want := range cases {
		if got := returnsRows(stmt); got != want {
			t.Fatalf("returnsRows(%q) = %v, want %v", stmt, got, want)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements("INSERT INTO event (title) VALUES ('a;b'); /* c; */ SELECT 1;; -- done")
	if len(statements) != 2 {
		t.Fatalf("statements = %#v", statements)
	}
	if statements[0].text != "INSERT INTO event (title) VALUES ('a;b')" {
		t.Fatalf("first = %q", statements[0].text)
	}
	if statements[1].text != "/* c; */ SELECT 1" {
		t.Fatalf("second = %q", statements[1].text)
	}
	if statements[1].keyword() != "select" {
		t.Fatalf("keyword = %q", statements[1].keyword())
	}
}

func TestIsStatementKeyword(t *testing.T) {
	for _, word := range []string{"SELECT", "with", "Insert", "create", "pragma"} {
		if !IsStatementKeyword(word) {
			t.Fatalf("IsStatementKeyword(%q) = false", word)
		}
	}
	for _, word := range []string{"sql", "postgres", "duckdb", ""} {
		if IsStatementKeyword(word) {
			t.Fatalf("IsStatementKeyword(%q) = true", word)
		}
	}
}
