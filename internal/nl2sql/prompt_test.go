package nl2sql

import (
	"strings"
	"testing"
)

func TestBuildPromptZeroShot(t *testing.T) {
	got := BuildPrompt("list all users", StrategyZeroShot)
	if got != "Generate an SQL query for the following request: list all users" {
		t.Fatalf("BuildPrompt() = %q", got)
	}
}

func TestBuildPromptContainsInputForAllStrategies(t *testing.T) {
	input := "show all events for user 3"
	for _, strategy := range Strategies() {
		got := BuildPrompt(input, strategy)
		if !strings.Contains(got, input) {
			t.Fatalf("BuildPrompt(%s) missing input: %q", strategy, got)
		}
		if !strings.HasSuffix(got, requestLinePrefix+input) {
			t.Fatalf("BuildPrompt(%s) should end with request line: %q", strategy, got)
		}
	}
}

func TestBuildPromptSchemaStrategiesNameAllTables(t *testing.T) {
	for _, strategy := range []Strategy{StrategySingleDomain, StrategyCrossDomain} {
		got := BuildPrompt("anything", strategy)
		for _, table := range []string{"user(", "event(", "task("} {
			if !strings.Contains(got, table) {
				t.Fatalf("BuildPrompt(%s) missing %s: %q", strategy, table, got)
			}
		}
	}
}

func TestBuildPromptCrossDomainAddsPreamble(t *testing.T) {
	single := BuildPrompt("x", StrategySingleDomain)
	cross := BuildPrompt("x", StrategyCrossDomain)
	if !strings.HasPrefix(cross, crossDomainPreamble) {
		t.Fatalf("cross-domain prompt missing preamble: %q", cross)
	}
	if !strings.HasSuffix(cross, single) {
		t.Fatalf("cross-domain prompt should extend single-domain prompt")
	}
	if strings.Contains(single, crossDomainPreamble) {
		t.Fatalf("single-domain prompt should not carry preamble")
	}
}

func TestBuildPromptAcceptsEmptyInput(t *testing.T) {
	if got := BuildPrompt("", StrategyZeroShot); got != requestLinePrefix {
		t.Fatalf("BuildPrompt() = %q", got)
	}
}

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy(" Cross-Domain ")
	if err != nil {
		t.Fatalf("ParseStrategy() error = %v", err)
	}
	if got != StrategyCrossDomain {
		t.Fatalf("ParseStrategy() = %q", got)
	}
	if _, err := ParseStrategy("few-shot"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
