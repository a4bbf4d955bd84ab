package nl2sql

import "strings"

type TableContext struct {
	TableName string   `json:"table_name"`
	Columns   []string `json:"columns"`
}

// SchemaTables is the calendar schema handed to the model as prompt context.
// It is not checked against the live store.
var SchemaTables = []TableContext{
	{TableName: "user", Columns: []string{"id", "username", "password"}},
	{TableName: "event", Columns: []string{"id", "title", "datetime", "userId"}},
	{TableName: "task", Columns: []string{"id", "title", "datetime", "isCompleted", "userId"}},
}

const requestLinePrefix = "Generate an SQL query for the following request: "

const crossDomainPreamble = "You are an expert SQL assistant that can translate natural language questions " +
	"from any domain into SQL queries. Apply what you know about relational databases in general " +
	"to the specific schema described below."

func SchemaDescription() string {
	var b strings.Builder
	b.WriteString("The database has the following tables:\n")
	for _, table := range SchemaTables {
		b.WriteString("- ")
		b.WriteString(table.TableName)
		b.WriteString("(")
		b.WriteString(strings.Join(table.Columns, ", "))
		b.WriteString(")\n")
	}
	b.WriteString("event.userId and task.userId reference user.id. datetime columns hold text in 'YYYY-MM-DD HH:MM:SS' form.")
	return b.String()
}

func BuildPrompt(userInput string, strategy Strategy) string {
	request := requestLinePrefix + userInput
	switch strategy {
	case StrategySingleDomain:
		return SchemaDescription() + "\n\n" + request
	case StrategyCrossDomain:
		return crossDomainPreamble + "\n\n" + SchemaDescription() + "\n\n" + request
	default:
		return request
	}
}
