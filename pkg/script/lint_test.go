package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lintTable() *CommandTable {
	table := NewCommandTable(testLogger())
	_ = table.Register(NewCommand("herosay", 0, func(ctx *Context) CommandResult { return Continue }))
	return table
}

func TestLint_Clean(t *testing.T) {
	text := `ON INIT {
  SET §hp 10 // starting life
  IF (§hp == 10) {
    HEROSAY "hi"
  } ELSE GOTO done
>>done
  ACCEPT
}
ON HIT { ACCEPT }
ON OPEN_DOOR {
  GOSUB done
}
`
	assert.Empty(t, Lint(text, lintTable()))
}

func TestLint_Issues(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		line     int
		severity Severity
		message  string
	}{
		{"outside handler", "stray\nON INIT {\n}", 1, Warning, `"stray" is outside any handler`},
		{"no block", "ON HIT\n  ACCEPT\n", 1, Error, "ON HIT has no block"},
		{"unknown command", "ON MAIN {\n  FROB 1\n}", 2, Warning, `unknown command "FROB"`},
		{"missing label", "ON MAIN {\n  GOTO nowhere\n}", 2, Error, `label "nowhere" not found`},
		{"jump without label", "ON MAIN {\n  GOSUB\n}", 2, Error, "GOSUB without a label"},
		{"never closed", "ON MAIN {\n  ACCEPT\n", 1, Error, "block is never closed"},
		{"unmatched", "}\n", 1, Error, "unmatched }"},
		{"unterminated quote", "ON MAIN {\n  HEROSAY \"open\n}", 2, Error, "unterminated quote"},
		{"duplicate", "ON HIT {\n}\nON hit {\n}", 3, Warning, "duplicate ON HIT handler is never reached"},
		{"no event name", "ON {\n}", 1, Error, "ON without an event name"},
		{"block outside handler", "{\n}", 1, Error, "block outside any handler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.text, lintTable())
			require.NotEmpty(t, issues)
			var found *Issue
			for i := range issues {
				if issues[i].Message == tt.message {
					found = &issues[i]
				}
			}
			require.NotNil(t, found, "issues: %v", issues)
			assert.Equal(t, tt.line, found.Line)
			assert.Equal(t, tt.severity, found.Severity)
		})
	}
}

func TestLint_NoTable(t *testing.T) {
	assert.Empty(t, Lint("ON MAIN {\n  FROB 1\n}", nil), "command names are not checked without a table")
}

func TestIssue_String(t *testing.T) {
	i := Issue{Line: 4, Severity: Error, Message: "unmatched }"}
	assert.Equal(t, "line 4: error: unmatched }", i.String())
}
