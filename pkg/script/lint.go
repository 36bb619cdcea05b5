package script

import (
	"fmt"
	"sort"
	"strings"
)

// Severity grades a lint issue.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Issue is one problem found by Lint.
type Issue struct {
	Offset   int
	Line     int
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s: %s", i.Line, i.Severity, i.Message)
}

// Lint checks script text without running it. It reports handlers without
// a block, unbalanced braces, unterminated quotes, duplicate handlers,
// jumps to missing labels, and, when table is set, words at the start of a
// statement that name no command.
func Lint(text string, table *CommandTable) []Issue {
	l := linter{text: text, labels: make(map[string]bool), handlers: make(map[Event]bool)}
	l.run(table)
	sort.SliceStable(l.issues, func(i, j int) bool { return l.issues[i].Offset < l.issues[j].Offset })
	return l.issues
}

type jumpRef struct {
	label  string
	offset int
}

type linter struct {
	text     string
	issues   []Issue
	labels   map[string]bool
	jumps    []jumpRef
	handlers map[Event]bool
}

func (l *linter) report(offset int, sev Severity, format string, args ...any) {
	l.issues = append(l.issues, Issue{
		Offset:   offset,
		Line:     strings.Count(l.text[:offset], "\n") + 1,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (l *linter) run(table *CommandTable) {
	text := l.text
	depth, handlerAt := 0, 0
	prev := ""
	pos := 0
	for {
		tok, next := scan(text, pos)
		pos = next
		if tok.text == "" && !tok.quoted {
			break
		}
		lineStart := tok.crossed || tok.start == 0 || prev == "{" || prev == "}"
		prev = tok.text

		if tok.quoted {
			if next < tok.start+2 || text[next-1] != '"' {
				l.report(tok.start, Error, "unterminated quote")
			}
			continue
		}
		if strings.HasPrefix(tok.text, "//") {
			pos = nextLine(text, pos)
			continue
		}
		if strings.HasPrefix(tok.text, ">>") {
			l.labels[asciiLower(tok.text[2:])] = true
			pos = nextLine(text, pos)
			continue
		}

		if depth == 0 {
			switch {
			case strings.EqualFold(tok.text, "ON"):
				pos = l.handler(tok, pos)
				if t, _ := scan(text, pos); strings.HasPrefix(t.text, "{") && !t.quoted {
					_, pos = scan(text, pos)
					depth, handlerAt, prev = 1, tok.start, "{"
				}
			case tok.text[0] == '}':
				l.report(tok.start, Error, "unmatched }")
			case tok.text[0] == '{':
				l.report(tok.start, Error, "block outside any handler")
				depth, handlerAt = 1, tok.start
			default:
				l.report(tok.start, Warning, "%q is outside any handler", tok.text)
			}
			continue
		}

		switch {
		case tok.text[0] == '{':
			depth++
			continue
		case tok.text[0] == '}':
			depth--
			continue
		case strings.EqualFold(tok.text, "GOTO") || strings.EqualFold(tok.text, "GOSUB"):
			label, next := scan(text, pos)
			if label.text == "" || label.crossed {
				l.report(tok.start, Error, "%s without a label", strings.ToUpper(tok.text))
				continue
			}
			pos = next
			l.jumps = append(l.jumps, jumpRef{label: label.text, offset: label.start})
			continue
		}

		if lineStart && table != nil && NamespaceOf(tok.text) == NamespaceNone {
			if _, ok := table.Lookup(tok.text); !ok {
				l.report(tok.start, Warning, "unknown command %q", tok.text)
			}
		}
	}

	if depth > 0 {
		l.report(handlerAt, Error, "block is never closed")
	}
	for _, j := range l.jumps {
		if !l.labels[asciiLower(j.label)] {
			l.report(j.offset, Error, "label %q not found", j.label)
		}
	}
}

// handler checks the name after "ON" and returns the offset after it.
func (l *linter) handler(on token, pos int) int {
	name, next := scan(l.text, pos)
	if name.text == "" || strings.HasPrefix(name.text, "{") {
		l.report(on.start, Error, "ON without an event name")
		return pos
	}
	if ev, ok := ParseEvent(name.text); ok {
		if l.handlers[ev] {
			l.report(on.start, Warning, "duplicate %s handler is never reached", ev.Handler())
		}
		l.handlers[ev] = true
	}
	if t, _ := scan(l.text, next); !strings.HasPrefix(t.text, "{") || t.quoted {
		l.report(on.start, Error, "ON %s has no block", strings.ToUpper(name.text))
	}
	return next
}
