package script

import (
	"log/slog"
	"strings"

	"github.com/jwebster45206/scriptevent/pkg/entity"
)

// Context is the state of one dispatch: the scan offset, brace depth and
// subroutine stack. Nested dispatches get their own Context, so a command
// that triggers another event never moves its caller's cursor.
type Context struct {
	engine *Engine
	script *Script
	entity *entity.Entity
	event  Event
	name   string
	params []string

	verb  string
	pos   int
	depth int
	line  bool
	gosub []int
	steps int
}

func (c *Context) Engine() *Engine        { return c.engine }
func (c *Context) Script() *Script        { return c.script }
func (c *Context) Entity() *entity.Entity { return c.entity }
func (c *Context) Event() Event           { return c.event }
func (c *Context) EventName() string      { return c.name }
func (c *Context) Params() []string       { return c.params }
func (c *Context) Logger() *slog.Logger   { return c.engine.logger() }
func (c *Context) Pos() int               { return c.pos }
func (c *Context) SetPos(pos int)         { c.pos = pos }
func (c *Context) Depth() int             { return c.depth }
func (c *Context) LineMode() bool         { return c.line }

// Verb returns the word that invoked the running command, as written.
func (c *Context) Verb() string {
	return c.verb
}

// Param returns the i-th (0-based) event parameter, or "".
func (c *Context) Param(i int) string {
	if i < 0 || i >= len(c.params) {
		return ""
	}
	return c.params[i]
}

// Scope returns the variable stores visible to the script.
func (c *Context) Scope() Scope {
	return Scope{Globals: c.engine.Globals, Locals: c.script.Locals()}
}

func (c *Context) next() token {
	tok, next := scan(c.script.text, c.pos)
	c.pos = next
	return tok
}

// Word consumes the next word, expanding ~name~ references.
func (c *Context) Word() string {
	return c.interpolate(c.next().text)
}

// RawWord consumes the next word as written.
func (c *Context) RawWord() string {
	return c.next().text
}

// PeekWord returns the next word without consuming it.
func (c *Context) PeekWord() string {
	tok, _ := scan(c.script.text, c.pos)
	return tok.text
}

// LineWord consumes the next word only when it sits on the current line.
func (c *Context) LineWord() (string, bool) {
	tok, next := scan(c.script.text, c.pos)
	if tok.crossed || (tok.text == "" && !tok.quoted) {
		return "", false
	}
	c.pos = next
	return c.interpolate(tok.text), true
}

// SkipWord consumes one word.
func (c *Context) SkipWord() {
	c.next()
}

// SkipCommand moves to the end of the current line.
func (c *Context) SkipCommand() {
	c.pos = nextLine(c.script.text, c.pos)
}

// SkipStatement skips one statement: a braced block, an IF with its
// body and optional ELSE, or the rest of the line up to a bare ELSE.
func (c *Context) SkipStatement() {
	text := c.script.text
	tok, next := scan(text, c.pos)
	switch {
	case tok.text == "":
		c.pos = next
	case tok.quoted:
		c.pos = nextLine(text, next)
	case tok.text[0] == '{':
		c.pos = skipBlock(text, next)
	case strings.HasPrefix(tok.text, "//"):
		c.pos = nextLine(text, next)
		c.SkipStatement()
	case strings.EqualFold(tok.text, "IF"):
		for range 3 {
			_, next = scan(text, next)
		}
		c.pos = next
		c.SkipStatement()
		if c.skipElse() {
			c.SkipStatement()
		}
	default:
		c.pos = skipLine(text, next)
	}
}

// skipLine returns the end of the line containing pos, or the start of an
// ELSE keyword met before it, so a one-line IF keeps its alternative.
func skipLine(text string, pos int) int {
	for {
		tok, next := scan(text, pos)
		switch {
		case tok.text == "" && !tok.quoted:
			return next
		case tok.crossed:
			return nextLine(text, pos)
		case tok.quoted:
		case strings.EqualFold(tok.text, "ELSE"):
			return tok.start
		case strings.HasPrefix(tok.text, "//"):
			return nextLine(text, tok.start)
		}
		pos = next
	}
}

// SkipBranch skips the statement guarded by a failed condition and consumes
// a following ELSE, leaving the cursor on the alternative.
func (c *Context) SkipBranch() {
	c.SkipStatement()
	c.skipElse()
}

// skipElse consumes an ELSE keyword at the cursor.
func (c *Context) skipElse() bool {
	tok, next := scan(c.script.text, c.pos)
	if tok.quoted || !strings.EqualFold(tok.text, "ELSE") {
		return false
	}
	c.pos = next
	return true
}

// skipBlock returns the offset just past the '}' closing the block whose
// '{' ends before pos.
func skipBlock(text string, pos int) int {
	depth := 1
	for depth > 0 {
		tok, next := scan(text, pos)
		pos = next
		if tok.text == "" {
			return pos
		}
		if tok.quoted {
			continue
		}
		switch {
		case strings.HasPrefix(tok.text, "//"):
			pos = nextLine(text, pos)
		case tok.text[0] == '{':
			depth++
		case tok.text[0] == '}':
			depth--
		}
	}
	return pos
}

// Jump moves the cursor just past the label ">>name".
func (c *Context) Jump(label string) bool {
	target := ">>" + label
	pos := c.script.Find(target)
	if pos < 0 {
		return false
	}
	c.pos = pos + len(target)
	return true
}

// Gosub jumps to label, remembering the current offset for Return.
func (c *Context) Gosub(label string) bool {
	ret := c.pos
	if !c.Jump(label) {
		return false
	}
	c.gosub = append(c.gosub, ret)
	return true
}

// Return resumes after the latest Gosub. It reports false on an empty stack.
func (c *Context) Return() bool {
	n := len(c.gosub)
	if n == 0 {
		return false
	}
	c.pos = c.gosub[n-1]
	c.gosub = c.gosub[:n-1]
	return true
}

// System reads a system variable. name may include the '^'.
func (c *Context) System(name string) Value {
	name = asciiLower(strings.TrimPrefix(name, "^"))
	if r := c.engine.SystemVars; r != nil {
		if v, ok := r.Resolve(c, name); ok {
			return v
		}
	}
	if v, ok := BuiltinVars.Resolve(c, name); ok {
		return v
	}
	c.Logger().Debug("Unknown system variable", "name", "^"+name, "script", c.script.Name)
	return TextValue("")
}

// Number interprets word as a number: variables by sigil, anything else
// by its numeric prefix.
func (c *Context) Number(word string) float64 {
	ns := NamespaceOf(word)
	switch {
	case ns == SystemVar:
		return c.System(word).Float()
	case ns.Numeric():
		return c.Scope().Number(word)
	case ns.Text():
		return atof(c.Scope().Text(word))
	}
	return atof(word)
}

// Text interprets word as text: variables by sigil, anything else as is.
func (c *Context) Text(word string) string {
	ns := NamespaceOf(word)
	switch {
	case ns == SystemVar:
		return c.System(word).String()
	case ns.Numeric():
		return formatNumber(c.Scope().Number(word))
	case ns.Text():
		return c.Scope().Text(word)
	}
	return word
}

func (c *Context) interpolate(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '~')
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i+1:], '~')
		if j < 0 {
			break
		}
		b.WriteString(s[:i])
		b.WriteString(c.Text(s[i+1 : i+1+j]))
		s = s[i+2+j:]
	}
	b.WriteString(s)
	return b.String()
}

// Target resolves an entity reference. "me" and "self" name the entity
// running the script.
func (c *Context) Target(name string) (*entity.Entity, bool) {
	if strings.EqualFold(name, "me") || strings.EqualFold(name, "self") {
		return c.entity, c.entity != nil
	}
	if c.engine.Targets == nil {
		return nil, false
	}
	return c.engine.Targets.Target(name)
}

// Send dispatches a nested event from inside a command.
func (c *Context) Send(req Request) Result {
	return c.engine.Send(req)
}

// following returns up to n words after pos, for error reports.
func (c *Context) following(n int) []string {
	out := make([]string, 0, n)
	pos := c.pos
	for range n {
		var tok token
		tok, pos = scan(c.script.text, pos)
		if tok.text == "" {
			break
		}
		out = append(out, tok.text)
	}
	return out
}
