package script

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/scriptevent/pkg/entity"
)

// Operator is an IF comparison.
type Operator int

const (
	OpUnknown Operator = iota
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpIsClass
	OpIsElement
	OpIsIn
	OpIsType
	OpIsGroup
	OpNotIsGroup
)

var operators = map[string]Operator{
	"==":        OpEqual,
	"!=":        OpNotEqual,
	"<":         OpLess,
	"<=":        OpLessEqual,
	">":         OpGreater,
	">=":        OpGreaterEqual,
	"isclass":   OpIsClass,
	"iselement": OpIsElement,
	"isin":      OpIsIn,
	"istype":    OpIsType,
	"isgroup":   OpIsGroup,
	"!isgroup":  OpNotIsGroup,
}

// ParseOperator maps an operator word to its Operator, case-insensitively.
func ParseOperator(word string) Operator {
	return operators[asciiLower(word)]
}

// entityOperand reports whether a bareword left operand names an entity
// rather than a number.
func (op Operator) entityOperand() bool {
	return op == OpIsType || op == OpIsGroup || op == OpNotIsGroup
}

// operand is one typed side of a comparison.
type operand struct {
	text   string
	number float64
	isText bool
}

// resolve types a token by its sigil. Barewords are numbers unless
// textual says otherwise.
func (c *Context) resolve(word string, textual bool) operand {
	switch ns := NamespaceOf(word); {
	case ns == SystemVar:
		v := c.System(word)
		return operand{text: v.Text, number: v.Number, isText: v.IsText}
	case ns.Numeric():
		return operand{number: c.Scope().Number(word)}
	case ns.Text():
		return operand{text: c.Scope().Text(word), isText: true}
	}
	if textual {
		return operand{text: word, isText: true}
	}
	return operand{number: atof(word)}
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Evaluate computes "IF lhs op rhs". Operands of different types never
// satisfy any operator. An unknown operator is logged and treated as true.
func Evaluate(ctx *Context, lhs, op, rhs string) bool {
	oper := ParseOperator(op)
	left := ctx.resolve(lhs, oper.entityOperand())
	right := ctx.resolve(rhs, left.isText)

	if oper == OpUnknown {
		ctx.Logger().Warn("Unknown IF operator",
			"operator", op,
			"script", ctx.script.Name,
			"offset", ctx.pos)
		return true
	}
	if left.isText != right.isText {
		return false
	}

	text := left.isText
	switch oper {
	case OpEqual:
		if text {
			return upper(left.text) == upper(right.text)
		}
		return left.number == right.number
	case OpNotEqual:
		// text comparison here is case-sensitive, unlike ==
		if text {
			return left.text != right.text
		}
		return left.number != right.number
	case OpLess:
		return !text && left.number < right.number
	case OpLessEqual:
		return !text && left.number <= right.number
	case OpGreater:
		return !text && left.number > right.number
	case OpGreaterEqual:
		return !text && left.number >= right.number
	}

	// The remaining operators only test text; two numbers pass.
	if !text {
		return true
	}
	switch oper {
	case OpIsElement:
		want := upper(left.text)
		for _, tok := range strings.Split(upper(right.text), " ") {
			if tok != "" && tok == want {
				return true
			}
		}
		return false
	case OpIsClass:
		l, r := upper(left.text), upper(right.text)
		return strings.Contains(l, r) || strings.Contains(r, l)
	case OpIsIn:
		return strings.Contains(upper(right.text), upper(left.text))
	case OpIsGroup, OpNotIsGroup:
		ent, ok := ctx.Target(left.text)
		if !ok {
			return false
		}
		in := ent.InGroup(right.text)
		if oper == OpNotIsGroup {
			return !in
		}
		return in
	case OpIsType:
		flag := entity.ParseTypeFlag(right.text)
		ent, ok := ctx.Target(left.text)
		if flag == 0 || !ok {
			return false
		}
		return ent.TypeFlags&flag != 0
	}
	return false
}
