package script

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// Value is a system variable reading.
type Value struct {
	Number float64
	Text   string
	IsText bool
}

func NumberValue(v float64) Value { return Value{Number: v} }
func TextValue(s string) Value    { return Value{Text: s, IsText: true} }

// String renders the value as text.
func (v Value) String() string {
	if v.IsText {
		return v.Text
	}
	return formatNumber(v.Number)
}

// Float returns the numeric reading of the value.
func (v Value) Float() float64 {
	if v.IsText {
		return atof(v.Text)
	}
	return v.Number
}

// Resolver computes system variables. name excludes the leading '^' and is
// lowercase.
type Resolver interface {
	Resolve(ctx *Context, name string) (Value, bool)
}

type ResolverFunc func(ctx *Context, name string) (Value, bool)

func (f ResolverFunc) Resolve(ctx *Context, name string) (Value, bool) {
	return f(ctx, name)
}

// Resolvers tries each resolver in order.
type Resolvers []Resolver

func (rs Resolvers) Resolve(ctx *Context, name string) (Value, bool) {
	for _, r := range rs {
		if v, ok := r.Resolve(ctx, name); ok {
			return v, true
		}
	}
	return Value{}, false
}

// BuiltinVars resolves the system variables every host gets: ^me, ^life,
// ^posx/^posy/^posz, ^event, ^gametime, ^rnd_<n> and the event parameters
// ^#param<n>, ^&param<n>, ^$param<n>.
var BuiltinVars Resolver = ResolverFunc(builtinVar)

func builtinVar(ctx *Context, name string) (Value, bool) {
	ent := ctx.Entity()
	switch name {
	case "me", "self":
		if ent == nil {
			return TextValue("none"), true
		}
		return TextValue(ent.Name), true
	case "life":
		if ent == nil {
			return NumberValue(0), true
		}
		return NumberValue(ent.Life), true
	case "posx", "posy", "posz":
		if ent == nil {
			return NumberValue(0), true
		}
		switch name {
		case "posx":
			return NumberValue(ent.Pos.X), true
		case "posy":
			return NumberValue(ent.Pos.Y), true
		}
		return NumberValue(ent.Pos.Z), true
	case "event":
		if ctx.EventName() != "" {
			return TextValue(strings.ToUpper(ctx.EventName())), true
		}
		return TextValue(ctx.Event().String()), true
	case "gametime":
		return NumberValue(float64(ctx.Engine().now().Sub(ctx.Engine().startedAt).Milliseconds())), true
	}

	if rest, ok := strings.CutPrefix(name, "rnd_"); ok {
		return NumberValue(rand.Float64() * atof(rest)), true
	}

	if len(name) > len("#param") && strings.HasPrefix(name[1:], "param") {
		n, err := strconv.Atoi(name[len("#param"):])
		if err != nil || n < 1 {
			return Value{}, false
		}
		p := ctx.Param(n - 1)
		switch name[0] {
		case '#':
			return NumberValue(float64(int64(atof(p)))), true
		case '&':
			return NumberValue(atof(p)), true
		case '$':
			return TextValue(p), true
		}
	}
	return Value{}, false
}
