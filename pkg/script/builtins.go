package script

import "math"

func registerBuiltins(t *CommandTable) {
	for _, cmd := range []Command{
		NewCommand("if", 0, execIf),
		NewCommand("else", 0, execElse),
		NewCommand("set", 0, execSet),
		NewCommand("unset", 0, execUnset),
		NewCommand("inc", 0, arithmetic(func(a, b float64) float64 { return a + b })),
		NewCommand("dec", 0, arithmetic(func(a, b float64) float64 { return a - b })),
		NewCommand("mul", 0, arithmetic(func(a, b float64) float64 { return a * b })),
		NewCommand("div", 0, arithmetic(func(a, b float64) float64 {
			if b == 0 {
				return a
			}
			return a / b
		})),
		NewCommand("++", 0, step(1)),
		NewCommand("--", 0, step(-1)),
		NewCommand("accept", 0, func(*Context) CommandResult { return AbortAccept }),
		NewCommand("refuse", 0, func(*Context) CommandResult { return AbortRefuse }),
		NewCommand("goto", 0, execGoto),
		NewCommand("gosub", 0, execGosub),
		NewCommand("return", 0, execReturn),
	} {
		_ = t.Register(cmd)
	}

	for _, cmd := range []Command{
		NewCommand("{", 0, execOpen),
		NewCommand("}", 0, execClose),
		NewCommand("//", 0, execComment),
		NewCommand(">>", 0, execComment),
	} {
		_ = t.RegisterPrefix(cmd)
	}
}

func execOpen(ctx *Context) CommandResult {
	ctx.depth++
	return Continue
}

// execClose ends the dispatch once the handler's own block closes.
func execClose(ctx *Context) CommandResult {
	ctx.depth--
	if ctx.depth <= 0 {
		return AbortAccept
	}
	return Continue
}

// execComment covers "//" comments and ">>" labels.
func execComment(ctx *Context) CommandResult {
	ctx.SkipCommand()
	return Continue
}

func execIf(ctx *Context) CommandResult {
	lhs := ctx.Word()
	op := ctx.Word()
	rhs := ctx.Word()
	if !Evaluate(ctx, lhs, op, rhs) {
		ctx.SkipBranch()
	}
	return Continue
}

func execElse(ctx *Context) CommandResult {
	ctx.SkipStatement()
	return Continue
}

func execSet(ctx *Context) CommandResult {
	name := ctx.RawWord()
	value := ctx.Word()

	ns := NamespaceOf(name)
	var err error
	switch {
	case ns.Text():
		err = ctx.Scope().SetText(name, ctx.Text(value))
	default:
		// system and sigil-less names are rejected by the store
		err = ctx.Scope().SetNumber(name, ctx.Number(value))
	}
	if err != nil {
		ctx.Logger().Error("SET failed", "variable", name, "script", ctx.script.Name, "error", err)
		return Failed
	}
	return Continue
}

func execUnset(ctx *Context) CommandResult {
	ctx.Scope().Unset(ctx.RawWord())
	return Continue
}

// arithmetic builds INC, DEC, MUL and DIV: "<op> <var> <value>".
func arithmetic(apply func(current, operand float64) float64) func(*Context) CommandResult {
	return func(ctx *Context) CommandResult {
		name := ctx.RawWord()
		value := ctx.Word()

		ns := NamespaceOf(name)
		if !ns.Numeric() {
			ctx.Logger().Error("Unable to execute this operation on a non-numeric variable",
				"variable", name,
				"namespace", ns.String(),
				"script", ctx.script.Name)
			return Failed
		}
		scope := ctx.Scope()
		if err := scope.SetNumber(name, apply(scope.Number(name), ctx.Number(value))); err != nil {
			ctx.Logger().Error("Arithmetic failed", "variable", name, "error", err)
			return Failed
		}
		return Continue
	}
}

// step builds "++ <var>" and "-- <var>".
func step(delta float64) func(*Context) CommandResult {
	return func(ctx *Context) CommandResult {
		name := ctx.RawWord()
		ns := NamespaceOf(name)
		if !ns.Numeric() {
			ctx.Logger().Error("Increment on a non-numeric variable",
				"variable", name,
				"script", ctx.script.Name)
			return AbortError
		}
		scope := ctx.Scope()
		v := scope.Number(name) + delta
		if ns.Integer() {
			v = math.Trunc(v)
		}
		_ = scope.SetNumber(name, v)
		return Continue
	}
}

func execGoto(ctx *Context) CommandResult {
	label := ctx.Word()
	if !ctx.Jump(label) {
		ctx.Logger().Error("GOTO label not found", "label", label, "script", ctx.script.Name)
		return AbortAccept
	}
	return Jumped
}

func execGosub(ctx *Context) CommandResult {
	label := ctx.Word()
	if !ctx.Gosub(label) {
		ctx.Logger().Error("GOSUB label not found", "label", label, "script", ctx.script.Name)
		return AbortAccept
	}
	return Jumped
}

func execReturn(ctx *Context) CommandResult {
	if !ctx.Return() {
		return AbortAccept
	}
	return Jumped
}
