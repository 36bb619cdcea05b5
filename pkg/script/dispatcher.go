package script

import (
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/pkg/errors"

	"github.com/jwebster45206/scriptevent/pkg/entity"
)

// Send delivers an event and returns its outcome. It never panics on bad
// script text; failures are logged.
func (e *Engine) Send(req Request) Result {
	res, _ := e.Dispatch(req)
	return res
}

// Dispatch is Send with the reason for an abnormal outcome. The error wraps
// ErrInterpreterFault, ErrEntityFrozen, ErrStepLimit, ErrNestingLimit or
// ErrNoBracket.
func (e *Engine) Dispatch(req Request) (Result, error) {
	totalSent.Add(1)
	ev := req.Event

	if e.nesting >= MaxNesting {
		e.logger().Error("Nested dispatch limit exceeded",
			"event", ev.String(),
			"custom_event", req.EventName,
			"limit", MaxNesting)
		return BigError, errors.Wrapf(ErrNestingLimit, "%s after %d nested sends", ev, MaxNesting)
	}
	e.nesting++
	defer func() { e.nesting-- }()

	if ent := req.Entity; ent != nil {
		if res, stop := e.gate(ev, ent); stop {
			return res, nil
		}
	}
	if e.paused && ev != EventLoad && ev != EventInit && ev != EventInitEnd {
		return Accept, nil
	}
	s := req.Script
	if s == nil {
		return Accept, nil
	}

	ctx := &Context{
		engine: e,
		script: s,
		entity: req.Entity,
		event:  ev,
		name:   req.EventName,
		params: splitParams(req.Params),
	}

	switch {
	case ev == EventExecuteLine:
		ctx.line = true
		ctx.pos = req.Line
		e.logger().Debug("EXECUTELINE received", "script", s.Name, "offset", req.Line)
		return e.run(ctx)

	case req.EventName != "":
		handler := "on " + req.EventName
		pos := s.Find(handler)
		if pos < 0 {
			return Accept, nil
		}
		ctx.pos = pos + len(handler)

	default:
		if !s.EventEnabled(ev) {
			return Refuse, nil
		}
		if ev == EventKeyPressed && !e.cinematicStart.IsZero() &&
			e.now().Sub(e.cinematicStart) < e.keyPressGuard() {
			return Refuse, nil
		}
		if !ev.Known() || ev == EventNull {
			return Accept, nil
		}
		pos := s.Shortcut(ev)
		if e.NoShortcuts {
			pos = s.Find(ev.Handler())
		}
		if pos < 0 {
			return Accept, nil
		}
		ctx.pos = pos + len(ev.Handler())
		e.logger().Debug("Event received", "event", ev.Handler(), "script", s.Name)
	}

	tok := ctx.next()
	if tok.text == "" || tok.text[0] != '{' {
		e.logger().Error("No bracket after event",
			"got", tok.text,
			"event", eventLabel(ctx),
			"script", s.Name,
			"offset", tok.start)
		return Accept, errors.Wrapf(ErrNoBracket, "%s in %s", eventLabel(ctx), s.Name)
	}
	ctx.depth = 1
	return e.run(ctx)
}

func (e *Engine) keyPressGuard() time.Duration {
	if e.KeyPressGuard <= 0 {
		return DefaultKeyPressGuard
	}
	return e.KeyPressGuard
}

// gate applies the entity's state before any text is scanned. stop reports
// whether res is final.
func (e *Engine) gate(ev Event, ent *entity.Entity) (res Result, stop bool) {
	ent.StatCount++

	if ent.Has(entity.StateMegaHide) && ev != EventReload {
		return Accept, true
	}
	if ent.Destroyed() {
		return Accept, true
	}
	if ent.Frozen() && ev != EventLoad {
		return Refuse, true
	}
	if ent.Dead() {
		switch ev {
		case EventDead, EventDie, EventExecuteLine, EventReload,
			EventInventory2Open, EventInventory2Close:
		default:
			return Accept, true
		}
	}
	if ev == EventBreak && ent.Is(entity.FlagFix|entity.FlagItem) && e.OnBreak != nil {
		e.OnBreak(ent)
	}
	return Accept, false
}

// run is the statement loop.
func (e *Engine) run(ctx *Context) (Result, error) {
	text := ctx.script.text
	for {
		if ctx.pos >= len(text)-1 {
			return Accept, nil
		}
		tok := ctx.next()
		if tok.text == "" {
			return Accept, nil
		}
		if ctx.line && tok.crossed {
			return Accept, nil
		}

		ctx.steps++
		if e.MaxSteps > 0 && ctx.steps > e.MaxSteps {
			e.logger().Error("Script step limit exceeded",
				"script", ctx.script.Name,
				"event", eventLabel(ctx),
				"offset", tok.start,
				"limit", e.MaxSteps)
			return BigError, errors.Wrapf(ErrStepLimit, "%s in %s after %d steps", eventLabel(ctx), ctx.script.Name, e.MaxSteps)
		}

		cmd, ok := e.Commands.Lookup(tok.text)
		if !ok {
			return e.unknownWord(ctx, tok)
		}

		var res CommandResult
		if flags := cmd.Flags(); flags != 0 && !entityMatches(ctx.entity, flags) {
			e.logger().Warn("Command needs an entity of another kind",
				"command", cmd.Name(),
				"flags", uint32(flags),
				"script", ctx.script.Name)
			ctx.SkipCommand()
			res = Failed
		} else {
			ctx.verb = tok.text
			res = cmd.Execute(ctx)
		}

		switch res {
		case AbortAccept:
			ctx.gosub = nil
			return Accept, nil
		case AbortRefuse:
			ctx.gosub = nil
			return Refuse, nil
		case AbortError:
			ctx.gosub = nil
			return BigError, nil
		case Jumped:
			if ctx.line {
				ctx.line = false
				ctx.event = EventDummy
			}
		}
	}
}

func entityMatches(ent *entity.Entity, flags entity.Flag) bool {
	if ent == nil {
		return false
	}
	return flags == AnyEntity || ent.Flags&flags != 0
}

// unknownWord quarantines the entity, or faults when there is none.
func (e *Engine) unknownWord(ctx *Context, tok token) (Result, error) {
	following := strings.Join(ctx.following(3), "|")
	if ent := ctx.entity; ent != nil {
		e.logger().Error("Script error for token",
			"word", tok.text,
			"offset", tok.start,
			"following", following,
			"script", ctx.script.Name,
			"entity", ent.Name)
		ent.Freeze()
		return Refuse, errors.Wrapf(ErrEntityFrozen, "unknown word %q at %d in %s", tok.text, tok.start, ctx.script.Name)
	}
	e.logger().Error("Script error for token without entity",
		"word", tok.text,
		"offset", tok.start,
		"following", following,
		"script", ctx.script.Name)
	return BigError, errors.Wrapf(ErrInterpreterFault, "unknown word %q at %d in %s", tok.text, tok.start, ctx.script.Name)
}

func eventLabel(ctx *Context) string {
	if ctx.name != "" {
		return "ON " + strings.ToUpper(ctx.name)
	}
	return ctx.event.Handler()
}

// splitParams splits event parameters the way a shell would, falling back
// to plain fields for unbalanced quotes.
func splitParams(params string) []string {
	if strings.TrimSpace(params) == "" {
		return nil
	}
	words, err := shellwords.SplitPosix(params)
	if err != nil {
		return strings.Fields(params)
	}
	return words
}
