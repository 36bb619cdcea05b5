// Package commands holds the game verbs scripts can call beyond the
// interpreter keywords. Register installs them into a command table; the
// side effects go through a Host.
package commands

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/timer"
)

// Host performs the effects of game commands on the world.
type Host interface {
	// Say shows a line of speech. localized is set for "[key]" lines.
	Say(speaker *entity.Entity, text string, localized bool)
	Kill(ent *entity.Entity)
	Destroy(ent *entity.Entity)
	// SendEvent delivers req to the entity named target and reports
	// whether the target exists.
	SendEvent(target string, req script.Request) (script.Result, bool)
}

// Timers schedules timer statements.
type Timers interface {
	Start(t timer.Timer) string
	Stop(owner *entity.Entity, s *script.Script, name string) bool
	StopOwner(owner *entity.Entity, s *script.Script) int
	StopAll()
}

// Register adds the game commands to t.
func Register(t *script.CommandTable, host Host, timers Timers) error {
	exact := []script.Command{
		script.NewCommand("herosay", 0, heroSay(host)),
		script.NewCommand("killme", script.AnyEntity, killMe(host)),
		script.NewCommand("destroy", 0, destroy(host)),
		script.NewCommand("move", script.AnyEntity, move),
		script.NewCommand("invulnerability", 0, invulnerability),
		script.NewCommand("setevent", 0, setEvent),
		script.NewCommand("sendevent", 0, sendEvent(host)),
		script.NewCommand("ifexistinternal", 0, ifExistInternal),
		script.NewCommand("setgroup", script.AnyEntity, setGroup),
		script.NewCommand("cinemascope", 0, cinemascope),
		script.NewCommand("timerkill_local", 0, killLocalTimers(timers)),
		script.NewCommand("timerkill_all", 0, killAllTimers(timers)),
	}
	exact = append(exact, obsolete()...)

	for _, cmd := range exact {
		if err := t.Register(cmd); err != nil {
			return fmt.Errorf("register %s: %w", cmd.Name(), err)
		}
	}
	if err := t.RegisterPrefix(script.NewCommand("timer", 0, startTimer(timers))); err != nil {
		return fmt.Errorf("register timer: %w", err)
	}
	return nil
}

// flagWord reads an optional "-xyz" option word and then the argument
// after it. The options are returned lowercased without the dash.
func flagWord(ctx *script.Context) (opts, word string) {
	if strings.HasPrefix(ctx.PeekWord(), "-") {
		opts = strings.ToLower(ctx.RawWord()[1:])
	}
	return opts, ctx.Word()
}

func heroSay(host Host) func(*script.Context) script.CommandResult {
	return func(ctx *script.Context) script.CommandResult {
		opts, word := flagWord(ctx)
		text := ctx.Text(word)
		if strings.Contains(opts, "d") {
			ctx.Logger().Debug("HEROSAY debug line", "text", text, "script", ctx.Script().Name)
			return script.Continue
		}
		host.Say(ctx.Entity(), text, strings.HasPrefix(text, "["))
		return script.Continue
	}
}

// killMe takes one off a stack of items, or kills the entity.
func killMe(host Host) func(*script.Context) script.CommandResult {
	return func(ctx *script.Context) script.CommandResult {
		ent := ctx.Entity()
		if ent.Is(entity.FlagItem) && ent.Count > 1 {
			ent.Count--
			return script.Continue
		}
		host.Kill(ent)
		return script.Continue
	}
}

func destroy(host Host) func(*script.Context) script.CommandResult {
	return func(ctx *script.Context) script.CommandResult {
		name := ctx.Text(ctx.Word())
		target, ok := ctx.Target(name)
		if !ok {
			ctx.Logger().Warn("DESTROY target not found", "target", name, "script", ctx.Script().Name)
			return script.Failed
		}
		host.Destroy(target)
		if target == ctx.Entity() {
			// nothing left to run the rest of the script on
			return script.AbortAccept
		}
		return script.Continue
	}
}

func move(ctx *script.Context) script.CommandResult {
	dx := ctx.Number(ctx.Word())
	dy := ctx.Number(ctx.Word())
	dz := ctx.Number(ctx.Word())
	ent := ctx.Entity()
	ent.Pos.X += dx
	ent.Pos.Y += dy
	ent.Pos.Z += dz
	return script.Continue
}

// invulnerability toggles the entity's flag, or the player's with -p.
func invulnerability(ctx *script.Context) script.CommandResult {
	opts, word := flagWord(ctx)
	on := strings.EqualFold(word, "on")

	target := ctx.Entity()
	if strings.Contains(opts, "p") {
		target, _ = ctx.Target("player")
	}
	if target == nil {
		ctx.Logger().Warn("INVULNERABILITY has no target", "script", ctx.Script().Name)
		return script.Failed
	}
	if on {
		target.Set(entity.StateInvulnerable)
	} else {
		target.Clear(entity.StateInvulnerable)
	}
	return script.Continue
}

// setEvent switches delivery of a suppressible event for the script.
func setEvent(ctx *script.Context) script.CommandResult {
	name := ctx.Word()
	state := ctx.Word()
	m, ok := script.ParseSuppress(name)
	if !ok {
		ctx.Logger().Warn("SETEVENT on an event that cannot be switched",
			"event", name,
			"script", ctx.Script().Name)
		return script.Failed
	}
	ctx.Script().SetSuppressed(m, !strings.EqualFold(state, "on"))
	return script.Continue
}

// sendEvent dispatches "SENDEVENT <event> <target> [params]" to another
// entity. Unknown event names are sent as custom events.
func sendEvent(host Host) func(*script.Context) script.CommandResult {
	return func(ctx *script.Context) script.CommandResult {
		name := ctx.Text(ctx.Word())
		target := ctx.Text(ctx.Word())
		params, _ := ctx.LineWord()

		req := script.Request{Params: params}
		if ev, ok := script.ParseEvent(name); ok {
			req.Event = ev
		} else {
			req.EventName = name
		}
		res, ok := host.SendEvent(target, req)
		if !ok {
			ctx.Logger().Warn("SENDEVENT target not found",
				"target", target,
				"event", name,
				"script", ctx.Script().Name)
			return script.Failed
		}
		ctx.Logger().Debug("SENDEVENT delivered", "target", target, "event", name, "result", res.String())
		return script.Continue
	}
}

// cinemascope switches the letterboxed cinematic view. Turning it on starts
// the window in which KEY_PRESSED is refused.
func cinemascope(ctx *script.Context) script.CommandResult {
	_, state := flagWord(ctx)
	switch strings.ToLower(ctx.Text(state)) {
	case "on":
		ctx.Engine().StartCinematic()
	case "off":
	default:
		ctx.Logger().Warn("CINEMASCOPE expects ON or OFF", "got", state, "script", ctx.Script().Name)
		return script.Failed
	}
	return script.Continue
}

// ifExistInternal runs the next statement only if the target exists.
func ifExistInternal(ctx *script.Context) script.CommandResult {
	name := ctx.Text(ctx.Word())
	if _, ok := ctx.Target(name); !ok {
		ctx.SkipStatement()
	}
	return script.Continue
}

func setGroup(ctx *script.Context) script.CommandResult {
	opts, group := flagWord(ctx)
	group = ctx.Text(group)
	if strings.Contains(opts, "r") {
		ctx.Entity().RemoveGroup(group)
	} else {
		ctx.Entity().AddGroup(group)
	}
	return script.Continue
}
