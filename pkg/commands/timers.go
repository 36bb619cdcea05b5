package commands

import (
	"strings"
	"time"

	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/timer"
)

// startTimer handles TIMER<name> [-m] <count> <interval> <statement>,
// TIMER<name> OFF and TIMER<name> KILL_LOCAL. The interval is in seconds,
// or milliseconds with -m. The statement is the rest of the line.
func startTimer(timers Timers) func(*script.Context) script.CommandResult {
	return func(ctx *script.Context) script.CommandResult {
		name := strings.ToLower(ctx.Verb()[len("timer"):])
		owner := ctx.Entity()

		arg := ctx.Word()
		switch {
		case strings.EqualFold(arg, "kill_local"):
			timers.StopOwner(owner, ctx.Script())
			return script.Continue
		case strings.EqualFold(arg, "off"):
			if name != "" {
				timers.Stop(owner, ctx.Script(), name)
			}
			return script.Continue
		}

		unit := time.Second
		if strings.HasPrefix(arg, "-") {
			// -i (idle-only) is accepted and ignored
			if strings.ContainsAny(arg, "mM") {
				unit = time.Millisecond
			}
			arg = ctx.Word()
		}
		count := int(ctx.Number(arg))
		interval := time.Duration(ctx.Number(ctx.Word()) * float64(unit))

		started := timers.Start(timer.Timer{
			Name:     name,
			Owner:    owner,
			Script:   ctx.Script(),
			Line:     ctx.Pos(),
			Interval: interval,
			Count:    count,
		})
		ctx.Logger().Debug("Timer set", "timer", started, "count", count, "interval", interval)
		ctx.SkipCommand()
		return script.Continue
	}
}

func killLocalTimers(timers Timers) func(*script.Context) script.CommandResult {
	return func(ctx *script.Context) script.CommandResult {
		timers.StopOwner(ctx.Entity(), ctx.Script())
		return script.Continue
	}
}

func killAllTimers(timers Timers) func(*script.Context) script.CommandResult {
	return func(ctx *script.Context) script.CommandResult {
		timers.StopAll()
		return script.Continue
	}
}

// obsoleteArgs lists retired commands and how many arguments each takes.
var obsoleteArgs = map[string]int{
	"attachnpctoplayer": 0,
	"gmode":             1,
	"setrighthand":      1,
	"setlefthand":       1,
	"setshield":         1,
	"settwohanded":      0,
	"setonehanded":      0,
	"say":               0,
	"setdetachable":     1,
	"setstackable":      1,
	"setinternalname":   1,
}

// obsolete returns commands that swallow their arguments and warn.
func obsolete() []script.Command {
	cmds := make([]script.Command, 0, len(obsoleteArgs))
	for name, nargs := range obsoleteArgs {
		cmds = append(cmds, script.NewCommand(name, 0, func(ctx *script.Context) script.CommandResult {
			for range nargs {
				ctx.SkipWord()
			}
			ctx.Logger().Warn("Obsolete command", "command", strings.ToUpper(name), "script", ctx.Script().Name)
			return script.Failed
		}))
	}
	return cmds
}
