package script

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scriptevent/pkg/entity"
)

func TestSend_InitScenario(t *testing.T) {
	e, said := newTestEngine()
	s := New("scenario", "ON INIT {\n  SET #foo 3\n  INC #foo 4\n  IF #foo == 7 { HEROSAY \"yes\" } ELSE { HEROSAY \"no\" }\n}")

	res := e.Send(Request{Script: s, Event: EventInit})

	assert.Equal(t, Accept, res)
	assert.Equal(t, 7.0, e.Globals.Number("#foo"))
	assert.Equal(t, []string{"yes"}, *said)
}

func TestSend_ElseBranch(t *testing.T) {
	e, said := newTestEngine()
	s := New("scenario", "ON INIT {\n  SET #foo 1\n  IF #foo == 7 { HEROSAY \"yes\" } ELSE { HEROSAY \"no\" }\n  HEROSAY \"after\"\n}")

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, []string{"no", "after"}, *said)
}

func TestSend_UnknownWordFreezesEntity(t *testing.T) {
	e, said := newTestEngine()
	s := New("broken", "ON CHAT { HEROSAY \"hi\" UNKNOWNCOMMANDXYZ }")
	ent := entity.New("npc_0001", entity.FlagNPC)

	res, err := e.Dispatch(Request{Script: s, Event: EventChat, Entity: ent})
	assert.Equal(t, Refuse, res)
	assert.True(t, errors.Is(err, ErrEntityFrozen))
	assert.True(t, ent.Frozen())
	assert.Equal(t, []string{"hi"}, *said)

	res, err = e.Dispatch(Request{Script: s, Event: EventChat, Entity: ent})
	assert.Equal(t, Refuse, res)
	assert.NoError(t, err)
	assert.Equal(t, []string{"hi"}, *said, "frozen entity is not re-scanned")
}

func TestSend_FrozenEntityStillLoads(t *testing.T) {
	e, _ := newTestEngine()
	s := New("frozen", "ON LOAD { SET #loaded 1 }\nON INIT { SET #init 1 }")
	ent := entity.New("npc_0001", entity.FlagNPC)
	ent.Freeze()

	assert.Equal(t, Refuse, e.Send(Request{Script: s, Event: EventInit, Entity: ent}))
	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventLoad, Entity: ent}))
	assert.Equal(t, 1.0, e.Globals.Number("#loaded"))
	assert.Equal(t, 0.0, e.Globals.Number("#init"))
}

func TestSend_UnknownWordWithoutEntity(t *testing.T) {
	e, _ := newTestEngine()
	s := New("broken", "ON INIT { FROBNICATE }")

	res, err := e.Dispatch(Request{Script: s, Event: EventInit})
	assert.Equal(t, BigError, res)
	assert.True(t, errors.Is(err, ErrInterpreterFault))
	assert.False(t, errors.Is(err, ErrEntityFrozen))
}

func TestSend_NoHandlerLeavesStateAlone(t *testing.T) {
	e, said := newTestEngine()
	s := New("init-only", "ON INIT {\n  SET #a 1\n  SET §b 2\n  HEROSAY \"init\"\n}")
	ent := entity.New("npc_0001", entity.FlagNPC)
	ent.Life = 5

	for _, ev := range Events() {
		if ev == EventInit {
			continue
		}
		t.Run(ev.String(), func(t *testing.T) {
			res, err := e.Dispatch(Request{Script: s, Event: ev, Entity: ent})
			assert.NoError(t, err)
			assert.Equal(t, Accept, res)
		})
	}

	assert.Zero(t, e.Globals.Len())
	assert.Zero(t, s.Locals().Len())
	assert.Empty(t, *said)
	assert.False(t, ent.Frozen())
	assert.Equal(t, 5.0, ent.Life)
	assert.Equal(t, entity.ShowInScene, ent.Show)
}

const multiHandlerScript = `ON INIT {
  SET #init 1
  IF #init == 1 {
    IF #other == 1 { SET #deep 1 }
    INC #count 2
  } ELSE { SET #never 1 }
}

ON HIT {
  INC #hits 1
  REFUSE
}

ON MAIN { ACCEPT }

ON CHAT {
  // greet
  ACCEPT
}

ON CUSTOM {
  SET $said "custom ~#hits~"
}

ON INITEND {
  SET #initend 1
}
`

func TestSend_ShortcutsAgreeWithLinearScan(t *testing.T) {
	for _, ev := range Events() {
		t.Run(ev.String(), func(t *testing.T) {
			cached, _ := newTestEngine()
			linear, _ := newTestEngine()
			linear.NoShortcuts = true

			resCached := cached.Send(Request{Script: New("cached", multiHandlerScript), Event: ev})
			resLinear := linear.Send(Request{Script: New("linear", multiHandlerScript), Event: ev})

			assert.Equal(t, resLinear, resCached)
			if diff := cmp.Diff(linear.Globals.Vars(), cached.Globals.Vars()); diff != "" {
				t.Errorf("variables differ (-linear +cached):\n%s", diff)
			}
		})
	}
}

func TestSend_NestedBlocksAreSkipped(t *testing.T) {
	e, _ := newTestEngine()
	s := New("nested", `ON INIT {
  IF #a == 1 {
    IF #b == 0 { SET #x 1 } ELSE { SET #w 1 }
    SET #y 1
  } ELSE {
    SET #z 1
  }
  SET #after 1
}`)

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 0.0, e.Globals.Number("#x"))
	assert.Equal(t, 0.0, e.Globals.Number("#w"))
	assert.Equal(t, 0.0, e.Globals.Number("#y"))
	assert.Equal(t, 1.0, e.Globals.Number("#z"))
	assert.Equal(t, 1.0, e.Globals.Number("#after"))
}

func TestSkipBranch_LandsOnElseBody(t *testing.T) {
	text := "{ IF #q == 1 { } SET #y 1 } ELSE { SET #z 1 }"
	e, _ := newTestEngine()
	ctx := newContext(e, New("skip", text), nil)

	ctx.SkipBranch()

	tok, _ := scan(text, ctx.Pos())
	assert.Equal(t, "{", tok.text)
	assert.Equal(t, strings.Index(text, "{ SET #z"), tok.start)
}

func TestSkipStatement_ElseIfChain(t *testing.T) {
	e, _ := newTestEngine()
	s := New("chain", `ON INIT {
  IF #a == 0 { SET #first 1 }
  ELSE IF #a == 1 { SET #second 1 }
  ELSE { SET #third 1 }
  SET #after 1
}`)

	e.Send(Request{Script: s, Event: EventInit})
	assert.Equal(t, 1.0, e.Globals.Number("#first"))
	assert.Equal(t, 0.0, e.Globals.Number("#second"))
	assert.Equal(t, 0.0, e.Globals.Number("#third"))
	assert.Equal(t, 1.0, e.Globals.Number("#after"))

	e.Globals.Clear()
	require.NoError(t, e.Globals.SetNumber("#a", 5))
	e.Send(Request{Script: s, Event: EventInit})
	assert.Equal(t, 0.0, e.Globals.Number("#first"))
	assert.Equal(t, 0.0, e.Globals.Number("#second"))
	assert.Equal(t, 1.0, e.Globals.Number("#third"))
}

func TestSend_OneLineIfElse(t *testing.T) {
	tests := []struct {
		name string
		a    float64
		want []string
	}{
		{name: "true", a: 1, want: []string{"yes", "after"}},
		{name: "false", a: 0, want: []string{"no", "after"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, said := newTestEngine()
			require.NoError(t, e.Globals.SetNumber("#a", tt.a))
			s := New("oneline", "ON INIT {\n  IF #a == 1 HEROSAY \"yes\" ELSE HEROSAY \"no\"\n  HEROSAY \"after\"\n}")

			assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
			assert.Equal(t, tt.want, *said)
		})
	}
}

func TestSkipStatement_QuotedElseIsText(t *testing.T) {
	text := "HEROSAY \"ELSE\" // ELSE\nSET #b 1"
	e, _ := newTestEngine()
	ctx := newContext(e, New("quoted", text), nil)

	ctx.SkipStatement()
	assert.Equal(t, strings.Index(text, "\n"), ctx.Pos())
}

func TestSkipBlock_IgnoresQuotedAndCommentedBraces(t *testing.T) {
	e, said := newTestEngine()
	s := New("braces", "ON INIT {\n  IF #a == 1 {\n    HEROSAY \"}\"\n    // }\n  }\n  HEROSAY \"out\"\n}")

	e.Send(Request{Script: s, Event: EventInit})
	assert.Equal(t, []string{"out"}, *said)
}

func TestSend_NestedDispatchKeepsCallerOffset(t *testing.T) {
	logger := testLogger()
	table := NewCommandTable(logger)
	e := NewEngine(NewStore(), table, logger)

	inner := New("inner", "ON INIT {\n  SET #inner 1\n  INC #inner 1\n  SET $noise \"long enough to move any shared cursor\"\n}")

	var before, after int
	require.NoError(t, table.Register(NewCommand("callinner", 0, func(ctx *Context) CommandResult {
		before = ctx.Pos()
		res := ctx.Send(Request{Script: inner, Event: EventInit})
		after = ctx.Pos()
		if res != Accept {
			return AbortError
		}
		return Continue
	})))

	outer := New("outer", "ON INIT {\n  CALLINNER\n  SET #outer 1\n}")
	assert.Equal(t, Accept, e.Send(Request{Script: outer, Event: EventInit}))

	assert.Equal(t, before, after)
	assert.Equal(t, 2.0, e.Globals.Number("#inner"))
	assert.Equal(t, 1.0, e.Globals.Number("#outer"))
}

func TestDispatch_NestingLimit(t *testing.T) {
	logger := testLogger()
	table := NewCommandTable(logger)
	e := NewEngine(NewStore(), table, logger)

	var deepest error
	s := New("echo", "ON INIT {\n  INC #depth 1\n  AGAIN\n}")
	require.NoError(t, table.Register(NewCommand("again", 0, func(ctx *Context) CommandResult {
		if _, err := ctx.Engine().Dispatch(Request{Script: s, Event: EventInit}); err != nil {
			deepest = err
		}
		return Continue
	})))

	res, err := e.Dispatch(Request{Script: s, Event: EventInit})
	require.NoError(t, err)
	assert.Equal(t, Accept, res)
	assert.True(t, errors.Is(deepest, ErrNestingLimit))
	assert.Equal(t, float64(MaxNesting), e.Globals.Number("#depth"))
}

func TestSend_ExecuteLine(t *testing.T) {
	text := "ON INIT {\n  SET #a 1\n  SET #b 2\n}\n>>LATER\n  SET #c 3\n  SET #d 4\n"
	e, _ := newTestEngine()
	s := New("lines", text)

	res := e.Send(Request{Script: s, Event: EventExecuteLine, Line: strings.Index(text, "SET #b")})
	assert.Equal(t, Accept, res)
	assert.Equal(t, 0.0, e.Globals.Number("#a"))
	assert.Equal(t, 2.0, e.Globals.Number("#b"))
	assert.Equal(t, 0.0, e.Globals.Number("#c"))
}

func TestSend_ExecuteLineJumpRunsUnbounded(t *testing.T) {
	text := "ON INIT {\n  GOTO LATER\n}\n>>LATER\n  SET #c 3\n  SET #d 4\n"
	e, _ := newTestEngine()
	s := New("lines", text)

	e.Send(Request{Script: s, Event: EventExecuteLine, Line: strings.Index(text, "GOTO")})
	assert.Equal(t, 3.0, e.Globals.Number("#c"))
	assert.Equal(t, 4.0, e.Globals.Number("#d"))
}

func TestSend_ExecuteLineBlockOnOneLine(t *testing.T) {
	text := "IF #a == 0 { SET #b 1 } SET #c 1\nSET #d 1"
	e, _ := newTestEngine()

	e.Send(Request{Script: New("line", text), Event: EventExecuteLine})
	assert.Equal(t, 1.0, e.Globals.Number("#b"))
	assert.Equal(t, 0.0, e.Globals.Number("#c"), "closing the line's block ends the statement")
	assert.Equal(t, 0.0, e.Globals.Number("#d"))
}

func TestSend_GosubReturn(t *testing.T) {
	e, _ := newTestEngine()
	s := New("gosub", "ON INIT {\n  GOSUB ADD\n  GOSUB ADD\n  SET #after 1\n  ACCEPT\n}\n>>ADD\n  INC #sum 5\n  RETURN\n")

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 10.0, e.Globals.Number("#sum"))
	assert.Equal(t, 1.0, e.Globals.Number("#after"))
}

func TestSend_ReturnWithoutGosubAccepts(t *testing.T) {
	e, _ := newTestEngine()
	s := New("ret", "ON INIT {\n  RETURN\n  SET #a 1\n}")

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 0.0, e.Globals.Number("#a"))
}

func TestSend_MissingLabel(t *testing.T) {
	e, _ := newTestEngine()
	s := New("goto", "ON INIT {\n  GOTO NOWHERE\n  SET #a 1\n}")

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 0.0, e.Globals.Number("#a"))
}

func TestSend_StepLimit(t *testing.T) {
	e, _ := newTestEngine()
	e.MaxSteps = 50
	s := New("loop", "ON INIT {\n>>LOOP\n  INC #a 1\n  GOTO LOOP\n}")

	res, err := e.Dispatch(Request{Script: s, Event: EventInit})
	assert.Equal(t, BigError, res)
	assert.True(t, errors.Is(err, ErrStepLimit))
	assert.Greater(t, e.Globals.Number("#a"), 0.0)
}

func TestSend_NoBracket(t *testing.T) {
	e, _ := newTestEngine()
	s := New("nobracket", "ON INIT SET #a 1")

	res, err := e.Dispatch(Request{Script: s, Event: EventInit})
	assert.Equal(t, Accept, res)
	assert.True(t, errors.Is(err, ErrNoBracket))
	assert.Equal(t, 0.0, e.Globals.Number("#a"))
}

func TestSend_ClosingBraceEndsHandler(t *testing.T) {
	e, _ := newTestEngine()
	s := New("close", "ON INIT { SET #a 1 }\nSET #b 2\nON HIT { SET #c 3 }")

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 1.0, e.Globals.Number("#a"))
	assert.Equal(t, 0.0, e.Globals.Number("#b"))
}

func TestSend_Refuse(t *testing.T) {
	e, _ := newTestEngine()
	s := New("refuse", multiHandlerScript)

	assert.Equal(t, Refuse, e.Send(Request{Script: s, Event: EventHit}))
	assert.Equal(t, 1.0, e.Globals.Number("#hits"))
}

func TestSend_Suppression(t *testing.T) {
	e, _ := newTestEngine()
	s := New("suppress", "ON CHAT { SET #chat 1 }\nON UNDETECTPLAYER { SET #undetect 1 }")

	s.SetSuppressed(SuppressChat|SuppressDetect, true)
	assert.Equal(t, Refuse, e.Send(Request{Script: s, Event: EventChat}))
	assert.Equal(t, Refuse, e.Send(Request{Script: s, Event: EventUndetectPlayer}))
	assert.Zero(t, e.Globals.Len())

	s.SetSuppressed(SuppressChat, false)
	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventChat}))
	assert.Equal(t, 1.0, e.Globals.Number("#chat"))
}

func TestSend_KeyPressedGuard(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e.Now = func() time.Time { return now }
	s := New("keys", "ON KEY_PRESSED { INC #keys 1 }")

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventKeyPressed}))

	e.StartCinematic()
	now = now.Add(2 * time.Second)
	assert.Equal(t, Refuse, e.Send(Request{Script: s, Event: EventKeyPressed}))

	now = now.Add(2 * time.Second)
	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventKeyPressed}))
	assert.Equal(t, 2.0, e.Globals.Number("#keys"))
}

func TestSend_Paused(t *testing.T) {
	e, _ := newTestEngine()
	s := New("paused", "ON HIT { SET #hit 1 }\nON INIT { SET #init 1 }")
	e.SetPaused(true)

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventHit}))
	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 0.0, e.Globals.Number("#hit"))
	assert.Equal(t, 1.0, e.Globals.Number("#init"))
}

func TestSend_EntityGate(t *testing.T) {
	script := "ON HIT { INC #hit 1 }\nON DIE { INC #die 1 }\nON RELOAD { INC #reload 1 }\nON BREAK { INC #break 1 }"

	tests := []struct {
		name  string
		setup func(*entity.Entity)
		flags entity.Flag
		event Event
		want  string
	}{
		{name: "alive npc is hit", flags: entity.FlagNPC, event: EventHit, want: "#hit"},
		{name: "megahide swallows hit", flags: entity.FlagNPC, event: EventHit,
			setup: func(e *entity.Entity) { e.Set(entity.StateMegaHide) }},
		{name: "megahide lets reload through", flags: entity.FlagNPC, event: EventReload, want: "#reload",
			setup: func(e *entity.Entity) { e.Set(entity.StateMegaHide) }},
		{name: "destroyed swallows reload", flags: entity.FlagItem, event: EventReload,
			setup: func(e *entity.Entity) { e.Show = entity.ShowDestroyed }},
		{name: "dead npc ignores hit", flags: entity.FlagNPC, event: EventHit,
			setup: func(e *entity.Entity) { e.Life = 0 }},
		{name: "dead npc still dies", flags: entity.FlagNPC, event: EventDie, want: "#die",
			setup: func(e *entity.Entity) { e.Life = 0 }},
		{name: "dead item is not an npc", flags: entity.FlagItem, event: EventHit, want: "#hit",
			setup: func(e *entity.Entity) { e.Life = 0 }},
		{name: "item break runs script too", flags: entity.FlagItem, event: EventBreak, want: "#break"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine()
			ent := entity.New("thing", tt.flags)
			if tt.setup != nil {
				tt.setup(ent)
			}

			assert.Equal(t, Accept, e.Send(Request{Script: New("gate", script), Event: tt.event, Entity: ent}))
			assert.Equal(t, 1, ent.StatCount)
			if tt.want == "" {
				assert.Zero(t, e.Globals.Len())
			} else {
				assert.Equal(t, 1.0, e.Globals.Number(tt.want))
			}
		})
	}
}

func TestSend_BreakHook(t *testing.T) {
	e, _ := newTestEngine()
	var broken []string
	e.OnBreak = func(ent *entity.Entity) { broken = append(broken, ent.Name) }
	s := New("break", "ON HIT { ACCEPT }")

	e.Send(Request{Script: s, Event: EventBreak, Entity: entity.New("sword", entity.FlagItem)})
	e.Send(Request{Script: s, Event: EventBreak, Entity: entity.New("door", entity.FlagFix)})
	e.Send(Request{Script: s, Event: EventBreak, Entity: entity.New("rat", entity.FlagNPC)})
	e.Send(Request{Script: s, Event: EventHit, Entity: entity.New("shield", entity.FlagItem)})

	assert.Equal(t, []string{"sword", "door"}, broken)
}

func TestSend_CommandEntityRequirement(t *testing.T) {
	logger := testLogger()
	table := NewCommandTable(logger)
	var ran int
	require.NoError(t, table.Register(NewCommand("npconly", entity.FlagNPC, func(ctx *Context) CommandResult {
		ran++
		return Continue
	})))
	require.NoError(t, table.Register(NewCommand("anyone", AnyEntity, func(ctx *Context) CommandResult {
		ran += 10
		return Continue
	})))
	e := NewEngine(NewStore(), table, logger)
	s := New("needs", "ON INIT {\n  NPCONLY ignored args\n  SET #after 1\n}\nON HIT {\n  ANYONE\n}")

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit, Entity: entity.New("box", entity.FlagItem)}))
	assert.Equal(t, 0, ran)
	assert.Equal(t, 1.0, e.Globals.Number("#after"), "execution continues on the next line")

	e.Send(Request{Script: s, Event: EventInit, Entity: entity.New("rat", entity.FlagNPC)})
	assert.Equal(t, 1, ran)

	e.Send(Request{Script: s, Event: EventHit})
	assert.Equal(t, 1, ran, "AnyEntity still needs an entity")

	e.Send(Request{Script: s, Event: EventHit, Entity: entity.New("box", entity.FlagItem)})
	assert.Equal(t, 11, ran)
}

func TestSend_CustomEventName(t *testing.T) {
	e, _ := newTestEngine()
	s := New("custom", "ON OPEN_DOOR {\n  SET $who ^$param1\n}")
	s.SetSuppressed(SuppressChat, true)

	res := e.Send(Request{Script: s, Event: EventChat, EventName: "open_door", Params: "player"})
	assert.Equal(t, Accept, res)
	assert.Equal(t, "player", e.Globals.Text("$who"))

	res, err := e.Dispatch(Request{Script: s, EventName: "close_door"})
	assert.Equal(t, Accept, res)
	assert.NoError(t, err)
}

func TestSend_ParamsAndInterpolation(t *testing.T) {
	e, _ := newTestEngine()
	s := New("params", `ON CUSTOM {
  SET #n ^#param1
  SET &f ^&param1
  SET $two ^$param2
  SET $msg "got ~#n~ and ~$two~"
}`)

	e.Send(Request{Script: s, Event: EventCustom, Params: `3.75 "two words"`})
	assert.Equal(t, 3.0, e.Globals.Number("#n"))
	assert.Equal(t, 3.75, e.Globals.Number("&f"))
	assert.Equal(t, "two words", e.Globals.Text("$two"))
	assert.Equal(t, "got 3 and two words", e.Globals.Text("$msg"))
}

func TestSend_Arithmetic(t *testing.T) {
	e, _ := newTestEngine()
	s := New("math", `ON INIT {
  SET #a 10
  DEC #a 3
  MUL #a 2
  DIV #a 4
  SET &b 1
  DIV &b 0
  SET &c 1.5
  MUL &c 3
  SET §l 2
  ++ §l
  ++ #a
  -- &c
  SET $s "text"
  INC $s 1
  INC ^life 1
  SET #last 1
}`)

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 4.0, e.Globals.Number("#a"), "(10-3)*2/4 truncated to 3, then ++")
	assert.Equal(t, 1.0, e.Globals.Number("&b"), "division by zero keeps the value")
	assert.Equal(t, 3.5, e.Globals.Number("&c"))
	assert.Equal(t, 3.0, s.Locals().Number("§l"))
	assert.Equal(t, "text", e.Globals.Text("$s"))
	assert.Equal(t, 1.0, e.Globals.Number("#last"), "failed arithmetic does not stop the script")
}

func TestSend_IncrementOnTextIsFatal(t *testing.T) {
	e, _ := newTestEngine()
	s := New("inc", "ON INIT {\n  ++ $s\n  SET #a 1\n}")

	assert.Equal(t, BigError, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, 0.0, e.Globals.Number("#a"))
}

func TestSend_SetAndUnset(t *testing.T) {
	e, _ := newTestEngine()
	s := New("set", `ON INIT {
  SET $copy $orig
  SET £loc "local"
  SET #num $numtext
  UNSET $orig
  UNSET £gone
  SET ^life 5
  SET plain 1
}`)
	require.NoError(t, e.Globals.SetText("$orig", "hello"))
	require.NoError(t, e.Globals.SetText("$numtext", "42abc"))
	require.NoError(t, s.Locals().SetText("£gone", "x"))

	assert.Equal(t, Accept, e.Send(Request{Script: s, Event: EventInit}))
	assert.Equal(t, "hello", e.Globals.Text("$copy"))
	assert.Equal(t, "local", s.Locals().Text("£loc"))
	assert.Equal(t, 42.0, e.Globals.Number("#num"))
	_, ok := e.Globals.Lookup("$orig")
	assert.False(t, ok)
	_, ok = s.Locals().Lookup("£gone")
	assert.False(t, ok)
}

func TestSend_Latin1Sigils(t *testing.T) {
	e, _ := newTestEngine()
	s := New("latin1", "ON INIT {\n  SET \xa7count 2\n  INC \xa7count 1\n  SET \xa3name \"bob\"\n}")

	e.Send(Request{Script: s, Event: EventInit})
	assert.Equal(t, 3.0, s.Locals().Number("§count"))
	assert.Equal(t, "bob", s.Locals().Text("£name"))
}

func TestSend_NilScript(t *testing.T) {
	e, _ := newTestEngine()
	assert.Equal(t, Accept, e.Send(Request{Event: EventInit}))
}

func TestSend_CountsEveryCall(t *testing.T) {
	e, _ := newTestEngine()
	start := TotalSent()

	e.Send(Request{Event: EventInit})
	e.Send(Request{Script: New("x", "ON INIT { ACCEPT }"), Event: EventInit})
	frozen := entity.New("f", entity.FlagNPC)
	frozen.Freeze()
	e.Send(Request{Script: New("x", ""), Event: EventHit, Entity: frozen})

	assert.Equal(t, start+3, TotalSent())
}

func TestCommandTable_Registration(t *testing.T) {
	table := NewCommandTable(testLogger())
	noop := func(*Context) CommandResult { return Continue }

	require.NoError(t, table.Register(NewCommand("hero_say", 0, noop)))
	err := table.Register(NewCommand("HEROSAY", 0, noop))
	assert.True(t, errors.Is(err, ErrDuplicateCommand))

	err = table.Register(NewCommand("if", 0, noop))
	assert.True(t, errors.Is(err, ErrDuplicateCommand), "built-ins share the table")

	require.NoError(t, table.RegisterPrefix(NewCommand("timer", 0, noop)))
	assert.True(t, errors.Is(table.RegisterPrefix(NewCommand("TIMER", 0, noop)), ErrDuplicateCommand))

	cmd, ok := table.Lookup("TIMERfoo")
	require.True(t, ok)
	assert.Equal(t, "timer", cmd.Name())

	cmd, ok = table.Lookup("He_Ro_Say")
	require.True(t, ok)
	assert.Equal(t, "hero_say", cmd.Name())

	cmd, ok = table.Lookup("}else")
	require.True(t, ok)
	assert.Equal(t, "}", cmd.Name())

	_, ok = table.Lookup("/")
	assert.False(t, ok)

	assert.Contains(t, table.Names(), "herosay")
}
