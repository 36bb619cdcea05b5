package timer

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/script"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type fixture struct {
	engine *script.Engine
	sched  *Scheduler
	script *script.Script
	now    time.Time
}

const timerScript = "ON INIT {\n}\nINC #a 1\nINC #b 1\n"

func newFixture() *fixture {
	logger := testLogger()
	f := &fixture{
		engine: script.NewEngine(nil, nil, logger),
		script: script.New("timers", timerScript),
		now:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.sched = NewScheduler(f.engine, logger)
	f.sched.Now = func() time.Time { return f.now }
	return f
}

func (f *fixture) line(stmt string) int {
	return strings.Index(timerScript, stmt)
}

func (f *fixture) advance(d time.Duration) int {
	f.now = f.now.Add(d)
	return f.sched.Tick(f.now)
}

func TestScheduler_RunsStatementCountTimes(t *testing.T) {
	f := newFixture()
	f.sched.Start(Timer{Name: "Tick", Script: f.script, Line: f.line("INC #a"), Interval: time.Second, Count: 3})

	assert.Equal(t, 0, f.advance(500*time.Millisecond))
	for i := 1; i <= 3; i++ {
		assert.Equal(t, 1, f.advance(time.Second))
		assert.Equal(t, float64(i), f.engine.Globals.Number("#a"))
	}
	assert.Equal(t, 0, f.advance(time.Second))
	assert.Equal(t, 3.0, f.engine.Globals.Number("#a"))
	assert.Equal(t, 0.0, f.engine.Globals.Number("#b"), "only one line runs")
	assert.Zero(t, f.sched.Len())
}

func TestScheduler_ZeroCountRepeats(t *testing.T) {
	f := newFixture()
	f.sched.Start(Timer{Name: "forever", Script: f.script, Line: f.line("INC #b"), Interval: time.Second})

	for range 10 {
		f.advance(time.Second)
	}
	assert.Equal(t, 10.0, f.engine.Globals.Number("#b"))
	assert.Equal(t, 1, f.sched.Len())
}

func TestScheduler_OncePerTick(t *testing.T) {
	f := newFixture()
	f.sched.Start(Timer{Name: "slow", Script: f.script, Line: f.line("INC #a"), Interval: time.Second})

	assert.Equal(t, 1, f.advance(5*time.Second))
	assert.Equal(t, 1.0, f.engine.Globals.Number("#a"))

	next, ok := f.sched.Next()
	require.True(t, ok)
	assert.Equal(t, f.now.Add(time.Second), next)
}

func TestScheduler_RestartReplacesTimer(t *testing.T) {
	f := newFixture()
	owner := entity.New("guard", entity.FlagNPC)

	f.sched.Start(Timer{Name: "patrol", Owner: owner, Script: f.script, Line: f.line("INC #a"), Interval: time.Second})
	f.sched.Start(Timer{Name: "PATROL", Owner: owner, Script: f.script, Line: f.line("INC #b"), Interval: time.Second})
	assert.Equal(t, 1, f.sched.Len())

	f.advance(time.Second)
	assert.Equal(t, 0.0, f.engine.Globals.Number("#a"))
	assert.Equal(t, 1.0, f.engine.Globals.Number("#b"))
}

func TestScheduler_Stop(t *testing.T) {
	f := newFixture()
	guard := entity.New("guard", entity.FlagNPC)
	rat := entity.New("rat", entity.FlagNPC)

	f.sched.Start(Timer{Name: "a", Owner: guard, Script: f.script, Line: f.line("INC #a"), Interval: time.Second})
	f.sched.Start(Timer{Name: "b", Owner: guard, Script: f.script, Line: f.line("INC #a"), Interval: time.Second})
	f.sched.Start(Timer{Name: "a", Owner: rat, Script: f.script, Line: f.line("INC #b"), Interval: time.Second})
	require.Equal(t, 3, f.sched.Len())

	assert.True(t, f.sched.Stop(guard, f.script, "A"))
	assert.False(t, f.sched.Stop(guard, f.script, "a"))
	assert.Equal(t, 1, f.sched.StopOwner(guard, f.script))
	assert.Equal(t, 1, f.sched.Len())

	f.advance(time.Second)
	assert.Equal(t, 0.0, f.engine.Globals.Number("#a"))
	assert.Equal(t, 1.0, f.engine.Globals.Number("#b"))

	f.sched.StopAll()
	assert.Zero(t, f.sched.Len())
	_, ok := f.sched.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, f.advance(time.Second))
}

func TestScheduler_GeneratedNames(t *testing.T) {
	f := newFixture()
	first := f.sched.Start(Timer{Script: f.script, Interval: time.Second})
	second := f.sched.Start(Timer{Script: f.script, Interval: time.Second})

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "timer_"))
	assert.Equal(t, 2, f.sched.Len())
}

func TestScheduler_FrozenOwnerIsSkipped(t *testing.T) {
	f := newFixture()
	owner := entity.New("guard", entity.FlagNPC)
	owner.Freeze()

	f.sched.Start(Timer{Name: "t", Owner: owner, Script: f.script, Line: f.line("INC #a"), Interval: time.Second, Count: 1})
	assert.Equal(t, 1, f.advance(time.Second))
	assert.Equal(t, 0.0, f.engine.Globals.Number("#a"))
}

func TestHeap_Order(t *testing.T) {
	h := newHeap(func(a, b int) bool { return a < b })
	for _, v := range []int{5, 3, 8, 1, 9, 2, 7} {
		h.Push(v)
	}
	require.Equal(t, 7, h.Len())

	top, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, top)

	var got []int
	for h.Len() > 0 {
		v, _ := h.Pop()
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3, 5, 7, 8, 9}, got)

	_, ok = h.Pop()
	assert.False(t, ok)
}
