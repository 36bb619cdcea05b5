package script

import (
	"log/slog"
	"os"
	"strings"

	"github.com/jwebster45206/scriptevent/pkg/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

// newTestEngine returns an engine with a HEROSAY command that records what
// was said.
func newTestEngine() (*Engine, *[]string) {
	logger := testLogger()
	table := NewCommandTable(logger)
	var said []string
	_ = table.Register(NewCommand("herosay", 0, func(ctx *Context) CommandResult {
		said = append(said, ctx.Word())
		return Continue
	}))
	return NewEngine(NewStore(), table, logger), &said
}

// mapTargets resolves entities by lowercase name.
type mapTargets map[string]*entity.Entity

func (m mapTargets) Target(name string) (*entity.Entity, bool) {
	e, ok := m[strings.ToLower(name)]
	return e, ok
}

func newContext(e *Engine, s *Script, ent *entity.Entity) *Context {
	return &Context{engine: e, script: s, entity: ent}
}
