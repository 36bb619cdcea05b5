package script

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jwebster45206/scriptevent/pkg/entity"
)

// DefaultKeyPressGuard is how long KEY_PRESSED is refused after a
// cinematic starts.
const DefaultKeyPressGuard = 3 * time.Second

// MaxNesting bounds how deep events sent from inside scripts may nest.
const MaxNesting = 64

// Result is the outcome of a dispatch.
type Result int

const (
	Accept Result = iota
	Refuse
	BigError
)

func (r Result) String() string {
	switch r {
	case Accept:
		return "accept"
	case Refuse:
		return "refuse"
	case BigError:
		return "bigerror"
	}
	return "unknown"
}

// Targets resolves entity names used by scripts.
type Targets interface {
	Target(name string) (*entity.Entity, bool)
}

// Request describes one event delivery.
type Request struct {
	Script *Script
	Event  Event
	// Params is the raw parameter text, split like a shell command line
	// into ^$param1, ^$param2, ...
	Params string
	Entity *entity.Entity
	// EventName, when set, dispatches to "ON <EventName>" instead of Event.
	EventName string
	// Line is the start offset for EventExecuteLine.
	Line int
}

var totalSent atomic.Int64

// TotalSent returns the number of dispatches made by all engines.
func TotalSent() int64 {
	return totalSent.Load()
}

// Engine dispatches events to scripts. An Engine is not safe for concurrent
// use; confine it to one goroutine.
type Engine struct {
	Globals  *Store
	Commands *CommandTable

	// SystemVars is consulted before the built-in system variables.
	SystemVars Resolver
	Targets    Targets
	Logger     *slog.Logger

	// MaxSteps bounds the words executed per dispatch; 0 disables the guard.
	MaxSteps      int
	KeyPressGuard time.Duration
	// NoShortcuts locates every handler by scanning the text.
	NoShortcuts bool
	// OnBreak is called for BREAK on fixed objects and items.
	OnBreak func(*entity.Entity)
	Now     func() time.Time

	paused         bool
	nesting        int
	cinematicStart time.Time
	startedAt      time.Time
}

// NewEngine creates an engine over the given global store and command table.
func NewEngine(globals *Store, commands *CommandTable, logger *slog.Logger) *Engine {
	if globals == nil {
		globals = NewStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if commands == nil {
		commands = NewCommandTable(logger)
	}
	e := &Engine{
		Globals:       globals,
		Commands:      commands,
		Logger:        logger,
		KeyPressGuard: DefaultKeyPressGuard,
		Now:           time.Now,
	}
	e.ResetClock()
	return e
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// ResetClock restarts ^gametime from the engine clock's current time.
func (e *Engine) ResetClock() {
	e.startedAt = e.now()
}

// SetPaused holds back every event except LOAD, INIT and INITEND.
func (e *Engine) SetPaused(paused bool) {
	e.paused = paused
}

func (e *Engine) Paused() bool {
	return e.paused
}

// StartCinematic records the start of a cinematic for the KEY_PRESSED guard.
func (e *Engine) StartCinematic() {
	e.cinematicStart = e.now()
}
