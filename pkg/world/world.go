// Package world ties the interpreter to a set of scripted entities. A World
// owns the global variables, the entity arena, the engine with its game
// commands and the timer scheduler, and carries out command side effects.
package world

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jwebster45206/scriptevent/pkg/commands"
	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/storage"
	"github.com/jwebster45206/scriptevent/pkg/timer"
)

// ErrUnknownEntity is returned for events addressed to a missing entity.
var ErrUnknownEntity = errors.New("unknown entity")

// Options tunes a new world.
type Options struct {
	MaxSteps      int
	KeyPressGuard time.Duration
	Now           func() time.Time
}

// Line is one line of speech produced by HEROSAY.
type Line struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Localized bool   `json:"localized,omitempty"`
}

// World is a single-goroutine game state.
type World struct {
	ID      uuid.UUID
	Globals *script.Store
	Engine  *script.Engine
	Timers  *timer.Scheduler

	// OnSay, when set, receives each line as it is said.
	OnSay func(Line)

	arena   *entity.Arena
	scripts map[entity.Handle]*script.Script
	// templates holds master scripts by lowercased name. Their instances
	// share the master's locals and SETEVENT mask.
	templates map[string]*script.Script
	speech    []Line
	logger    *slog.Logger
}

var _ commands.Host = (*World)(nil)
var _ script.Targets = (*World)(nil)

// New creates an empty world with the game commands installed.
func New(opts Options, logger *slog.Logger) (*World, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &World{
		ID:        uuid.New(),
		Globals:   script.NewStore(),
		arena:     entity.NewArena(),
		scripts:   make(map[entity.Handle]*script.Script),
		templates: make(map[string]*script.Script),
		logger:    logger,
	}

	table := script.NewCommandTable(logger)
	w.Engine = script.NewEngine(w.Globals, table, logger)
	w.Engine.Targets = w
	w.Engine.MaxSteps = opts.MaxSteps
	w.Engine.OnBreak = w.onBreak
	if opts.KeyPressGuard > 0 {
		w.Engine.KeyPressGuard = opts.KeyPressGuard
	}

	w.Timers = timer.NewScheduler(w.Engine, logger)
	if opts.Now != nil {
		w.Engine.Now = opts.Now
		w.Timers.Now = opts.Now
		w.Engine.ResetClock()
	}

	if err := commands.Register(table, w, w.Timers); err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	return w, nil
}

// Spawn adds an entity running the given script text. Names are unique
// (case-insensitive).
func (w *World) Spawn(name string, flags entity.Flag, text string) (*entity.Entity, error) {
	ent, err := w.add(name, flags)
	if err != nil {
		return nil, err
	}
	w.scripts[ent.Handle()] = script.New(name, text)

	w.logger.Debug("Entity spawned", "entity", name, "flags", uint32(flags), "script_bytes", len(text))
	return ent, nil
}

// DefineTemplate registers a master script that instances can be spawned
// from. Redefining a template replaces its text but keeps its variables.
func (w *World) DefineTemplate(name, text string) *script.Script {
	key := strings.ToLower(name)
	if master, ok := w.templates[key]; ok {
		master.SetText(text)
		return master
	}
	master := script.New(name, text)
	w.templates[key] = master
	return master
}

// Template returns a master script by name.
func (w *World) Template(name string) (*script.Script, bool) {
	master, ok := w.templates[strings.ToLower(name)]
	return master, ok
}

// SpawnInstance adds an entity running an instance of the named template.
func (w *World) SpawnInstance(name string, flags entity.Flag, template string) (*entity.Entity, error) {
	master, ok := w.Template(template)
	if !ok {
		return nil, errors.Errorf("unknown template %q", template)
	}
	ent, err := w.add(name, flags)
	if err != nil {
		return nil, err
	}
	w.scripts[ent.Handle()] = script.NewInstance(name, master.Text(), master)

	w.logger.Debug("Entity spawned", "entity", name, "flags", uint32(flags), "template", master.Name)
	return ent, nil
}

func (w *World) add(name string, flags entity.Flag) (*entity.Entity, error) {
	if strings.EqualFold(name, storage.GlobalScope) || strings.HasPrefix(strings.ToLower(name), templateScopePrefix) {
		return nil, errors.Errorf("entity name %q is reserved", name)
	}
	if _, ok := w.lookup(name); ok {
		return nil, errors.Errorf("entity %q already exists", name)
	}
	ent := entity.New(name, flags)
	w.arena.Add(ent)
	return ent, nil
}

// Entity finds a live entity by name.
func (w *World) Entity(name string) (*entity.Entity, bool) {
	return w.lookup(name)
}

func (w *World) lookup(name string) (*entity.Entity, bool) {
	h, ok := w.arena.Lookup(name)
	if !ok {
		return nil, false
	}
	return w.arena.Resolve(h)
}

// Script returns the script an entity runs.
func (w *World) Script(ent *entity.Entity) (*script.Script, bool) {
	s, ok := w.scripts[ent.Handle()]
	return s, ok
}

// Entities calls fn for every live entity.
func (w *World) Entities(fn func(*entity.Entity)) {
	w.arena.Each(func(_ entity.Handle, e *entity.Entity) bool {
		fn(e)
		return true
	})
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.arena.Len()
}

// Send delivers ev to the named entity.
func (w *World) Send(name string, ev script.Event, params string) (script.Result, error) {
	return w.dispatch(name, script.Request{Event: ev, Params: params})
}

// SendNamed delivers the custom event "ON <event>" to the named entity.
func (w *World) SendNamed(name, event, params string) (script.Result, error) {
	return w.dispatch(name, script.Request{EventName: event, Params: params})
}

func (w *World) dispatch(name string, req script.Request) (script.Result, error) {
	ent, ok := w.lookup(name)
	if !ok {
		return script.Accept, errors.Wrapf(ErrUnknownEntity, "send to %q", name)
	}
	req.Entity = ent
	req.Script = w.scripts[ent.Handle()]
	return w.Engine.Dispatch(req)
}

// Broadcast delivers ev to every entity and returns the results by name.
func (w *World) Broadcast(ev script.Event) map[string]script.Result {
	var targets []*entity.Entity
	w.Entities(func(e *entity.Entity) { targets = append(targets, e) })

	results := make(map[string]script.Result, len(targets))
	for _, ent := range targets {
		s, ok := w.scripts[ent.Handle()]
		if !ok {
			continue
		}
		results[ent.Name] = w.Engine.Send(script.Request{Script: s, Event: ev, Entity: ent})
	}
	return results
}

// Init starts the game: every entity gets INIT, then INITEND.
func (w *World) Init() {
	w.Broadcast(script.EventInit)
	w.Broadcast(script.EventInitEnd)
}

// SetPaused holds back gameplay events until it is called with false.
// LOAD, INIT and INITEND still run.
func (w *World) SetPaused(paused bool) {
	if w.Engine.Paused() == paused {
		return
	}
	w.Engine.SetPaused(paused)
	w.logger.Info("World pause changed", "world_id", w.ID.String(), "paused", paused)
}

// Tick fires due timers.
func (w *World) Tick(now time.Time) int {
	return w.Timers.Tick(now)
}

// Reset clears every variable and timer, as when starting a new game.
func (w *World) Reset() {
	w.clearVars()
	w.Timers.StopAll()
	w.speech = nil
	w.logger.Info("World reset", "world_id", w.ID.String())
}

func (w *World) clearVars() {
	w.Globals.Clear()
	for _, s := range w.scripts {
		s.Locals().Clear()
	}
	for _, master := range w.templates {
		master.Locals().Clear()
	}
}

// Speech returns the lines said so far.
func (w *World) Speech() []Line {
	return append([]Line(nil), w.speech...)
}

// Target resolves entity names for scripts.
func (w *World) Target(name string) (*entity.Entity, bool) {
	return w.lookup(name)
}

// Say records a HEROSAY line.
func (w *World) Say(speaker *entity.Entity, text string, localized bool) {
	line := Line{Text: text, Localized: localized}
	if speaker != nil {
		line.Speaker = speaker.Name
	}
	w.speech = append(w.speech, line)
	if w.OnSay != nil {
		w.OnSay(line)
	}
}

// Kill marks the entity killed and tells its script it died. Killing an
// entity that is already dead does nothing, so DIE is sent at most once.
func (w *World) Kill(ent *entity.Entity) {
	if ent.Show == entity.ShowKilled {
		w.logger.Debug("Entity already killed", "entity", ent.Name)
		return
	}
	ent.Life = 0
	ent.Show = entity.ShowKilled
	w.logger.Debug("Entity killed", "entity", ent.Name)
	if s, ok := w.scripts[ent.Handle()]; ok {
		w.Engine.Send(script.Request{Script: s, Event: script.EventDie, Entity: ent})
	}
}

// Destroy removes the entity from the world and stops its timers.
func (w *World) Destroy(ent *entity.Entity) {
	h := ent.Handle()
	ent.Show = entity.ShowDestroyed
	if s, ok := w.scripts[h]; ok {
		w.Timers.StopOwner(ent, s)
		delete(w.scripts, h)
	}
	w.arena.Remove(h)
	w.logger.Debug("Entity destroyed", "entity", ent.Name)
}

// SendEvent delivers a SENDEVENT request.
func (w *World) SendEvent(target string, req script.Request) (script.Result, bool) {
	ent, ok := w.lookup(target)
	if !ok {
		return script.Accept, false
	}
	req.Entity = ent
	req.Script = w.scripts[ent.Handle()]
	return w.Engine.Send(req), true
}

func (w *World) onBreak(ent *entity.Entity) {
	ent.Set(entity.StateNoDraw)
	w.logger.Debug("Entity broken", "entity", ent.Name)
}
