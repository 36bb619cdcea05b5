package entity

import "strings"

// Flag describes what kind of object an entity is.
type Flag uint32

const (
	FlagNPC Flag = 1 << iota
	FlagItem
	FlagFix
	FlagCamera
	FlagMarker
)

// State holds the gameplay switches that affect script delivery.
type State uint32

const (
	StateFreezeScript State = 1 << iota
	StateInvulnerable
	StateMegaHide
	StateNoDraw
)

// Show is the visibility lifecycle of an entity.
type Show int

const (
	ShowInScene Show = iota
	ShowHidden
	ShowInInventory
	ShowKilled
	ShowDestroyed
)

// Vec3 is a world position.
type Vec3 struct {
	X, Y, Z float64
}

// Entity is a scriptable game object.
type Entity struct {
	Name      string
	Flags     Flag
	State     State
	Show      Show
	Life      float64
	TypeFlags TypeFlag
	Pos       Vec3
	Count     int

	// StatCount counts the events that reached this entity's gate.
	StatCount int

	groups map[string]struct{}
	handle Handle
}

// New creates an entity with the given internal name and kind.
func New(name string, flags Flag) *Entity {
	return &Entity{
		Name:   name,
		Flags:  flags,
		Life:   1,
		Count:  1,
		groups: make(map[string]struct{}),
	}
}

// Handle returns the arena handle assigned when the entity was added.
func (e *Entity) Handle() Handle {
	return e.handle
}

// Is reports whether the entity has any of the given kind flags.
func (e *Entity) Is(f Flag) bool {
	return e.Flags&f != 0
}

// Has reports whether all of the given state flags are set.
func (e *Entity) Has(s State) bool {
	return e.State&s == s
}

func (e *Entity) Set(s State) {
	e.State |= s
}

func (e *Entity) Clear(s State) {
	e.State &^= s
}

// Frozen reports whether scripts on this entity have been quarantined.
func (e *Entity) Frozen() bool {
	return e.Has(StateFreezeScript)
}

// Freeze quarantines the entity's script.
func (e *Entity) Freeze() {
	e.Set(StateFreezeScript)
}

// Destroyed reports whether the entity was removed from play.
func (e *Entity) Destroyed() bool {
	return e.Show == ShowDestroyed
}

// Dead reports whether the entity is an NPC with no life left.
func (e *Entity) Dead() bool {
	return e.Is(FlagNPC) && e.Life <= 0
}

// AddGroup adds the entity to a named group. Group names are case-insensitive.
func (e *Entity) AddGroup(name string) {
	if e.groups == nil {
		e.groups = make(map[string]struct{})
	}
	e.groups[strings.ToLower(name)] = struct{}{}
}

func (e *Entity) RemoveGroup(name string) {
	delete(e.groups, strings.ToLower(name))
}

// InGroup reports whether the entity belongs to the named group.
func (e *Entity) InGroup(name string) bool {
	_, ok := e.groups[strings.ToLower(name)]
	return ok
}

// Groups returns the entity's group names.
func (e *Entity) Groups() []string {
	out := make([]string, 0, len(e.groups))
	for g := range e.groups {
		out = append(out, g)
	}
	return out
}
