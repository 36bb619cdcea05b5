package entity

import "strings"

// Handle is an opaque reference to an entity in an Arena. The zero Handle
// never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was ever issued by an arena.
func (h Handle) Valid() bool {
	return h.gen != 0
}

type slot struct {
	entity *Entity
	gen    uint32
}

// Arena owns entities and hands out generation-checked handles. A handle
// to a removed entity stops resolving even after its slot is reused.
type Arena struct {
	slots []slot
	free  []uint32
}

func NewArena() *Arena {
	return &Arena{}
}

// Add stores e and returns its handle.
func (a *Arena) Add(e *Entity) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{gen: 1})
	}
	a.slots[idx].entity = e
	h := Handle{index: idx, gen: a.slots[idx].gen}
	e.handle = h
	return h
}

// Resolve returns the entity behind h, if it is still alive.
func (a *Arena) Resolve(h Handle) (*Entity, bool) {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.index]
	if s.entity == nil || s.gen != h.gen {
		return nil, false
	}
	return s.entity, true
}

// Remove releases h. It returns false if h was already stale.
func (a *Arena) Remove(h Handle) bool {
	if _, ok := a.Resolve(h); !ok {
		return false
	}
	s := &a.slots[h.index]
	s.entity = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, h.index)
	return true
}

// Lookup finds a live entity by name, case-insensitively.
func (a *Arena) Lookup(name string) (Handle, bool) {
	for i, s := range a.slots {
		if s.entity != nil && strings.EqualFold(s.entity.Name, name) {
			return Handle{index: uint32(i), gen: s.gen}, true
		}
	}
	return Handle{}, false
}

// Each calls fn for every live entity until fn returns false.
func (a *Arena) Each(fn func(Handle, *Entity) bool) {
	for i, s := range a.slots {
		if s.entity == nil {
			continue
		}
		if !fn(Handle{index: uint32(i), gen: s.gen}, s.entity) {
			return
		}
	}
}

// Len returns the number of live entities.
func (a *Arena) Len() int {
	return len(a.slots) - len(a.free)
}
