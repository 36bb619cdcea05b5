package script

import "strings"

// Script is a loaded script buffer with its cached event offsets.
//
// An instance script may point at a master script it was derived from. The
// master holds the locals and the event suppression mask shared by its
// instances; the instance never owns it.
type Script struct {
	Name string

	text      string
	lower     string
	shortcuts [eventCount]int

	master     *Script
	locals     *Store
	suppressed Suppress
}

// New loads text and computes its shortcuts.
func New(name, text string) *Script {
	s := &Script{Name: name, locals: NewStore()}
	s.SetText(text)
	return s
}

// NewInstance creates a script whose variables live on master.
func NewInstance(name, text string, master *Script) *Script {
	s := New(name, text)
	s.master = master
	return s
}

// Text returns the script buffer.
func (s *Script) Text() string {
	return s.text
}

// Len returns the buffer size in bytes.
func (s *Script) Len() int {
	return len(s.text)
}

// SetText replaces the buffer and recomputes every shortcut.
func (s *Script) SetText(text string) {
	s.text = text
	s.lower = asciiLower(text)
	s.ComputeShortcuts()
}

// Master returns the script holding this script's variables, or nil.
func (s *Script) Master() *Script {
	return s.master
}

// holder returns the script whose locals and mask apply to s.
func (s *Script) holder() *Script {
	if s.master != nil {
		return s.master
	}
	return s
}

// Locals returns the local variable store in effect for s.
func (s *Script) Locals() *Store {
	return s.holder().locals
}

// ComputeShortcuts records, for each event, the offset of its handler or -1.
// A handler whose body starts with ACCEPT is recorded as -1 as well, since
// it behaves exactly like a missing one.
func (s *Script) ComputeShortcuts() {
	s.shortcuts[EventNull] = -1
	for _, ev := range Events() {
		s.shortcuts[ev] = s.locate(ev)
	}
}

func (s *Script) locate(ev Event) int {
	name := ev.Handler()
	pos := find(s.text, s.lower, name)
	if pos < 0 {
		return -1
	}
	if s.passThrough(pos + len(name)) {
		return -1
	}
	return pos
}

// passThrough reports whether the block at pos is "{ ACCEPT", ignoring
// comment lines in between.
func (s *Script) passThrough(pos int) bool {
	tok, next := scan(s.text, pos)
	if tok.text != "{" {
		return false
	}
	for {
		tok, next = scan(s.text, next)
		if tok.quoted || !strings.HasPrefix(tok.text, "//") {
			break
		}
		next = nextLine(s.text, next)
	}
	return !tok.quoted && strings.EqualFold(tok.text, "ACCEPT")
}

// Shortcut returns the cached handler offset for ev, or -1.
func (s *Script) Shortcut(ev Event) int {
	if !ev.Known() {
		return -1
	}
	return s.shortcuts[ev]
}

// Find locates needle in the script the way handlers are located.
func (s *Script) Find(needle string) int {
	return find(s.text, s.lower, needle)
}

// EventEnabled reports whether ev is delivered to this script.
func (s *Script) EventEnabled(ev Event) bool {
	m := suppression(ev)
	return m == 0 || s.holder().suppressed&m == 0
}

// SetSuppressed switches the events covered by m off (true) or on.
func (s *Script) SetSuppressed(m Suppress, off bool) {
	h := s.holder()
	if off {
		h.suppressed |= m
	} else {
		h.suppressed &^= m
	}
}
