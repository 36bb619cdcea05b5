package script

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Namespace is the store partition selected by a variable's sigil.
type Namespace int

const (
	NamespaceNone Namespace = iota
	GlobalLong              // #
	GlobalFloat             // &
	GlobalText              // $
	LocalLong               // §
	LocalFloat              // @
	LocalText               // £
	SystemVar               // ^
)

func (n Namespace) String() string {
	switch n {
	case GlobalLong:
		return "global-long"
	case GlobalFloat:
		return "global-float"
	case GlobalText:
		return "global-text"
	case LocalLong:
		return "local-long"
	case LocalFloat:
		return "local-float"
	case LocalText:
		return "local-text"
	case SystemVar:
		return "system"
	}
	return "none"
}

// Global reports whether the namespace lives in the world-wide store.
func (n Namespace) Global() bool {
	return n == GlobalLong || n == GlobalFloat || n == GlobalText
}

// Local reports whether the namespace lives in a script's own store.
func (n Namespace) Local() bool {
	return n == LocalLong || n == LocalFloat || n == LocalText
}

// Text reports whether values in the namespace are strings.
func (n Namespace) Text() bool {
	return n == GlobalText || n == LocalText
}

// Numeric reports whether values in the namespace are numbers.
func (n Namespace) Numeric() bool {
	return n == GlobalLong || n == GlobalFloat || n == LocalLong || n == LocalFloat
}

// Integer reports whether stored numbers are truncated toward zero.
func (n Namespace) Integer() bool {
	return n == GlobalLong || n == LocalLong
}

const (
	sigilLocalLong = "§"
	sigilLocalText = "£"
)

// NamespaceOf classifies a variable name by its sigil. The local sigils are
// accepted both as UTF-8 and as single Latin-1 bytes.
func NamespaceOf(name string) Namespace {
	n, _ := splitSigil(name)
	return n
}

// splitSigil returns the namespace and the name without its sigil.
func splitSigil(name string) (Namespace, string) {
	if name == "" {
		return NamespaceNone, ""
	}
	switch name[0] {
	case '#':
		return GlobalLong, name[1:]
	case '&':
		return GlobalFloat, name[1:]
	case '$':
		return GlobalText, name[1:]
	case '@':
		return LocalFloat, name[1:]
	case '^':
		return SystemVar, name[1:]
	case 0xA7:
		return LocalLong, name[1:]
	case 0xA3:
		return LocalText, name[1:]
	}
	switch {
	case strings.HasPrefix(name, sigilLocalLong):
		return LocalLong, name[len(sigilLocalLong):]
	case strings.HasPrefix(name, sigilLocalText):
		return LocalText, name[len(sigilLocalText):]
	}
	return NamespaceNone, name
}

var canonicalSigil = map[Namespace]string{
	GlobalLong:  "#",
	GlobalFloat: "&",
	GlobalText:  "$",
	LocalLong:   sigilLocalLong,
	LocalFloat:  "@",
	LocalText:   sigilLocalText,
	SystemVar:   "^",
}

// key is the store identity of a name: canonical sigil plus the
// case-folded rest.
func key(name string) (Namespace, string) {
	ns, rest := splitSigil(name)
	if ns == NamespaceNone {
		return ns, ""
	}
	return ns, canonicalSigil[ns] + asciiLower(rest)
}

// Var is one stored binding.
type Var struct {
	Name      string    `json:"name"`
	Namespace Namespace `json:"namespace"`
	Number    float64   `json:"number,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// Store maps variable names to values. Names are case-insensitive and keep
// their sigil, so "#x" and "&x" never collide. A Store is not safe for
// concurrent use.
type Store struct {
	vars map[string]*Var
}

func NewStore() *Store {
	return &Store{vars: make(map[string]*Var)}
}

// Number returns the value of a numeric variable, or 0 when unset.
func (s *Store) Number(name string) float64 {
	_, k := key(name)
	if v, ok := s.vars[k]; ok {
		return v.Number
	}
	return 0
}

// Text returns the value of a text variable, or "" when unset.
func (s *Store) Text(name string) string {
	_, k := key(name)
	if v, ok := s.vars[k]; ok {
		return v.Text
	}
	return ""
}

// Lookup returns the binding for name.
func (s *Store) Lookup(name string) (Var, bool) {
	_, k := key(name)
	v, ok := s.vars[k]
	if !ok {
		return Var{}, false
	}
	return *v, true
}

// SetNumber creates or overwrites a numeric variable. Integer namespaces
// truncate the value.
func (s *Store) SetNumber(name string, value float64) error {
	ns, k := key(name)
	switch {
	case ns == SystemVar:
		return errors.Wrapf(ErrReadOnly, "set %q", name)
	case ns == NamespaceNone:
		return errors.Wrapf(ErrNoNamespace, "set %q", name)
	case !ns.Numeric():
		return errors.Wrapf(ErrTypeMismatch, "set number on %s variable %q", ns, name)
	}
	if ns.Integer() {
		value = math.Trunc(value)
	}
	s.bind(k, name, ns).Number = value
	return nil
}

// SetText creates or overwrites a text variable.
func (s *Store) SetText(name, value string) error {
	ns, k := key(name)
	switch {
	case ns == SystemVar:
		return errors.Wrapf(ErrReadOnly, "set %q", name)
	case ns == NamespaceNone:
		return errors.Wrapf(ErrNoNamespace, "set %q", name)
	case !ns.Text():
		return errors.Wrapf(ErrTypeMismatch, "set text on %s variable %q", ns, name)
	}
	s.bind(k, name, ns).Text = value
	return nil
}

// bind returns the binding for k, creating it under name with the sigil
// normalized to UTF-8.
func (s *Store) bind(k, name string, ns Namespace) *Var {
	v, ok := s.vars[k]
	if !ok {
		_, rest := splitSigil(name)
		v = &Var{Name: canonicalSigil[ns] + rest, Namespace: ns}
		s.vars[k] = v
	}
	return v
}

// Unset removes a binding. It returns false if there was none.
func (s *Store) Unset(name string) bool {
	_, k := key(name)
	if _, ok := s.vars[k]; !ok {
		return false
	}
	delete(s.vars, k)
	return true
}

// Len returns the number of bindings.
func (s *Store) Len() int {
	return len(s.vars)
}

// Clear drops every binding.
func (s *Store) Clear() {
	clear(s.vars)
}

// Vars returns a copy of all bindings ordered by name.
func (s *Store) Vars() []Var {
	out := make([]Var, 0, len(s.vars))
	for _, v := range s.vars {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Load replaces the store's contents with vars.
func (s *Store) Load(vars []Var) error {
	s.Clear()
	for _, v := range vars {
		var err error
		if NamespaceOf(v.Name).Text() {
			err = s.SetText(v.Name, v.Text)
		} else {
			err = s.SetNumber(v.Name, v.Number)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Scope routes names to the global store or a script's locals by sigil.
type Scope struct {
	Globals *Store
	Locals  *Store
}

func (sc Scope) store(name string) *Store {
	if NamespaceOf(name).Global() {
		return sc.Globals
	}
	return sc.Locals
}

func (sc Scope) Number(name string) float64 {
	return sc.store(name).Number(name)
}

func (sc Scope) Text(name string) string {
	return sc.store(name).Text(name)
}

func (sc Scope) SetNumber(name string, value float64) error {
	return sc.store(name).SetNumber(name, value)
}

func (sc Scope) SetText(name, value string) error {
	return sc.store(name).SetText(name, value)
}

func (sc Scope) Unset(name string) bool {
	return sc.store(name).Unset(name)
}
