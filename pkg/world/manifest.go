package world

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/script"
)

// Manifest describes the entities of a world and its starting globals.
type Manifest struct {
	Name     string            `yaml:"name"`
	Entities []EntitySpec      `yaml:"entities"`
	Globals  map[string]string `yaml:"globals"`
}

// EntitySpec is one entity in a manifest.
type EntitySpec struct {
	Name string `yaml:"name"`
	// Kind is npc, item, fix, camera or marker.
	Kind   string `yaml:"kind"`
	Script string `yaml:"script"`
	// Template names a shared master script. Entities with the same
	// template share its locals and event switches.
	Template string     `yaml:"template,omitempty"`
	Life     *float64   `yaml:"life,omitempty"`
	Groups   []string   `yaml:"groups,omitempty"`
	Types    []string   `yaml:"types,omitempty"`
	Pos      [3]float64 `yaml:"pos,omitempty"`
}

// ScriptSource loads script text by name.
type ScriptSource interface {
	Load(name string) (string, error)
}

var kinds = map[string]entity.Flag{
	"npc":    entity.FlagNPC,
	"item":   entity.FlagItem,
	"fix":    entity.FlagFix,
	"camera": entity.FlagCamera,
	"marker": entity.FlagMarker,
}

// ParseKind maps a kind name (npc, item, fix, camera, marker) to its flag.
func ParseKind(name string) (entity.Flag, bool) {
	f, ok := kinds[strings.ToLower(name)]
	return f, ok
}

// Kinds returns the kind names ParseKind accepts, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	seen := make(map[string]bool, len(m.Entities))
	for i, spec := range m.Entities {
		if spec.Name == "" {
			return nil, fmt.Errorf("entity %d has no name", i)
		}
		key := strings.ToLower(spec.Name)
		if seen[key] {
			return nil, fmt.Errorf("entity %q is listed twice", spec.Name)
		}
		seen[key] = true
		if _, ok := ParseKind(spec.Kind); !ok {
			return nil, fmt.Errorf("entity %q has unknown kind %q", spec.Name, spec.Kind)
		}
		if spec.Script != "" && spec.Template != "" {
			return nil, fmt.Errorf("entity %q sets both script and template", spec.Name)
		}
	}
	return &m, nil
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// Populate spawns the manifest's entities with scripts from src and sets
// its globals.
func (w *World) Populate(m *Manifest, src ScriptSource) error {
	for name, value := range m.Globals {
		if err := setGlobal(w.Globals, name, value); err != nil {
			return fmt.Errorf("failed to set global %s: %w", name, err)
		}
	}

	for _, spec := range m.Entities {
		flags, _ := ParseKind(spec.Kind)
		var (
			ent *entity.Entity
			err error
		)
		switch {
		case spec.Template != "":
			if _, ok := w.Template(spec.Template); !ok {
				text, err := src.Load(spec.Template)
				if err != nil {
					return fmt.Errorf("failed to load template for %s: %w", spec.Name, err)
				}
				w.DefineTemplate(spec.Template, text)
			}
			ent, err = w.SpawnInstance(spec.Name, flags, spec.Template)
		default:
			var text string
			if spec.Script != "" {
				if text, err = src.Load(spec.Script); err != nil {
					return fmt.Errorf("failed to load script for %s: %w", spec.Name, err)
				}
			}
			ent, err = w.Spawn(spec.Name, flags, text)
		}
		if err != nil {
			return err
		}
		if spec.Life != nil {
			ent.Life = *spec.Life
		}
		for _, g := range spec.Groups {
			ent.AddGroup(g)
		}
		ent.TypeFlags = entity.ParseTypeFlags(spec.Types...)
		ent.Pos = entity.Vec3{X: spec.Pos[0], Y: spec.Pos[1], Z: spec.Pos[2]}
	}

	w.logger.Info("World populated", "world", m.Name, "entities", len(m.Entities), "globals", len(m.Globals))
	return nil
}

func setGlobal(st *script.Store, name, value string) error {
	ns := script.NamespaceOf(name)
	if !ns.Global() {
		return fmt.Errorf("%s is not a global variable", name)
	}
	if ns.Text() {
		return st.SetText(name, value)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", value)
	}
	return st.SetNumber(name, v)
}
