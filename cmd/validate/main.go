package main

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rodaine/table"

	"github.com/jwebster45206/scriptevent/internal/storage"
	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <script.asl|dir|manifest.yaml>...\n", os.Args[0])
		os.Exit(1)
	}

	validator, err := NewScriptValidator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	for _, arg := range os.Args[1:] {
		if err := validator.Add(arg); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
	}

	validator.Print(os.Stdout)
	if validator.Errors() > 0 {
		os.Exit(1)
	}
	fmt.Println("Scripts are valid!")
}

type finding struct {
	file string
	script.Issue
}

// ScriptValidator lints script files against the game's command table and
// checks that manifests name scripts that exist.
type ScriptValidator struct {
	table    *script.CommandTable
	findings []finding
	files    int
}

func NewScriptValidator() (*ScriptValidator, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := world.New(world.Options{}, quiet)
	if err != nil {
		return nil, err
	}
	return &ScriptValidator{table: w.Engine.Commands}, nil
}

// Add validates a script file, every script under a directory, or a world
// manifest.
func (v *ScriptValidator) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(p) != storage.ScriptExt {
				return nil
			}
			return v.validateScript(p)
		})
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return v.validateManifest(path)
	case storage.ScriptExt:
		return v.validateScript(path)
	}
	return fmt.Errorf("%s is neither a script (%s) nor a manifest (.yaml)", path, storage.ScriptExt)
}

func (v *ScriptValidator) validateScript(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	v.files++
	for _, issue := range script.Lint(string(data), v.table) {
		v.findings = append(v.findings, finding{file: path, Issue: issue})
	}
	return nil
}

// validateManifest lints every script a manifest refers to. Scripts are
// looked up under <manifest dir>/scripts.
func (v *ScriptValidator) validateManifest(path string) error {
	m, err := world.LoadManifest(path)
	if err != nil {
		v.findings = append(v.findings, finding{file: path, Issue: script.Issue{Line: 0, Severity: script.Error, Message: err.Error()}})
		return nil
	}
	v.files++

	dir := filepath.Join(filepath.Dir(path), "scripts")
	seen := make(map[string]bool)
	for _, spec := range m.Entities {
		name := spec.Script
		if name == "" {
			name = spec.Template
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		p := filepath.Join(dir, strings.TrimSuffix(name, storage.ScriptExt)+storage.ScriptExt)
		if _, err := os.Stat(p); err != nil {
			v.findings = append(v.findings, finding{file: path, Issue: script.Issue{
				Severity: script.Error,
				Message:  fmt.Sprintf("entity %s: script %q not found", spec.Name, name),
			}})
			continue
		}
		if err := v.validateScript(p); err != nil {
			return err
		}
	}
	return nil
}

// Errors counts error-level findings.
func (v *ScriptValidator) Errors() int {
	n := 0
	for _, f := range v.findings {
		if f.Severity == script.Error {
			n++
		}
	}
	return n
}

func (v *ScriptValidator) Print(out io.Writer) {
	if len(v.findings) > 0 {
		t := table.New("File", "Line", "Severity", "Message").WithWriter(out)
		for _, f := range v.findings {
			t.AddRow(f.file, f.Line, f.Severity.String(), f.Message)
		}
		t.Print()
	}
	fmt.Fprintf(out, "%s files checked, %s errors, %s warnings\n",
		humanize.Comma(int64(v.files)),
		humanize.Comma(int64(v.Errors())),
		humanize.Comma(int64(len(v.findings)-v.Errors())))
}
