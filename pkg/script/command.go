package script

import (
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/jwebster45206/scriptevent/pkg/entity"
)

// CommandResult tells the dispatcher how to continue after a command.
type CommandResult int

const (
	Continue CommandResult = iota
	Failed
	Jumped
	AbortAccept
	AbortRefuse
	AbortError
)

func (r CommandResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Failed:
		return "failed"
	case Jumped:
		return "jumped"
	case AbortAccept:
		return "abort-accept"
	case AbortRefuse:
		return "abort-refuse"
	case AbortError:
		return "abort-error"
	}
	return "unknown"
}

// AnyEntity as a command's flags requires an entity of any kind.
const AnyEntity = ^entity.Flag(0)

// Command is a verb the dispatcher can run. Execute consumes its own
// arguments from the context.
type Command interface {
	Name() string
	// Flags lists the entity kinds the command needs; 0 needs none.
	Flags() entity.Flag
	Execute(ctx *Context) CommandResult
}

type funcCommand struct {
	name  string
	flags entity.Flag
	fn    func(*Context) CommandResult
}

func (f funcCommand) Name() string                       { return f.name }
func (f funcCommand) Flags() entity.Flag                 { return f.flags }
func (f funcCommand) Execute(ctx *Context) CommandResult { return f.fn(ctx) }

// NewCommand adapts a function to the Command interface.
func NewCommand(name string, flags entity.Flag, fn func(*Context) CommandResult) Command {
	return funcCommand{name: name, flags: flags, fn: fn}
}

// CommandTable maps standardized words to commands. Words are matched with
// underscores removed and case folded. Prefix commands match any word that
// starts with their name and are tried after exact names.
type CommandTable struct {
	exact    map[string]Command
	prefixes []prefixCommand
	logger   *slog.Logger
}

type prefixCommand struct {
	prefix string
	cmd    Command
}

// NewCommandTable returns a table holding the interpreter keywords.
func NewCommandTable(logger *slog.Logger) *CommandTable {
	if logger == nil {
		logger = slog.Default()
	}
	t := &CommandTable{
		exact:  make(map[string]Command),
		logger: logger,
	}
	registerBuiltins(t)
	return t
}

// Register adds cmd under its name. A second command with the same name is
// discarded and reported.
func (t *CommandTable) Register(cmd Command) error {
	name := standardize(cmd.Name())
	if _, exists := t.exact[name]; exists {
		t.logger.Error("Duplicate command registration", "command", cmd.Name())
		return errors.Wrapf(ErrDuplicateCommand, "register %q", cmd.Name())
	}
	t.exact[name] = cmd
	return nil
}

// RegisterPrefix adds cmd as a prefix command.
func (t *CommandTable) RegisterPrefix(cmd Command) error {
	prefix := standardize(cmd.Name())
	for _, p := range t.prefixes {
		if p.prefix == prefix {
			t.logger.Error("Duplicate prefix command registration", "command", cmd.Name())
			return errors.Wrapf(ErrDuplicateCommand, "register prefix %q", cmd.Name())
		}
	}
	t.prefixes = append(t.prefixes, prefixCommand{prefix: prefix, cmd: cmd})
	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].prefix) > len(t.prefixes[j].prefix)
	})
	return nil
}

// Lookup finds the command for a script word.
func (t *CommandTable) Lookup(word string) (Command, bool) {
	name := standardize(word)
	if cmd, ok := t.exact[name]; ok {
		return cmd, true
	}
	for _, p := range t.prefixes {
		if len(name) >= len(p.prefix) && name[:len(p.prefix)] == p.prefix {
			return p.cmd, true
		}
	}
	return nil, false
}

// Names returns the registered exact names, sorted.
func (t *CommandTable) Names() []string {
	names := make([]string, 0, len(t.exact))
	for n := range t.exact {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands, prefixes included.
func (t *CommandTable) Len() int {
	return len(t.exact) + len(t.prefixes)
}
