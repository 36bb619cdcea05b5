package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/scriptevent/pkg/world"
)

var runCmd = &cobra.Command{
	Use:   "run <script.asl> [EVENT[=params]...]",
	Short: "Send events to a single script",
	Long: `Loads one script onto a fresh entity, runs INIT and INITEND unless
--no-init is given, then sends each listed event in order. Events whose
name is not a standard event run the matching "ON <name>" block.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		kind, _ := cmd.Flags().GetString("kind")
		flag, ok := world.ParseKind(kind)
		if !ok {
			return fmt.Errorf("unknown kind %q (want one of %s)", kind, strings.Join(world.Kinds(), ", "))
		}

		sends := make([]send, 0, len(args)-1)
		for _, arg := range args[1:] {
			s, err := parseSend(arg, name)
			if err != nil {
				return err
			}
			sends = append(sends, s)
		}

		w, clock, err := newWorld()
		if err != nil {
			return err
		}
		if _, err := w.Spawn(name, flag, string(data)); err != nil {
			return err
		}
		return play(cmd, w, clock, sends)
	},
}

func init() {
	runCmd.Flags().String("name", "", "entity name (default: script file name)")
	runCmd.Flags().String("kind", "npc", "entity kind: npc, item, fix, camera or marker")
	runCmd.Flags().Bool("no-init", false, "skip INIT and INITEND")
	runCmd.Flags().Duration("advance", 0, "advance the clock by this much after the events, firing timers")
	rootCmd.AddCommand(runCmd)
}

// simClock is the world clock of a CLI run. Timers, ^gametime and the
// KEY_PRESSED guard all read it.
type simClock struct {
	now time.Time
}

func (c *simClock) Now() time.Time {
	return c.now
}

func newWorld() (*world.World, *simClock, error) {
	clock := &simClock{now: time.Now()}
	w, err := world.New(world.Options{
		MaxSteps:      cfg.ScriptMaxSteps,
		KeyPressGuard: cfg.KeyPressGuard,
		Now:           clock.Now,
	}, log)
	return w, clock, err
}

// maxAdvanceFires stops an --advance that zero-interval repeating timers
// would otherwise never finish.
const maxAdvanceFires = 100000

// advance moves the clock forward by d, stopping at every due time so
// each timer fires once per interval. It returns the number of fires.
func advance(w *world.World, clock *simClock, d time.Duration) int {
	end := clock.now.Add(d)
	fired := 0
	for fired < maxAdvanceFires {
		next, ok := w.Timers.Next()
		if !ok || next.After(end) {
			break
		}
		if next.After(clock.now) {
			clock.now = next
		}
		n := w.Tick(clock.now)
		if n == 0 {
			break
		}
		fired += n
	}
	if fired >= maxAdvanceFires {
		log.Warn("Clock advance stopped early", "fired", fired, "at", clock.now)
	}
	clock.now = end
	return fired
}

// play runs the shared part of run and world: init, events, clock advance
// and output.
func play(cmd *cobra.Command, w *world.World, clock *simClock, sends []send) error {
	if noInit, _ := cmd.Flags().GetBool("no-init"); !noInit {
		w.Init()
	}
	outcomes := deliver(w, sends)

	if d, _ := cmd.Flags().GetDuration("advance"); d > 0 {
		advance(w, clock, d)
	}

	out := cmd.OutOrStdout()
	width, _ := cmd.Flags().GetInt("width")
	renderOutcomes(out, outcomes)
	renderSpeech(out, w.Speech(), width)
	if showVars, _ := cmd.Flags().GetBool("vars"); showVars {
		renderVars(out, w)
	}
	renderSummary(out, w)
	return nil
}
