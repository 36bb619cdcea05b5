package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/scriptevent/internal/storage"
	"github.com/jwebster45206/scriptevent/pkg/world"
)

var worldCmd = &cobra.Command{
	Use:   "world <manifest.yaml> [entity:EVENT[=params]...]",
	Short: "Populate a world from a manifest and send it events",
	Long: `Reads a YAML world manifest, loads each entity's script from
<DATA_DIR>/scripts and sends the listed events. With --save the variables
are written to Redis under a new save ID; --restore loads a save before
any event runs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := world.LoadManifest(args[0])
		if err != nil {
			return err
		}

		sends := make([]send, 0, len(args)-1)
		for _, arg := range args[1:] {
			s, err := parseSend(arg, "")
			if err != nil {
				return err
			}
			sends = append(sends, s)
		}

		w, clock, err := newWorld()
		if err != nil {
			return err
		}
		scripts := storage.NewFileScripts(cfg.DataDir, cfg.ScriptCacheTTL, log)
		if err := w.Populate(m, scripts); err != nil {
			return err
		}

		save, _ := cmd.Flags().GetBool("save")
		restore, _ := cmd.Flags().GetString("restore")
		if !save && restore == "" {
			return play(cmd, w, clock, sends)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		st, err := storage.NewRedisStorage(cfg.RedisURL, 0, log)
		if err != nil {
			return err
		}
		defer st.Close()

		if restore != "" {
			id, err := uuid.Parse(restore)
			if err != nil {
				return fmt.Errorf("invalid save ID: %w", err)
			}
			if err := w.Restore(ctx, st, id); err != nil {
				return err
			}
			// Restored variables replace INIT's work.
			_ = cmd.Flags().Set("no-init", "true")
		}

		if err := play(cmd, w, clock, sends); err != nil {
			return err
		}

		if save {
			id := uuid.New()
			if err := w.Snapshot(ctx, st, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved as %s\n", id)
		}
		return nil
	},
}

func init() {
	worldCmd.Flags().Bool("no-init", false, "skip INIT and INITEND")
	worldCmd.Flags().Duration("advance", 0, "advance the clock by this much after the events, firing timers")
	worldCmd.Flags().Bool("save", false, "save variables to Redis after the run")
	worldCmd.Flags().String("restore", "", "restore variables from this save ID first")
	rootCmd.AddCommand(worldCmd)
}
