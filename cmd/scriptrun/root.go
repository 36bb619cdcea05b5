package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/scriptevent/internal/config"
	"github.com/jwebster45206/scriptevent/internal/logger"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scriptrun",
	Short: "Run event scripts outside the game",
	Long: `scriptrun loads event scripts, sends them events and prints what they
did: the result of every dispatch, the lines they said and the variables
they left behind.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		log = logger.Setup(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().Int("width", 80, "wrap speech at this width")
	rootCmd.PersistentFlags().Bool("vars", false, "print variables after the run")
}
