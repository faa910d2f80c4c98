// Package cmd provides the command-line interface of pioxfer.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pioxfer/config"
	"github.com/sarchlab/pioxfer/logging"
)

// options holds the persistent flags and the configuration they resolve to.
type options struct {
	configPath string
	backend    string
	logLevel   string
	monitor    bool
	record     string

	cfg *config.Config
}

// NewRootCommand creates the pioxfer command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "pioxfer",
		Short: "Move data through the FIFO of an S5933 add-on board.",
		Long: `pioxfer drives an S5933 add-on board through its I/O port ` +
			`window. Transfers poll the FIFO 32 bits at a time and can be ` +
			`interrupted with Ctrl-C. The board can be the real one behind ` +
			`/dev/port or a simulated one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "",
		"YAML configuration file")
	flags.StringVar(&opts.backend, "backend", "",
		"board backend, sim or devport")
	flags.StringVar(&opts.logLevel, "log-level", "",
		"log level, one of debug, info, warn, error")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"serve the monitoring dashboard while running")
	flags.StringVar(&opts.record, "record", "",
		"record transfer traces into this sqlite file")

	rootCmd.AddCommand(
		newVersionCommand(opts),
		newResetCommand(opts),
		newReadCommand(opts),
		newWriteCommand(opts),
		newBenchCommand(opts),
		newTraceCommand(opts),
	)

	return rootCmd
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Device.Backend = o.backend
	}

	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}

	if flags.Changed("monitor") {
		cfg.Monitor.Enabled = o.monitor
	}

	if flags.Changed("record") {
		cfg.Recording.Enabled = true
		cfg.Recording.Path = o.record
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.SetFormat(format)
	logging.SetLevel(level)

	o.cfg = cfg

	return nil
}

// Execute runs the command line. Ctrl-C cancels the request in flight. The
// process exits through atexit so that recordings are flushed.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
