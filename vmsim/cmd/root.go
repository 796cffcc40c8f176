// Package cmd provides the command-line interface for vmsim.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmsim/config"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/vm"
)

// NewRootCommand creates the vmsim command with all its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vmsim",
		Short: "vmsim simulates the address translation of a demand-paged memory.",
		Long: `vmsim splits logical addresses into a page number and an ` +
			`offset, looks the page up in a page table and loads it into ` +
			`the next free frame on a page fault. Frames are never ` +
			`reclaimed: once all of them are used, further faults fail.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("env-file", ".env", "File to read VMSIM_* variables from")
	flags.Uint64("page-size", vm.DefaultPageSize, "Bytes per page and frame")
	flags.Uint64("num-pages", vm.DefaultNumPages, "Number of logical pages")
	flags.Uint64("num-frames", vm.DefaultNumFrames, "Number of physical frames")
	flags.String("log-level", "info", "debug, info, warn or error")

	rootCmd.AddCommand(newTranslateCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newTraceCommand())

	return rootCmd
}

// Execute runs the vmsim command and exits. Exit handlers registered with
// atexit, such as the trace flushers, run before the process ends.
func Execute() {
	err := NewRootCommand().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadSettings reads the env file and the environment, then applies the
// flags the user set explicitly.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")

	settings, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("page-size") {
		settings.VM.PageSize, _ = flags.GetUint64("page-size")
	}

	if flags.Changed("num-pages") {
		settings.VM.NumPages, _ = flags.GetUint64("num-pages")
	}

	if flags.Changed("num-frames") {
		settings.VM.NumFrames, _ = flags.GetUint64("num-frames")
	}

	if flags.Changed("log-level") {
		settings.LogLevel, _ = flags.GetString("log-level")
	}

	if flags.Lookup("trace") != nil && flags.Changed("trace") {
		settings.TraceDB, _ = flags.GetString("trace")
	}

	return settings, settings.Validate()
}

// session is a translator together with the collaborators that observe it.
type session struct {
	translator *vm.Translator
	recorder   datarecording.DataRecorder
	logger     *slog.Logger
}

func newSession(
	cmd *cobra.Command,
	name string,
	settings config.Config,
) (*session, error) {
	s := &session{
		logger: sim.NewLogger(cmd.ErrOrStderr(), settings.LogLevel, "vmsim"),
	}

	builder := vm.MakeBuilder().
		WithConfig(settings.VM).
		WithHook(vm.NewLogHook(s.logger))

	if settings.TraceDB != "" {
		recorder, tracer, err := openTrace(settings.TraceDB)
		if err != nil {
			return nil, err
		}

		s.recorder = recorder
		builder = builder.WithHook(tracer)
	}

	s.translator = builder.Build(name)

	return s, nil
}

// openTrace creates the recorder and the tables the tracer writes to. The
// database file is only touched when the tables are created, so both steps
// report their panics as errors.
func openTrace(path string) (
	recorder datarecording.DataRecorder,
	tracer *tracing.TranslationTracer,
	err error,
) {
	defer func() {
		if r := recover(); r != nil {
			if recorder != nil {
				_ = recorder.Close()
			}

			recorder, tracer = nil, nil
			err = fmt.Errorf("cannot record to %s: %v", path, r)
		}
	}()

	recorder = datarecording.NewDataRecorder(path)
	tracer = tracing.NewTranslationTracer(recorder)

	return recorder, tracer, nil
}

func (s *session) close() {
	if s.recorder == nil {
		return
	}

	err := s.recorder.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close trace: %v\n", err)
	}
}
