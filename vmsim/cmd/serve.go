package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/vm"
)

func newServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a translator over HTTP.",
		Long: "`serve` starts the monitoring server with one translator " +
			"named vm and blocks until interrupted.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	flags := serveCmd.Flags()
	flags.Int("port", 0, "Port to listen on, random when 0")
	flags.Bool("open", false, "Open the monitor in a browser")
	flags.String("trace", "", "Record the translations into this SQLite file")
	flags.String("replay", "", "Translate the addresses in this file first")

	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		settings.Port, _ = cmd.Flags().GetInt("port")
	}

	s, err := newSession(cmd, "vm", settings)
	if err != nil {
		return err
	}
	defer s.close()

	openBrowser, _ := cmd.Flags().GetBool("open")

	monitor := monitoring.NewMonitor().
		WithPortNumber(settings.Port).
		WithBrowser(openBrowser)
	monitor.RegisterTranslator(s.translator)

	_, err = monitor.StartServer()
	if err != nil {
		return err
	}

	replayFile, _ := cmd.Flags().GetString("replay")
	if replayFile != "" {
		err = replay(monitor, s.translator, replayFile)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), 5*time.Second)
	defer cancel()

	return monitor.StopServer(shutdownCtx)
}

// replay feeds the addresses of a file to the translator while reporting
// progress through the monitor.
func replay(
	monitor *monitoring.Monitor,
	translator *vm.Translator,
	path string,
) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	addresses, err := readAddresses(f)
	if err != nil {
		return err
	}

	bar := monitor.CreateProgressBar("replay "+path, uint64(len(addresses)))
	defer monitor.CompleteProgressBar(bar)

	for _, addr := range addresses {
		bar.IncrementInProgress(1)

		_, err := translator.TranslateInput(addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", addr, err)
		}

		bar.MoveInProgressToFinished(1)
	}

	return nil
}
