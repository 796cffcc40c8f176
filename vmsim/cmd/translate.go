package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/vm"
)

func newTranslateCommand() *cobra.Command {
	translateCmd := &cobra.Command{
		Use:   "translate [address...]",
		Short: "Translate logical addresses in order.",
		Long: "`translate 3065 3065 4096` feeds the addresses to one " +
			"translator, in order, and prints what happened to each. " +
			"Rejected addresses are reported and do not change the tables.",
		RunE: runTranslate,
	}

	flags := translateCmd.Flags()
	flags.StringP("file", "f", "", "Read addresses from a file, - for stdin")
	flags.Bool("json", false, "Print records as JSON lines")
	flags.Bool("snapshot", false, "Print the tables after the last address")
	flags.String("trace", "", "Record the translations into this SQLite file")

	return translateCmd
}

func runTranslate(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	addresses, err := collectAddresses(cmd, args)
	if err != nil {
		return err
	}

	s, err := newSession(cmd, "vm", settings)
	if err != nil {
		return err
	}
	defer s.close()

	asJSON, _ := cmd.Flags().GetBool("json")
	withSnapshot, _ := cmd.Flags().GetBool("snapshot")

	out := cmd.OutOrStdout()
	rejected := 0

	for _, addr := range addresses {
		record, err := s.translator.TranslateInput(addr)
		if err != nil {
			rejected++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", addr, err)

			continue
		}

		if asJSON {
			err = json.NewEncoder(out).Encode(record)
			if err != nil {
				return err
			}

			continue
		}

		printRecord(out, record)
	}

	if withSnapshot {
		printSnapshot(out, s.translator.Snapshot())
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d addresses rejected",
			rejected, len(addresses))
	}

	return nil
}

func collectAddresses(cmd *cobra.Command, args []string) ([]string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("no address given")
		}

		return args, nil
	}

	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		r = f
	}

	fromFile, err := readAddresses(r)
	if err != nil {
		return nil, err
	}

	return append(fromFile, args...), nil
}

func printRecord(w io.Writer, r vm.TranslationRecord) {
	fmt.Fprintf(w, "#%d %d -> page %d, offset %d: %s",
		r.Seq, r.LogicalAddress, r.PageNumber, r.Offset, r.Message)

	if physical, ok := r.Physical(); ok {
		fmt.Fprintf(w, " Physical address %d.", physical)
	}

	fmt.Fprintln(w)
}
