package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/vmsim/vm"
)

func printSnapshot(w io.Writer, s vm.Snapshot) {
	fmt.Fprintf(w, "\n%s: %s\n", s.Name, s.Config)

	fmt.Fprintln(w, "\nPage Table")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Page\tFrame\tAssigned")
	for _, e := range s.PageTable {
		frame := "-"
		if f, ok := e.FrameNumber(); ok {
			frame = fmt.Sprint(f)
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Page, frame, yesNo(e.Assigned))
	}
	tw.Flush()

	fmt.Fprintln(w, "\nFrame Table")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Frame\tPage\tOccupied")
	for _, e := range s.FrameTable {
		page := "-"
		if p, ok := e.PageNumber(); ok {
			page = fmt.Sprint(p)
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Frame, page, yesNo(e.Occupied))
	}
	tw.Flush()

	st := s.Stats
	fmt.Fprintf(w, "\nNext free frame: %d\n", s.NextFreeFrame)
	fmt.Fprintf(w,
		"Translations: %d, hits: %d, faults: %d (%d resolved, %d exhausted)\n",
		st.Translations, st.Hits, st.Faults, st.Resolved, st.Exhausted)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
