package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"Aquaquote/internal/calc/tanks"
	"Aquaquote/internal/engine"
)

func printQuote(w io.Writer, s engine.Snapshot) error {
	fmt.Fprintf(w, "%s plant, %s KLD\n", s.Spec.Type, num(s.Spec.Capacity))
	fmt.Fprintf(w, "flow %s m3/h, peak %s m3/h\n\n", num(s.Flow.FlowRate), num(s.Flow.PeakFlow))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TANK\tVOLUME m3\tWIDTH m")
	for _, id := range tanks.All {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, num(s.Tanks.Volumes[id]), num(s.Tanks.Widths[id]))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "EQUIPMENT\tQTY\tBASE\tTOTAL")
	for _, e := range s.Equipment {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Name, e.Quantity, num(e.BasePrice), num(e.TotalPrice))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\n", num(s.Total))
	return tw.Flush()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
