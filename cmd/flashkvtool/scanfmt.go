package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
)

// printScanTable renders the records found by a scan as a simple
// fixed-width table, colorized when stdout is a real terminal.
func printScanTable(events []recordInfo) {
	var out io.Writer = os.Stdout
	colorize := isatty.IsTerminal(os.Stdout.Fd())
	if colorize {
		out = colorable.NewColorableStdout()
	}

	if len(events) == 0 {
		fmt.Fprintln(out, "(empty log)")
		return
	}

	header := fmt.Sprintf("%-12s %-12s %-8s", "ID", "ADDR", "SIZE")
	if colorize {
		header = "\x1b[1m" + header + "\x1b[0m"
	}
	fmt.Fprintln(out, header)

	rows := lo.Map(events, func(e recordInfo, _ int) string {
		return fmt.Sprintf("%-12d %-12d %-8d", e.ID, e.Addr, e.Size)
	})
	for _, row := range rows {
		fmt.Fprintln(out, row)
	}

	total := lo.SumBy(events, func(e recordInfo) uint32 { return e.Size })
	fmt.Fprintf(out, "%d records, %d payload bytes\n", len(events), total)
}
