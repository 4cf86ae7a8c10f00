package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fjl/tiertrace"
)

var diffCmd = &cobra.Command{
	Use:   "diff <store A> <store B>",
	Short: "Compare stored summaries of two runs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := tiertrace.OpenStore(args[0])
		if err != nil {
			return err
		}
		defer a.Close()
		b, err := tiertrace.OpenStore(args[1])
		if err != nil {
			return err
		}
		defer b.Close()

		diff, err := tiertrace.DiffStores(a, b)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "A:", args[0], "B:", args[1])
		printDiff(os.Stdout, diff)
		return nil
	},
}

func printDiff(out io.Writer, diff []tiertrace.DiffEntry) {
	for _, d := range diff {
		switch {
		case d.B == nil:
			fmt.Fprintf(out, "%s only in A\n", d.ID)
		case d.A == nil:
			fmt.Fprintf(out, "%s only in B\n", d.ID)
		default:
			var info []string
			for _, m := range tiertrace.Methods {
				if delta, ok := d.RatioDelta(m); ok {
					info = append(info, fmt.Sprintf("%s %+.4f", m, delta))
				} else {
					info = append(info, fmt.Sprintf("%s n/a", m))
				}
			}
			if d.A.Summary.TotalAccesses != d.B.Summary.TotalAccesses {
				info = append(info, fmt.Sprintf("accesses %d -> %d", d.A.Summary.TotalAccesses, d.B.Summary.TotalAccesses))
			}
			fmt.Fprintf(out, "%s %s\n", d.ID, strings.Join(info, ", "))
		}
	}
}
