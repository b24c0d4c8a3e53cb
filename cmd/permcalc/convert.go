package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sambigeara/permcalc/pkg/perm"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encode <octal>",
		Short:   "Convert octal (755) to symbolic (rwxr-xr-x)",
		Example: "  permcalc encode 755",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := newConverter(cmd)
			if err != nil {
				return err
			}
			symbolic, err := conv.Encode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), symbolic)
			return nil
		},
	}
	cmd.Flags().String("remote", "", "Convert through the permcalc server at this URL")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decode <symbolic>",
		Short:   "Convert symbolic (rwxr-xr-x) to octal (755)",
		Example: "  permcalc decode rw-r--r--",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := newConverter(cmd)
			if err != nil {
				return err
			}
			octal, err := conv.Decode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), octal)
			return nil
		},
	}
	cmd.Flags().String("remote", "", "Convert through the permcalc server at this URL")
	return cmd
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <permission>",
		Short: "Break a permission in either form down by class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := perm.Parse(args[0])
			if err != nil {
				return err
			}
			renderExplain(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the digit to symbol lookup table",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			renderLookupTable(cmd.OutOrStdout())
		},
	}
}

func renderExplain(w io.Writer, m perm.Mode) {
	headers := []string{"CLASS"}
	for _, b := range perm.Bits {
		headers = append(headers, b.Label())
	}
	headers = append(headers, "SYMBOL", "DIGIT")

	t := headedTable(headers...)
	for _, c := range perm.Classes {
		row := []string{c.String()}
		for _, b := range perm.Bits {
			cell := "-"
			if m.Has(c, b) {
				cell = "yes"
			}
			row = append(row, cell)
		}
		tr := m.Triad(c)
		row = append(row, tr.Symbol(), string(tr.Digit()))
		t.Row(row...)
	}

	fmt.Fprintln(w, t)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "octal     %s\n", m.Octal())
	fmt.Fprintf(w, "symbolic  %s\n", m.Symbolic())
	fmt.Fprintf(w, "literal   %s\n", m.Literal())
}

func renderLookupTable(w io.Writer) {
	t := headedTable("DIGIT", "SYMBOL")
	for v, s := range perm.Table() {
		t.Row(strconv.Itoa(v), s)
	}
	fmt.Fprintln(w, t)
}
