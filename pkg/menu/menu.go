package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sambigeara/permcalc/pkg/convert"
)

const (
	choiceEncode = "1"
	choiceDecode = "2"
	choiceExit   = "3"
)

// Menu is the interactive octal/symbolic prompt loop.
type Menu struct {
	conv convert.Converter
	in   *bufio.Scanner
	out  io.Writer

	title lipgloss.Style
	fail  lipgloss.Style
}

func New(conv convert.Converter, in io.Reader, out io.Writer) *Menu {
	r := lipgloss.NewRenderer(out)
	return &Menu{
		conv:  conv,
		in:    bufio.NewScanner(in),
		out:   out,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Run loops until the user exits or input ends. Conversion failures are
// printed and never end the loop.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, m.title.Render("Octal Permission Calculator"))
		fmt.Fprintln(m.out, "1. Convert octal to symbolic")
		fmt.Fprintln(m.out, "2. Convert symbolic to octal")
		fmt.Fprintln(m.out, "3. Exit")

		choice, ok := m.prompt("Enter your choice (1-3): ")
		if !ok {
			return m.in.Err()
		}

		switch choice {
		case choiceEncode:
			input, ok := m.prompt("Enter octal permission (e.g., 755): ")
			if !ok {
				return m.in.Err()
			}
			result, err := m.conv.Encode(ctx, input)
			m.report("Symbolic", result, err)
		case choiceDecode:
			input, ok := m.prompt("Enter symbolic permission (e.g., rwxr-xr-x): ")
			if !ok {
				return m.in.Err()
			}
			result, err := m.conv.Decode(ctx, input)
			m.report("Octal", result, err)
		case choiceExit:
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, m.fail.Render("Invalid choice. Please enter 1, 2, or 3."))
		}
	}
}

func (m *Menu) prompt(text string) (string, bool) {
	fmt.Fprint(m.out, text)
	if !m.in.Scan() {
		fmt.Fprintln(m.out)
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) report(label, result string, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(m.out, m.fail.Render("Error: "+err.Error()))
		return
	}
	fmt.Fprintf(m.out, "%s: %s\n", label, result)
}
