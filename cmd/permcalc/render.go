package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")).PaddingRight(2)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingRight(2)
	boldStyle   = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// borderless is a table with every border hidden. The header border is only
// switched off on tables that have headers; without them lipgloss drops the
// last row.
func borderless() *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false)
}

func headedTable(headers ...string) *table.Table {
	return borderless().
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return boldStyle
			}
			return cellStyle
		})
}

// section is one titled block of rows in a sectioned table.
type section struct {
	title   string
	headers []string
	rows    [][]string
	footer  string
}

// renderSections stacks sections into one table so their columns line up.
func renderSections(w io.Writer, sections []section) {
	width := 0
	for _, sec := range sections {
		width = max(width, len(sec.headers))
		for _, row := range sec.rows {
			width = max(width, len(row))
		}
	}
	if width == 0 {
		return
	}

	t := borderless()
	var styles []lipgloss.Style
	add := func(style lipgloss.Style, cells []string) {
		row := make([]string, width)
		copy(row, cells)
		t.Row(row...)
		styles = append(styles, style)
	}

	for i, sec := range sections {
		if i > 0 {
			add(cellStyle, nil)
		}
		add(titleStyle, []string{sec.title})
		add(headerStyle, sec.headers)
		for _, row := range sec.rows {
			add(cellStyle, row)
		}
	}

	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row >= 0 && row < len(styles) {
			return styles[row]
		}
		return cellStyle
	})
	fmt.Fprintln(w, t)

	for _, sec := range sections {
		if sec.footer != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, sec.footer)
		}
	}
	fmt.Fprintln(w)
}
