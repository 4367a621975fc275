package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// table renders rows of cells as aligned columns. Numeric columns are
// right-aligned; widths follow the widest cell. Styling is applied after
// alignment so escape codes don't skew the widths.
type table struct {
	header []string
	rows   [][]cell
}

type cell struct {
	text  string
	right bool
	style func(string) string
}

func text(s string) cell { return cell{text: s} }
func num(s string) cell { return cell{text: s, right: true} }
func styled(c cell, style func(string) string) cell {
	c.style = style
	return c
}

func (t *table) addRow(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) && runewidth.StringWidth(c.text) > widths[i] {
				widths[i] = runewidth.StringWidth(c.text)
			}
		}
	}

	var b strings.Builder
	for i, h := range t.header {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(runewidth.FillRight(h, widths[i]))
	}
	_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

	for _, row := range t.rows {
		b.Reset()
		for i, c := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			padded := runewidth.FillRight(c.text, widths[i])
			if c.right {
				padded = runewidth.FillLeft(c.text, widths[i])
			}
			if c.style != nil {
				// Pad first, style after, so the escape codes don't
				// count toward the column width.
				padded = c.style(padded)
			}
			b.WriteString(padded)
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// terminalWidth returns the width of the attached terminal, or a sane
// default when stdout is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
