package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

type column struct {
	title string
	align columnAlignment
}

// textCol and numCol declare left-aligned text and right-aligned figures.
func textCol(title string) column { return column{title: title} }
func numCol(title string) column { return column{title: title, align: alignRight} }

// textTable collects rows for terminal output. Header and footer cells are
// printed as given, so column titles match the JSON field wording.
type textTable struct {
	columns []column
	rows    [][]string
	footer  []string
}

func newTextTable(cols ...column) *textTable {
	return &textTable{columns: cols}
}

// addRow appends a row; missing trailing cells render empty.
func (t *textTable) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// setFooter sets a totals row below the body.
func (t *textTable) setFooter(cells ...string) {
	t.footer = cells
}

func (t *textTable) String() string {
	if len(t.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(t.columns))
	configs := make([]table.ColumnConfig, len(t.columns))
	for i, c := range t.columns {
		header[i] = c.title
		align := text.AlignLeft
		if c.align == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignFooter: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range t.rows {
		tw.AppendRow(t.pad(cells))
	}
	if t.footer != nil {
		tw.AppendFooter(t.pad(t.footer))
	}
	return tw.Render()
}

func (t *textTable) pad(cells []string) table.Row {
	row := make(table.Row, len(t.columns))
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}
