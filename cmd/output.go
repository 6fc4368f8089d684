package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// section is one titled table of the human-readable output.
type section struct {
	title   string
	headers []string
	rows    [][]string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// render writes v in the selected --format. Table output is built lazily
// from sections since JSON and YAML never need it.
func render(w io.Writer, v any, sections func() []section) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "render json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "render yaml")
		}
		return eris.Wrap(enc.Close(), "render yaml")
	case "table", "":
		for _, s := range sections() {
			if err := writeSection(w, s); err != nil {
				return err
			}
		}
		return nil
	default:
		return eris.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
	}
}

func writeSection(w io.Writer, s section) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(s.headers...).
		Rows(s.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintf(w, "%s\n%s\n\n", titleStyle.Render(s.title), t.Render())
	return eris.Wrap(err, "render table")
}

// swatch prefixes a chart color with a block in that color.
func swatch(color string) string {
	if color == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■") + " " + color
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func optPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return pct(*v)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
