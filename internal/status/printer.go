package status

import (
	"fmt"
	"io"
	"strings"

	"codeberg.org/mutker/hotctl/internal/history"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWarn  = lipgloss.Color("208")
	colorLabel = lipgloss.Color("252")
	colorDim   = lipgloss.Color("240")
)

// Options control rendering.
type Options struct {
	Fahrenheit bool
	Colorize   bool
}

// Printer writes rendered status to w.
type Printer struct {
	w     io.Writer
	opts  Options
	plain lipgloss.Style
	warn  lipgloss.Style
	label lipgloss.Style
	dim   lipgloss.Style
}

func NewPrinter(w io.Writer, opts Options) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:     w,
		opts:  opts,
		plain: r.NewStyle(),
		warn:  r.NewStyle(),
		label: r.NewStyle(),
		dim:   r.NewStyle(),
	}

	if opts.Colorize {
		p.warn = p.warn.Foreground(colorWarn).Bold(true)
		p.label = p.label.Foreground(colorLabel)
		p.dim = p.dim.Foreground(colorDim)
	}

	return p
}

// Line renders the summary of s, or "" when there is nothing to show.
func (p *Printer) Line(s State) string {
	title := s.Title(p.opts.Fahrenheit)
	if title == "" {
		return ""
	}

	style := p.plain
	if s.Warning() {
		style = p.warn
	}

	return fmt.Sprintf("%s  %s %s  %s %s",
		style.Render(title),
		p.dim.Render("fan"), FormatFanSpeed(s.FanSpeed),
		p.dim.Render("pressure"), FormatPressure(s.Pressure),
	)
}

// Print writes Line followed by a newline. Nothing is written for an empty
// line.
func (p *Printer) Print(s State) error {
	line := p.Line(s)
	if line == "" {
		return nil
	}

	_, err := fmt.Fprintln(p.w, line)
	return err
}

// Table renders one row per sensor: the latest value followed by the lowest
// and highest value in its history. Rows keep the order of the entries.
func (p *Printer) Table(temperatures, fans []history.Entry) string {
	type row struct {
		name, last, span string
	}

	rows := make([]row, 0, len(temperatures)+len(fans))
	add := func(entries []history.Entry, format func(float64) string) {
		for _, e := range entries {
			last, ok := e.Series.Last()
			if !ok {
				continue
			}
			lo, _ := e.Series.Min()
			hi, _ := e.Series.Max()
			rows = append(rows, row{
				name: e.Key.Name,
				last: format(last),
				span: fmt.Sprintf("min %s  max %s", format(lo), format(hi)),
			})
		}
	}
	add(temperatures, func(v float64) string { return FormatTemperature(v, p.opts.Fahrenheit) })
	add(fans, func(v float64) string { return FormatFanSpeed(&v) })

	nameWidth, lastWidth := 0, 0
	for _, r := range rows {
		nameWidth = max(nameWidth, lipgloss.Width(r.name))
		lastWidth = max(lastWidth, lipgloss.Width(r.last))
	}
	name := p.label.Width(nameWidth + 2)
	last := p.plain.Width(lastWidth + 2)

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s%s%s\n", name.Render(r.name), last.Render(r.last), p.dim.Render(r.span))
	}

	return b.String()
}

// PrintTable writes Table to the printer's writer.
func (p *Printer) PrintTable(temperatures, fans []history.Entry) error {
	_, err := io.WriteString(p.w, p.Table(temperatures, fans))
	return err
}
