package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rodaine/table"

	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/storage"
	"github.com/jwebster45206/scriptevent/pkg/world"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	localizedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func renderOutcomes(out io.Writer, outcomes []outcome) {
	fmt.Fprintln(out, titleStyle.Render("Events"))
	t := table.New("Entity", "Event", "Params", "Result", "Took").WithWriter(out)
	for _, o := range outcomes {
		t.AddRow(o.Entity, o.Event, o.Params, o.Result, o.Took.String())
	}
	t.Print()
	fmt.Fprintln(out)
}

func renderSpeech(out io.Writer, lines []world.Line, width int) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(out, titleStyle.Render("Speech"))
	for _, l := range lines {
		speaker := l.Speaker
		if speaker == "" {
			speaker = "?"
		}
		text := wordwrap.String(l.Text, max(width-len(speaker)-2, 20))
		if l.Localized {
			text = localizedStyle.Render(text)
		}
		fmt.Fprintf(out, "%s %s\n", speakerStyle.Render(speaker+":"), text)
	}
	fmt.Fprintln(out)
}

// renderVars prints the globals and every entity's locals, sorted by scope
// and name.
func renderVars(out io.Writer, w *world.World) {
	type row struct {
		scope string
		v     script.Var
	}
	var rows []row
	for _, v := range w.Globals.Vars() {
		rows = append(rows, row{storage.GlobalScope, v})
	}
	w.Entities(func(e *entity.Entity) {
		s, ok := w.Script(e)
		if !ok {
			return
		}
		for _, v := range s.Locals().Vars() {
			rows = append(rows, row{e.Name, v})
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].scope != rows[j].scope {
			return rows[i].scope < rows[j].scope
		}
		return strings.ToLower(rows[i].v.Name) < strings.ToLower(rows[j].v.Name)
	})

	fmt.Fprintln(out, titleStyle.Render("Variables"))
	t := table.New("Scope", "Name", "Value").WithWriter(out)
	for _, r := range rows {
		value := r.v.Text
		if r.v.Namespace.Numeric() {
			value = humanize.Ftoa(r.v.Number)
		}
		t.AddRow(r.scope, r.v.Name, value)
	}
	t.Print()
	fmt.Fprintln(out)
}

func renderSummary(out io.Writer, w *world.World) {
	fmt.Fprintf(out, "%s entities, %s events sent, %s timers pending\n",
		humanize.Comma(int64(w.Len())),
		humanize.Comma(script.TotalSent()),
		humanize.Comma(int64(w.Timers.Len())))
}
