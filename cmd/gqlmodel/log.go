package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hanpama/gqlmodel/internal/document"
	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/events"
)

var (
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#9CA3AF")

	warningLabel  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorLabel    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// subscribe wires run events to the logger and terminal.
func (a *app) subscribe() []func() {
	return []func(){
		eventbus.Subscribe(func(_ context.Context, e events.RunStart) {
			a.log.Debug("run started", "unit", e.Unit, "operations", e.Operations, "fragments", e.Fragments)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.RunFinish) {
			if e.Err != nil {
				a.log.Error("run failed", "unit", e.Unit, "error", e.Err, "duration", e.Duration)
				return
			}
			a.log.Info("generated", "unit", e.Unit, "classes", e.Classes, "warnings", e.Warnings, "duration", e.Duration)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.Warning) {
			a.mu.Lock()
			defer a.mu.Unlock()
			fmt.Fprintf(a.stderr, "%s %s %s\n", warningLabel.Render("warning:"), e.Message, locationStyle.Render("("+e.Unit+")"))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.OutputWritten) {
			a.log.Info("wrote", "path", e.Path, "bytes", e.Bytes)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.Rebuild) {
			a.log.Info("change detected", "paths", strings.Join(e.Paths, ","))
		}),
	}
}

// printError reports err on stderr. Document violations are listed one per
// line with their location.
func (a *app) printError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var verr document.ValidationError
	if errors.As(err, &verr) {
		for _, v := range verr {
			loc := ""
			if v.File != "" {
				loc = " " + locationStyle.Render(fmt.Sprintf("%s:%d:%d", v.File, v.Line, v.Column))
			}
			fmt.Fprintf(a.stderr, "%s %s%s\n", errorLabel.Render("error:"), v.Message, loc)
		}
		return
	}
	fmt.Fprintf(a.stderr, "%s %v\n", errorLabel.Render("error:"), err)
}
