package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/browser"
	"github.com/septivank/mine-safety-console/internal/controller"
	"go.uber.org/zap"
)

const (
	choicePrompt = "انتخاب: "
	rule         = "----------------------------------------"
)

// Opener shows a generated report to the user
type Opener func(path string) error

// BrowserOpener opens the report with the desktop's default handler
func BrowserOpener(path string) error {
	return browser.OpenFile(path)
}

type readResult struct {
	line string
	err  error
}

// Terminal is a line-oriented frontend. It is both the event source and the renderer of a session.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	open   Opener
	logger *zap.Logger

	// input is read on its own goroutine so a prompt can give up when ctx is cancelled
	readOnce sync.Once
	lines    chan readResult
}

// NewTerminal creates a terminal over in and out. open may be nil.
func NewTerminal(in io.Reader, out io.Writer, open Opener, logger *zap.Logger) *Terminal {
	return &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		open:   open,
		logger: logger,
		lines:  make(chan readResult, 1),
	}
}

// Render prints a view
func (t *Terminal) Render(view controller.View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, view.Title, rule)
	if view.Notice != "" {
		fmt.Fprintf(&b, "%s\n", view.Notice)
	}
	if view.Body != "" {
		fmt.Fprintf(&b, "%s\n", view.Body)
	}
	for _, f := range view.Form {
		if val := view.Value(f.Key); val != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.Label, val)
		}
	}
	for i, action := range view.Actions {
		fmt.Fprintf(&b, "%d) %s\n", i+1, controller.Label(action))
	}

	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return err
	}

	if view.State == controller.PdfConfirmView && t.open != nil && view.ReportPath != "" {
		if err := t.open(view.ReportPath); err != nil {
			t.logger.Warn("failed to open report", zap.String("path", view.ReportPath), zap.Error(err))
		}
	}
	return nil
}

// Next reads the user's choice for view. Choosing submit on a form prompts for every field.
func (t *Terminal) Next(ctx context.Context, view controller.View) (controller.Event, error) {
	if err := ctx.Err(); err != nil {
		return controller.Event{}, err
	}

	line, err := t.prompt(ctx, choicePrompt)
	if err != nil {
		return controller.Event{}, err
	}

	action := parseChoice(strings.TrimSpace(line), view.Actions)
	if action != controller.ActionSubmit || len(view.Form) == 0 {
		return controller.Event{Action: action}, nil
	}

	fields := make(map[string]string, len(view.Form))
	for _, f := range view.Form {
		val, err := t.prompt(ctx, fmt.Sprintf("%s (%s): ", f.Label, f.Hint))
		if err != nil {
			return controller.Event{}, err
		}
		fields[f.Key] = val
	}

	return controller.Event{Action: action, Fields: fields}, nil
}

// parseChoice maps a menu number to its action. Anything else is passed through as an action name.
func parseChoice(choice string, actions []controller.Action) controller.Action {
	n, err := strconv.Atoi(choice)
	if err != nil {
		return controller.Action(choice)
	}
	if n < 1 || n > len(actions) {
		return controller.Action(choice)
	}
	return actions[n-1]
}

// prompt writes label and waits for one line without its terminator. Field values are not trimmed.
func (t *Terminal) prompt(ctx context.Context, label string) (string, error) {
	if _, err := io.WriteString(t.out, label); err != nil {
		return "", err
	}

	t.readOnce.Do(func() { go t.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		if r.err != nil {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

// readLines feeds lines to prompt until the input fails
func (t *Terminal) readLines() {
	defer close(t.lines)
	for {
		line, err := t.in.ReadString('\n')
		if line != "" {
			t.lines <- readResult{line: line}
		}
		if err != nil {
			t.lines <- readResult{err: err}
			return
		}
	}
}
