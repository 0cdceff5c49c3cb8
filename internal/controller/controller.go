package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/septivank/mine-safety-console/internal/models"
	"github.com/septivank/mine-safety-console/internal/report"
	"github.com/septivank/mine-safety-console/internal/sensor"
	"github.com/septivank/mine-safety-console/internal/validator"
	"go.uber.org/zap"
)

const (
	mainTitle         = "سامانه پایش ایمنی معادن"
	statusFormTitle   = "ثبت وضعیت"
	alertFormTitle    = "ثبت هشدار"
	reportsTitle      = "گزارش‌ها"
	sensorTitle       = "سنسور متان"
	pdfTitle          = "گزارش PDF"
	statusSavedBody   = "✅ وضعیت ثبت شد!"
	alertSavedBody    = "⚠️ هشدار ثبت شد!"
	statusLogHeading  = "📜 گزارش وضعیت‌ها:\n"
	alertsLogHeading  = "\n⚠️ گزارش هشدارها:\n"
	pdfReadyNotice    = "📄 PDF ساخته شد!"
	invalidOptionText = "گزینه نامعتبر است"
)

// ErrInvalidAction is returned when the current state does not handle the action
var ErrInvalidAction = errors.New("action not available in current view")

// Service is what the controller needs from the console service
type Service interface {
	RecordStatus(ctx context.Context, entry models.StatusEntry) (validator.ValidationResult, error)
	RecordAlert(ctx context.Context, entry models.AlertEntry) (validator.ValidationResult, error)
	Reports(ctx context.Context) (models.Reports, error)
	SimulateSensor(ctx context.Context) (sensor.Reading, error)
	GenerateReport(ctx context.Context) (report.Document, string, error)
}

// Event is one user action, with form values for submissions
type Event struct {
	Action Action            `json:"action"`
	Fields map[string]string `json:"fields,omitempty"`
}

// EventSource supplies the next event for the view being shown.
// It returns io.EOF when the user has gone away.
type EventSource interface {
	Next(ctx context.Context, view View) (Event, error)
}

// Renderer presents a view
type Renderer interface {
	Render(view View) error
}

// Controller is the presentation-independent state machine of the console
type Controller struct {
	svc    Service
	logger *zap.Logger
}

// New creates a new controller
func New(svc Service, logger *zap.Logger) *Controller {
	return &Controller{svc: svc, logger: logger}
}

// Start returns the initial view
func (c *Controller) Start() View {
	return newView(MainMenu, mainTitle)
}

// Dispatch applies ev to view and returns the next view. The input view is never modified.
// On error the returned view is the input view.
func (c *Controller) Dispatch(ctx context.Context, view View, ev Event) (View, error) {
	if !view.Accepts(ev.Action) {
		return view, fmt.Errorf("%w: %q in %s", ErrInvalidAction, ev.Action, view.State)
	}

	c.logger.Debug("dispatching event",
		zap.String("state", string(view.State)),
		zap.String("action", string(ev.Action)),
	)

	switch ev.Action {
	case ActionBack:
		return c.Start(), nil
	case ActionExit:
		return newView(Terminated, mainTitle), nil
	case ActionRecordStatus:
		return formView(StatusForm, statusFormTitle, statusFields), nil
	case ActionRecordAlert:
		return formView(AlertForm, alertFormTitle, alertFields), nil
	case ActionSubmit:
		return c.submit(ctx, view, ev)
	case ActionShowReports:
		return c.showReports(ctx, view)
	case ActionSimulateSensor:
		return c.simulateSensor(ctx, view)
	case ActionGeneratePDF:
		return c.generatePDF(ctx, view)
	}

	return view, fmt.Errorf("%w: %q", ErrInvalidAction, ev.Action)
}

func formView(state State, title string, fields []Field) View {
	v := newView(state, title)
	v.Form = fields
	v.Values = mergeValues(fields, nil, nil)
	return v
}

func (c *Controller) submit(ctx context.Context, view View, ev Event) (View, error) {
	var (
		result validator.ValidationResult
		body   string
		err    error
	)

	values := mergeValues(view.Form, view.Values, ev.Fields)

	switch view.State {
	case StatusForm:
		result, err = c.svc.RecordStatus(ctx, models.StatusEntry{
			Date:   values[FieldDate],
			Status: values[FieldStatus],
		})
		body = statusSavedBody
	case AlertForm:
		result, err = c.svc.RecordAlert(ctx, models.AlertEntry{
			Type:        values[FieldAlertType],
			Description: values[FieldDescription],
		})
		body = alertSavedBody
	}
	if err != nil {
		return view, err
	}

	if !result.IsValid {
		next := view
		next.Values = values
		next.Notice = result.Reason
		return next, nil
	}

	next := newView(ResultView, view.Title)
	next.Body = body
	return next, nil
}

func (c *Controller) showReports(ctx context.Context, view View) (View, error) {
	reports, err := c.svc.Reports(ctx)
	if err != nil {
		return view, err
	}

	next := newView(ReportsView, reportsTitle)
	next.Body = statusLogHeading + reports.Status + "\n" + alertsLogHeading + reports.Alerts
	next.Reports = &reports
	return next, nil
}

func (c *Controller) simulateSensor(ctx context.Context, view View) (View, error) {
	reading, err := c.svc.SimulateSensor(ctx)
	if err != nil {
		return view, err
	}

	next := newView(SensorResultView, sensorTitle)
	next.Body = reading.Message
	next.Reading = &reading
	return next, nil
}

func (c *Controller) generatePDF(ctx context.Context, view View) (View, error) {
	doc, path, err := c.svc.GenerateReport(ctx)
	if err != nil {
		return view, err
	}

	next := newView(PdfConfirmView, pdfTitle)
	next.Notice = pdfReadyNotice
	next.Body = path
	next.Report = &doc
	next.ReportPath = path
	return next, nil
}

// Run drives one session: render, wait for an event, dispatch, repeat.
// It returns nil when the session is exited or the source reaches io.EOF.
func (c *Controller) Run(ctx context.Context, src EventSource, out Renderer) error {
	view := c.Start()

	for {
		if err := out.Render(view); err != nil {
			return fmt.Errorf("failed to render %s: %w", view.State, err)
		}
		if view.Done() {
			c.logger.Info("session exited")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := src.Next(ctx, view)
		if errors.Is(err, io.EOF) {
			c.logger.Info("event source closed, ending session")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		next, err := c.Dispatch(ctx, view, ev)
		if errors.Is(err, ErrInvalidAction) {
			c.logger.Debug("ignored invalid action", zap.Error(err))
			view = view.withNotice(invalidOptionText)
			continue
		}
		if err != nil {
			return err
		}
		view = next
	}
}
