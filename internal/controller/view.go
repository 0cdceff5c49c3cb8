package controller

import (
	"github.com/septivank/mine-safety-console/internal/models"
	"github.com/septivank/mine-safety-console/internal/report"
	"github.com/septivank/mine-safety-console/internal/sensor"
)

// State is a screen of the console
type State string

const (
	MainMenu         State = "main_menu"
	StatusForm       State = "status_form"
	AlertForm        State = "alert_form"
	ResultView       State = "result"
	ReportsView      State = "reports"
	SensorResultView State = "sensor_result"
	PdfConfirmView   State = "pdf_confirm"
	Terminated       State = "terminated"
)

// Action is a user intent delivered to the controller
type Action string

const (
	ActionRecordStatus   Action = "record_status"
	ActionRecordAlert    Action = "record_alert"
	ActionShowReports    Action = "show_reports"
	ActionGeneratePDF    Action = "generate_pdf"
	ActionSimulateSensor Action = "simulate_sensor"
	ActionExit           Action = "exit"
	ActionSubmit         Action = "submit"
	ActionBack           Action = "back"
)

// Form field keys
const (
	FieldDate        = "date"
	FieldStatus      = "status"
	FieldAlertType   = "alert_type"
	FieldDescription = "description"
)

var actionLabels = map[Action]string{
	ActionRecordStatus:   "ثبت وضعیت ایمنی",
	ActionRecordAlert:    "ثبت هشدار",
	ActionShowReports:    "نمایش گزارش‌ها",
	ActionGeneratePDF:    "ساخت PDF",
	ActionSimulateSensor: "شبیه‌سازی سنسور متان",
	ActionExit:           "خروج",
	ActionSubmit:         "ثبت",
	ActionBack:           "بازگشت",
}

// Label returns the button text of an action
func Label(a Action) string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return string(a)
}

// allowed lists the actions each state accepts, in display order
var allowed = map[State][]Action{
	MainMenu: {
		ActionRecordStatus,
		ActionRecordAlert,
		ActionShowReports,
		ActionGeneratePDF,
		ActionSimulateSensor,
		ActionExit,
	},
	StatusForm:       {ActionSubmit, ActionBack},
	AlertForm:        {ActionSubmit, ActionBack},
	ResultView:       {ActionBack},
	ReportsView:      {ActionBack},
	SensorResultView: {ActionBack},
	PdfConfirmView:   {ActionBack},
	Terminated:       nil,
}

// Field describes one input of a form
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Hint  string `json:"hint"`
}

var (
	statusFields = []Field{
		{Key: FieldDate, Label: "تاریخ", Hint: "1403/01/01"},
		{Key: FieldStatus, Label: "وضعیت ایمنی", Hint: "مثلاً خوب / نیمه خوب / خطرناک"},
	}
	alertFields = []Field{
		{Key: FieldAlertType, Label: "نوع هشدار", Hint: "گاز متان، ریزش، تجهیزات"},
		{Key: FieldDescription, Label: "توضیحات", Hint: "توضیحات خود را بنویسید..."},
	}
)

// View is an immutable snapshot of what the user sees. Transitions return new values.
type View struct {
	State   State             `json:"state"`
	Title   string            `json:"title"`
	Body    string            `json:"body,omitempty"`
	Notice  string            `json:"notice,omitempty"`
	Form    []Field           `json:"form,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
	Actions []Action          `json:"actions"`

	Reports    *models.Reports  `json:"reports,omitempty"`
	Reading    *sensor.Reading  `json:"reading,omitempty"`
	Report     *report.Document `json:"report,omitempty"`
	ReportPath string           `json:"report_path,omitempty"`
}

// Value returns the current content of a form field
func (v View) Value(key string) string {
	return v.Values[key]
}

// Done reports whether the session has ended
func (v View) Done() bool {
	return v.State == Terminated
}

// Accepts reports whether the view's state handles a
func (v View) Accepts(a Action) bool {
	for _, candidate := range allowed[v.State] {
		if candidate == a {
			return true
		}
	}
	return false
}

func (v View) withNotice(notice string) View {
	next := v
	next.Values = copyValues(v.Values)
	next.Notice = notice
	return next
}

func newView(state State, title string) View {
	return View{
		State:   state,
		Title:   title,
		Actions: append([]Action(nil), allowed[state]...),
	}
}

func copyValues(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, val := range src {
		dst[k] = val
	}
	return dst
}

// mergeValues returns a new map holding base overridden by updates, restricted to the form's keys
func mergeValues(fields []Field, base, updates map[string]string) map[string]string {
	merged := make(map[string]string, len(fields))
	for _, f := range fields {
		merged[f.Key] = base[f.Key]
		if val, ok := updates[f.Key]; ok {
			merged[f.Key] = val
		}
	}
	return merged
}
