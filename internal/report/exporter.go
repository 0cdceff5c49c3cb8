package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/septivank/mine-safety-console/internal/logstore"
	"go.uber.org/zap"
)

const (
	Title        = "📊 گزارش ایمنی معدن"
	AlertsHeader = "⚠️ هشدارها:"
)

// page layout, millimetres and points
const (
	pageMargin      = 10.0
	pageBreakMargin = 15.0
	titleHeight     = 10.0
	rowHeight       = 8.0
	sectionGap      = 10.0
	baseFontSize    = 12.0
	alertFontSize   = 10.0

	coreFontFamily = "Arial"
	utf8FontFamily = "report"
)

// LineReader is the part of the log store the exporter reads from
type LineReader interface {
	Lines(id logstore.FileID) ([]string, bool, error)
}

// Document is the laid-out content of a report before it is rendered
type Document struct {
	Title        string   `json:"title"`
	Rows         []string `json:"rows"`
	AlertsHeader string   `json:"alerts_header,omitempty"`
	AlertRows    []string `json:"alert_rows,omitempty"`
	Pages        int      `json:"pages"`
}

// HasAlerts reports whether the alerts section is rendered
func (d Document) HasAlerts() bool {
	return len(d.AlertRows) > 0
}

// RowCount is the number of rendered rows below the title, the alerts header included
func (d Document) RowCount() int {
	n := len(d.Rows)
	if d.HasAlerts() {
		n += 1 + len(d.AlertRows)
	}
	return n
}

// Options configures the exporter
type Options struct {
	OutputPath string
	// FontPath is a UTF-8 TrueType font. Empty selects core Arial with the cp1252 translator.
	FontPath string
	Compress bool
}

// Exporter renders both logs into a PDF file. Generate calls are serialised because every
// caller shares one output path.
type Exporter struct {
	mu     sync.Mutex
	logs   LineReader
	opts   Options
	font   []byte
	logger *zap.Logger
}

// NewExporter creates a new exporter
func NewExporter(logs LineReader, opts Options, logger *zap.Logger) (*Exporter, error) {
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("report output path is empty")
	}

	e := &Exporter{logs: logs, opts: opts, logger: logger}
	if opts.FontPath != "" {
		font, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("report font is not accessible: %w", err)
		}
		if err := checkFont(font); err != nil {
			return nil, fmt.Errorf("report font %s is not usable: %w", opts.FontPath, err)
		}
		e.font = font
	}
	return e, nil
}

// OutputPath returns where Generate writes the PDF
func (e *Exporter) OutputPath() string {
	return e.opts.OutputPath
}

// Build reads both logs and lays out the document without rendering it
func (e *Exporter) Build() (Document, error) {
	doc := Document{Title: Title}

	reports, _, err := e.logs.Lines(logstore.Reports)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read status log: %w", err)
	}
	doc.Rows = trimRows(reports)

	alerts, _, err := e.logs.Lines(logstore.Alerts)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read alert log: %w", err)
	}
	if len(alerts) > 0 {
		doc.AlertsHeader = AlertsHeader
		doc.AlertRows = trimRows(alerts)
	}

	return doc, nil
}

// Generate builds the document and writes it to the output path, replacing any earlier file
func (e *Exporter) Generate() (Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.Build()
	if err != nil {
		return Document{}, err
	}

	if err := os.MkdirAll(filepath.Dir(e.opts.OutputPath), 0o755); err != nil {
		return Document{}, fmt.Errorf("failed to create report directory: %w", err)
	}

	pages, err := e.render(doc)
	if err != nil {
		return Document{}, err
	}
	doc.Pages = pages

	e.logger.Info("report generated",
		zap.String("path", e.opts.OutputPath),
		zap.Int("rows", len(doc.Rows)),
		zap.Int("alert_rows", len(doc.AlertRows)),
		zap.Int("pages", pages),
	)

	return doc, nil
}

func (e *Exporter) render(doc Document) (int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.opts.Compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageBreakMargin)
	pdf.SetTitle(basicPlane(doc.Title), true)
	pdf.SetCreator("mine-safety-console", true)

	family := coreFontFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if tr == nil {
		tr = func(s string) string { return s }
	}
	if e.font != nil {
		family = utf8FontFamily
		pdf.AddUTF8FontFromBytes(family, "", e.font)
		pdf.AddUTF8FontFromBytes(family, "B", e.font)
		if pdf.Err() {
			return 0, fmt.Errorf("failed to load report font %s: %w", e.opts.FontPath, pdf.Error())
		}
		// the UTF-8 font tables stop at U+FFFF
		tr = basicPlane
	}

	pdf.AddPage()
	pdf.SetFont(family, "", baseFontSize)

	pdf.CellFormat(0, titleHeight, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(sectionGap)
	for _, row := range doc.Rows {
		pdf.CellFormat(0, rowHeight, tr(row), "", 1, "", false, 0, "")
	}

	if doc.HasAlerts() {
		pdf.Ln(sectionGap)
		pdf.SetFont(family, "B", baseFontSize)
		pdf.CellFormat(0, titleHeight, tr(doc.AlertsHeader), "", 1, "", false, 0, "")
		pdf.SetFont(family, "", alertFontSize)
		for _, row := range doc.AlertRows {
			pdf.CellFormat(0, rowHeight, tr(row), "", 1, "", false, 0, "")
		}
	}

	pages := pdf.PageCount()
	if err := e.write(pdf); err != nil {
		return 0, fmt.Errorf("failed to write report %s: %w", e.opts.OutputPath, err)
	}

	return pages, nil
}

// write renders into a temporary file next to the output and renames it into place,
// so readers never see a partial report.
func (e *Exporter) write(pdf *fpdf.Fpdf) error {
	dir, name := filepath.Split(e.opts.OutputPath)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	err = pdf.Output(tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpPath, e.opts.OutputPath)
	}
	if err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			e.logger.Warn("failed to remove temporary report", zap.String("path", tmpPath), zap.Error(removeErr))
		}
		return err
	}
	return nil
}

// checkFont loads font into a scratch document. fpdf skips fonts it cannot parse, so the
// failure only shows once the family is selected.
func checkFont(font []byte) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(utf8FontFamily, "", font)
	pdf.AddPage()
	pdf.SetFont(utf8FontFamily, "", baseFontSize)
	return pdf.Error()
}

// basicPlane drops runes above U+FFFF, such as emoji, and the space they leave at either end
func basicPlane(s string) string {
	trimmed := strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return -1
		}
		return r
	}, s)
	if len(trimmed) == len(s) {
		return s
	}
	return strings.TrimSpace(trimmed)
}

func trimRows(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return rows
}
