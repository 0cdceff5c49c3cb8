package logstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// FileID names one of the flat log files
type FileID string

const (
	Reports FileID = "reports"
	Alerts  FileID = "alerts"
)

// Fallback texts returned by ReadAll when a log file has not been created yet
const (
	ReportsFallback = "هنوز وضعیتی ثبت نشده."
	AlertsFallback  = "هیچ هشداری ثبت نشده."
)

// ErrUnknownFile is returned for a FileID the store was not configured with
var ErrUnknownFile = errors.New("unknown log file")

// Paths maps each log to its location on disk
type Paths struct {
	Reports string
	Alerts  string
}

// Store is an append-only text log. Every Append opens, writes and closes the file.
type Store struct {
	mu     sync.Mutex
	paths  map[FileID]string
	logger *zap.Logger
}

// NewStore creates a store over the given paths, creating parent directories as needed
func NewStore(paths Paths, logger *zap.Logger) (*Store, error) {
	s := &Store{
		paths: map[FileID]string{
			Reports: paths.Reports,
			Alerts:  paths.Alerts,
		},
		logger: logger,
	}

	for id, path := range s.paths {
		if path == "" {
			return nil, fmt.Errorf("path for %s log is empty", id)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s log: %w", id, err)
		}
	}

	return s, nil
}

// Path returns the file backing id
func (s *Store) Path(id FileID) (string, error) {
	path, ok := s.paths[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFile, id)
	}
	return path, nil
}

// Append writes line followed by a newline at the end of the log
func (s *Store) Append(id FileID, line string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s log: %w", id, err)
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s log: %w", id, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s log: %w", id, err)
	}

	s.logger.Debug("appended log line",
		zap.String("file", string(id)),
		zap.Int("bytes", len(line)+1),
	)

	return nil
}

// ReadAll returns the full content of the log, or its fallback text if the file does not exist
func (s *Store) ReadAll(id FileID) (string, error) {
	path, err := s.Path(id)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Fallback(id), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s log: %w", id, err)
	}

	return string(content), nil
}

// Lines returns the log split into lines. exists is false when the file has not been created.
func (s *Store) Lines(id FileID) (lines []string, exists bool, err error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, false, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s log: %w", id, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, true, fmt.Errorf("failed to read %s log: %w", id, err)
		}
	}

	return lines, true, nil
}

// Fallback returns the text shown for a log that does not exist yet
func Fallback(id FileID) string {
	switch id {
	case Reports:
		return ReportsFallback
	case Alerts:
		return AlertsFallback
	default:
		return ""
	}
}
