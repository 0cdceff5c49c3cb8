package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/septivank/mine-safety-console/internal/controller"
	"github.com/septivank/mine-safety-console/internal/models"
	"github.com/septivank/mine-safety-console/internal/report"
	"github.com/septivank/mine-safety-console/internal/sensor"
	"github.com/septivank/mine-safety-console/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	statuses  []models.StatusEntry
	reportErr error
}

func (s *stubService) RecordStatus(ctx context.Context, entry models.StatusEntry) (validator.ValidationResult, error) {
	if entry.Date == "" || entry.Status == "" {
		return validator.ValidationResult{Reason: validator.FillAllFieldsNotice}, nil
	}
	s.statuses = append(s.statuses, entry)
	return validator.ValidationResult{IsValid: true}, nil
}

func (s *stubService) RecordAlert(ctx context.Context, entry models.AlertEntry) (validator.ValidationResult, error) {
	return validator.ValidationResult{IsValid: true}, nil
}

func (s *stubService) Reports(ctx context.Context) (models.Reports, error) {
	return models.Reports{Status: "a", Alerts: "b"}, nil
}

func (s *stubService) SimulateSensor(ctx context.Context) (sensor.Reading, error) {
	return sensor.Reading{Value: 1, Level: sensor.Safe}, nil
}

func (s *stubService) GenerateReport(ctx context.Context) (report.Document, string, error) {
	return report.Document{}, "", s.reportErr
}

func newTestServer(t *testing.T, svc *stubService) (*Server, string) {
	t.Helper()
	reportPath := filepath.Join(t.TempDir(), "report.pdf")
	ctrl := controller.New(svc, zap.NewNop())
	srv := NewServer(ctrl, NewSessionManager(time.Minute), Options{
		ServiceName: "mine-safety-console",
		ReportPath:  reportPath,
	}, zap.NewNop())
	return srv, reportPath
}

func do(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubService{})

	rec := do(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"service":"mine-safety-console"`)
}

func TestSessionLifecycle(t *testing.T) {
	svc := &stubService{}
	srv, _ := newTestServer(t, svc)

	rec := do(t, srv, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeSession(t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, controller.MainMenu, created.View.State)
	assert.Len(t, created.View.Actions, 6)

	eventsPath := "/api/sessions/" + created.ID + "/events"

	rec = do(t, srv, http.MethodPost, eventsPath, controller.Event{Action: controller.ActionRecordStatus})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, controller.StatusForm, decodeSession(t, rec).View.State)

	rec = do(t, srv, http.MethodPost, eventsPath, controller.Event{
		Action: controller.ActionSubmit,
		Fields: map[string]string{controller.FieldDate: "1403/01/01"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	partial := decodeSession(t, rec).View
	assert.Equal(t, controller.StatusForm, partial.State)
	assert.Equal(t, validator.FillAllFieldsNotice, partial.Notice)
	assert.Equal(t, "1403/01/01", partial.Value(controller.FieldDate))

	rec = do(t, srv, http.MethodGet, "/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1403/01/01", decodeSession(t, rec).View.Value(controller.FieldDate))

	rec = do(t, srv, http.MethodPost, eventsPath, controller.Event{
		Action: controller.ActionSubmit,
		Fields: map[string]string{controller.FieldStatus: "خوب"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, controller.ResultView, decodeSession(t, rec).View.State)
	assert.Equal(t, []models.StatusEntry{{Date: "1403/01/01", Status: "خوب"}}, svc.statuses)

	rec = do(t, srv, http.MethodPost, eventsPath, controller.Event{Action: controller.ActionBack})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, eventsPath, controller.Event{Action: controller.ActionExit})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, controller.Terminated, decodeSession(t, rec).View.State)

	rec = do(t, srv, http.MethodGet, "/api/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventErrors(t *testing.T) {
	tests := []struct {
		name       string
		svc        *stubService
		session    bool
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown session",
			svc:        &stubService{},
			body:       controller.Event{Action: controller.ActionShowReports},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "missing action",
			svc:        &stubService{},
			session:    true,
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "action not valid in state",
			svc:        &stubService{},
			session:    true,
			body:       controller.Event{Action: controller.ActionSubmit},
			wantStatus: http.StatusConflict,
			wantCode:   "INVALID_ACTION",
		},
		{
			name:       "operation failure",
			svc:        &stubService{reportErr: errors.New("disk full")},
			session:    true,
			body:       controller.Event{Action: controller.ActionGeneratePDF},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.svc)

			id := "missing"
			if tt.session {
				id = decodeSession(t, do(t, srv, http.MethodPost, "/api/sessions", nil)).ID
			}

			rec := do(t, srv, http.MethodPost, "/api/sessions/"+id+"/events", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)

			if tt.session {
				rec = do(t, srv, http.MethodGet, "/api/sessions/"+id, nil)
				require.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, controller.MainMenu, decodeSession(t, rec).View.State)
			}
		})
	}
}

func TestReport(t *testing.T) {
	srv, reportPath := newTestServer(t, &stubService{})

	rec := do(t, srv, http.MethodGet, "/api/report", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	content := []byte("%PDF-1.3\n%minimal\n")
	require.NoError(t, os.WriteFile(reportPath, content, 0o644))

	rec = do(t, srv, http.MethodGet, "/api/report", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestSessionManager(t *testing.T) {
	m := NewSessionManager(time.Minute)

	s := m.Create(controller.View{State: controller.MainMenu})
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, err := s.Update(func(current controller.View) (controller.View, error) {
		return controller.View{State: controller.ReportsView}, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, controller.MainMenu, s.View().State)

	m.Delete(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
}
