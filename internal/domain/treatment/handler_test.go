package treatment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medisync/medisync/internal/platform/auth"
)

func newTestContext(e *echo.Echo, method, path, body string, owner int64) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if owner > 0 {
		req = req.WithContext(auth.WithUserID(context.Background(), owner))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandler_CreateTreatment(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	c, rec := newTestContext(e, http.MethodPost, "/api/patients/1/treatments",
		`{"medicationId":4,"date":"2024-12-01T10:00:00.000Z","notes":"dose","photoUrls":["/api/treatments/photos/a.png"],"userId":5}`, 1)
	c.SetParamNames("patientId")
	c.SetParamValues("1")

	if err := h.CreateTreatment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["userId"] != float64(1) || got["patientId"] != float64(1) {
		t.Errorf("owner and patient must come from the request context, got %v", got)
	}
	if got["date"] != "2024-12-01T10:00:00Z" {
		t.Errorf("unexpected date %v", got["date"])
	}
}

func TestHandler_CreateTreatment_Errors(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	tests := []struct {
		name      string
		patientID string
		body      string
		want      int
	}{
		{"bad patient id", "abc", `{"medicationId":1,"date":"2024-12-01"}`, http.StatusBadRequest},
		{"foreign patient", "9", `{"medicationId":1,"date":"2024-12-01"}`, http.StatusNotFound},
		{"foreign medication", "1", `{"medicationId":7,"date":"2024-12-01"}`, http.StatusBadRequest},
		{"missing date", "1", `{"medicationId":1}`, http.StatusBadRequest},
		{"bad date", "1", `{"medicationId":1,"date":"yesterday"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(e, http.MethodPost, "/", tt.body, 1)
			c.SetParamNames("patientId")
			c.SetParamValues(tt.patientID)
			if code := httpCode(t, h.CreateTreatment(c)); code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestHandler_ListTreatments(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	c, rec := newTestContext(e, http.MethodGet, "/", "", 1)
	c.SetParamNames("patientId")
	c.SetParamValues("2")
	if err := h.ListTreatments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}

	c, _ = newTestContext(e, http.MethodGet, "/", "", 2)
	c.SetParamNames("patientId")
	c.SetParamValues("2")
	if code := httpCode(t, h.ListTreatments(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_UpdateAndDeleteTreatment(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	if _, err := svc.Record(context.Background(), 1, 1, NewTreatment{MedicationID: 1, Date: at("2024-12-01")}); err != nil {
		t.Fatal(err)
	}

	c, rec := newTestContext(e, http.MethodPatch, "/", `{"notes":"updated"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateTreatment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got TreatmentHistory
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Notes == nil || *got.Notes != "updated" || got.MedicationID != 1 {
		t.Errorf("unexpected update result %+v", got)
	}

	c, _ = newTestContext(e, http.MethodPatch, "/", `{"notes":"x"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("42")
	if code := httpCode(t, h.UpdateTreatment(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}

	c, rec = newTestContext(e, http.MethodDelete, "/", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.DeleteTreatment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c, _ = newTestContext(e, http.MethodGet, "/", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if code := httpCode(t, h.GetTreatment(c)); code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

func TestHandler_UpdateTreatment_ForeignReferences(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	if _, err := svc.Record(context.Background(), 1, 1, NewTreatment{MedicationID: 1, Date: at("2024-12-01")}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"foreign patient", `{"patientId":9}`, "patientId"},
		{"foreign medication", `{"medicationId":7}`, "medicationId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(e, http.MethodPatch, "/", tt.body, 1)
			c.SetParamNames("id")
			c.SetParamValues("1")
			err := h.UpdateTreatment(c)
			if code := httpCode(t, err); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
			body, _ := json.Marshal(err.(*echo.HTTPError).Message)
			if !strings.Contains(string(body), `"field":"`+tt.field+`"`) {
				t.Errorf("expected a %s field error, got %s", tt.field, body)
			}
		})
	}
}
