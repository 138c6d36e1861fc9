package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medisync/medisync/internal/config"
	"github.com/medisync/medisync/internal/platform/auth"
	"github.com/medisync/medisync/internal/platform/blobstore"
	"github.com/medisync/medisync/internal/platform/middleware"
	"github.com/medisync/medisync/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:               "development",
		SessionSecret:     strings.Repeat("k", 32),
		SessionTTL:        time.Hour,
		CORSOrigins:       []string{"http://localhost:5173"},
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
		RequestTimeout:    5 * time.Second,
		BodyLimit:         "1M",
		UploadLimit:       "8M",
		ExpiryHorizonDays: 30,
		DeletePolicy:      "orphan",
		BcryptCost:        4,
		PhotoStore:        "memory",
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	revoked := auth.NewTokenRevocationStore(time.Minute)
	t.Cleanup(revoked.Close)
	return newServer(testConfig(), zerolog.Nop(), store.NewSeeded(), blobstore.NewInMemoryBlobStore(0), revoked)
}

type client struct {
	t      *testing.T
	e      *echo.Echo
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	c := &client{t: t, e: newTestServer(t)}

	rec := c.do(http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}

	rec = c.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	for _, want := range []string{`medisync_store_records{kind="patient"} 4`, "http_requests_total"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestServer_RequiresSession(t *testing.T) {
	c := &client{t: t, e: newTestServer(t)}

	for _, path := range []string{"/api/patients", "/api/medications", "/api/dashboard/stats", "/api/auth/me"} {
		if rec := c.do(http.MethodGet, path, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestServer_RecordWorkflow(t *testing.T) {
	c := &client{t: t, e: newTestServer(t)}

	rec := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "house", "email": "house@example.com", "password": "vicodin", "name": "Dr. House",
	})
	if rec.Code != http.StatusCreated || c.cookie == nil {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}

	// A fresh account sees none of the demo data.
	var stats map[string]int
	decode(t, c.do(http.MethodGet, "/api/dashboard/stats", nil), &stats)
	if stats["totalPatients"] != 0 || stats["totalMedications"] != 0 {
		t.Fatalf("expected empty stats for a new user, got %v", stats)
	}

	rec = c.do(http.MethodPost, "/api/patients", map[string]string{"name": "Ada Lovelace"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create patient: %d %s", rec.Code, rec.Body.String())
	}
	var p struct{ ID int64 }
	decode(t, rec, &p)

	expires := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")
	rec = c.do(http.MethodPost, "/api/medications", map[string]any{
		"name": "Heparin", "category": "other", "quantity": 1, "minStock": 5, "expirationDate": expires,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create medication: %d %s", rec.Code, rec.Body.String())
	}
	var m struct{ ID int64 }
	decode(t, rec, &m)

	rec = c.do(http.MethodPost, "/api/patients/"+strconv.FormatInt(p.ID, 10)+"/treatments", map[string]any{
		"medicationId": m.ID, "date": "2024-12-01T10:00:00Z", "notes": "loading dose",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record treatment: %d %s", rec.Code, rec.Body.String())
	}

	var history []map[string]any
	decode(t, c.do(http.MethodGet, "/api/patients/"+strconv.FormatInt(p.ID, 10)+"/treatments", nil), &history)
	if len(history) != 1 || history[0]["notes"] != "loading dose" {
		t.Fatalf("unexpected history %v", history)
	}

	decode(t, c.do(http.MethodGet, "/api/dashboard/stats", nil), &stats)
	want := map[string]int{"totalPatients": 1, "totalMedications": 1, "lowStockCount": 1, "expiringSoonCount": 1}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("%s: expected %d, got %d", k, v, stats[k])
		}
	}

	// Demo records belong to another owner.
	if rec := c.do(http.MethodGet, "/api/patients/1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another owner's patient, got %d", rec.Code)
	}

	var audit struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}
	decode(t, c.do(http.MethodGet, "/api/audit", nil), &audit)
	if audit.Total < 3 {
		t.Errorf("expected patient and treatment access in the audit trail, got %d entries", audit.Total)
	}

	if rec := c.do(http.MethodPost, "/api/auth/logout", nil); rec.Code != http.StatusOK && rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
}

func TestPrintAlerts(t *testing.T) {
	var out bytes.Buffer
	if err := printAlerts(&out, store.DemoOwnerID, 30, "2024-12-20"); err != nil {
		t.Fatalf("printAlerts: %v", err)
	}
	var got struct {
		LowStock     []struct{ Name string } `json:"lowStock"`
		ExpiringSoon []struct{ Name string } `json:"expiringSoon"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.LowStock) != 1 || got.LowStock[0].Name != "Amoxicillin 500mg" {
		t.Errorf("unexpected low stock %+v", got.LowStock)
	}
	if len(got.ExpiringSoon) != 1 || got.ExpiringSoon[0].Name != "Albuterol Inhaler" {
		t.Errorf("unexpected expiring %+v", got.ExpiringSoon)
	}

	if err := printAlerts(&out, 1, 0, ""); err == nil {
		t.Error("expected error for zero horizon")
	}
	if err := printAlerts(&out, 1, 30, "20-12-2024"); err == nil {
		t.Error("expected error for a malformed date")
	}
}

func TestHashPasswordCmd(t *testing.T) {
	cmd := hashPasswordCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--cost", "4", "s3cret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if !(auth.BcryptHasher{}).Verify(hash, "s3cret") {
		t.Errorf("printed hash does not verify: %q", hash)
	}
}
