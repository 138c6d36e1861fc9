package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medisync/medisync/internal/platform/auth"
)

// AuditEntry records one access to patient data: who touched which record,
// how, and with what outcome.
type AuditEntry struct {
	UserID       int64     `json:"userId"`
	ResourceType string    `json:"resourceType"`
	ResourceID   int64     `json:"resourceId,omitempty"`
	PatientID    int64     `json:"patientId,omitempty"`
	Action       string    `json:"action"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	Path         string    `json:"path"`
	Method       string    `json:"method"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"requestId"`
	StatusCode   int       `json:"statusCode"`
}

// AuditRecorder persists audit entries somewhere other than the log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every request that reads or changes patient or treatment
// records. Entries go to the structured log and to every recorder given.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			resource, ok := auditedResource(path)
			if !ok {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, isHTTP := err.(*echo.HTTPError); isHTTP {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			entry := AuditEntry{
				Timestamp:    time.Now().UTC(),
				ResourceType: resource,
				Path:         path,
				Method:       req.Method,
				IPAddress:    c.RealIP(),
				UserAgent:    req.UserAgent(),
				StatusCode:   status,
				Action:       httpMethodToAction(req.Method),
			}
			entry.UserID, _ = auth.UserIDFromContext(req.Context())
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}
			entry.ResourceID, entry.PatientID = extractIDs(path)

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "phi_audit").
				Str("request_id", entry.RequestID).
				Int64("user_id", entry.UserID).
				Str("resource_type", entry.ResourceType).
				Int64("resource_id", entry.ResourceID).
				Int64("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("phi_access")

			return err
		}
	}
}

// auditedResource reports the record kind a path addresses. Photo uploads
// and downloads count as treatment access.
func auditedResource(path string) (string, bool) {
	switch {
	case strings.HasPrefix(path, "/api/patients"):
		return "patients", true
	case strings.HasPrefix(path, "/api/treatments"):
		return "treatments", true
	}
	return "", false
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractIDs pulls numeric ids out of the audited paths:
//
//	/api/patients/7                -> resource 7, patient 7
//	/api/patients/7/treatments     -> resource 0, patient 7
//	/api/treatments/12             -> resource 12, patient 0
func extractIDs(path string) (resourceID, patientID int64) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) < 3 {
		return 0, 0
	}
	id, err := strconv.ParseInt(segs[2], 10, 64)
	if err != nil {
		return 0, 0
	}
	switch segs[1] {
	case "patients":
		if len(segs) == 3 {
			return id, id
		}
		return 0, id
	case "treatments":
		return id, 0
	}
	return 0, 0
}
