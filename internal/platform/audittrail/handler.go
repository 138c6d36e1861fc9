package audittrail

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medisync/medisync/internal/platform/auth"
	"github.com/medisync/medisync/pkg/pagination"
)

// Handler lets a user review access to their own patients' records.
type Handler struct {
	trail *Trail
	now   func() time.Time
}

func NewHandler(trail *Trail) *Handler {
	return &Handler{trail: trail, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit", h.Search)
	api.GET("/audit/export", h.Export)
}

// parseQuery reads ?patientId, ?resourceType, ?action, ?since and ?until.
func parseQuery(c echo.Context) (Query, error) {
	q := Query{
		ResourceType: c.QueryParam("resourceType"),
		Action:       c.QueryParam("action"),
	}
	if v := c.QueryParam("patientId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return q, echo.NewHTTPError(http.StatusBadRequest, "Invalid patient ID")
		}
		q.PatientID = id
	}
	for name, dst := range map[string]**time.Time{"since": &q.Since, "until": &q.Until} {
		if v := c.QueryParam(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return q, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s timestamp", name))
			}
			*dst = &t
		}
	}
	return q, nil
}

func (h *Handler) Search(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	entries, total := h.trail.Search(owner, q, page)
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, page))
}

// Export streams every matching entry as CSV.
func (h *Handler) Export(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	q, err := parseQuery(c)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="medisync-audit-%s.csv"`, h.now().UTC().Format("20060102_150405")))
	c.Response().WriteHeader(http.StatusOK)
	return h.trail.ExportCSV(c.Response(), owner, q)
}
