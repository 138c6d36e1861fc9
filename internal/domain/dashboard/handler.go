package dashboard

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medisync/medisync/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard/stats", h.GetStats)
	api.GET("/dashboard/alerts", h.GetAlerts)
	api.GET("/dashboard/report", h.GetReport)
}

func (h *Handler) GetStats(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.Stats(c.Request().Context(), owner))
}

func (h *Handler) GetAlerts(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.Alerts(c.Request().Context(), owner))
}

// GetReport answers with a downloadable JSON report.
func (h *Handler) GetReport(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	kind, err := ParseReportType(c.QueryParam("type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid report type")
	}
	r := h.svc.Report(c.Request().Context(), owner, kind)
	name := fmt.Sprintf("medisync-%s-report-%s.json", r.Type, r.GeneratedAt.Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.JSON(http.StatusOK, r)
}
