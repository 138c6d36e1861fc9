package treatment

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medisync/medisync/internal/domain"
	"github.com/medisync/medisync/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:patientId/treatments", h.ListTreatments)
	api.POST("/patients/:patientId/treatments", h.CreateTreatment)
	api.GET("/treatments/:id", h.GetTreatment)
	api.PATCH("/treatments/:id", h.UpdateTreatment)
	api.PUT("/treatments/:id", h.UpdateTreatment)
	api.DELETE("/treatments/:id", h.DeleteTreatment)
}

func (h *Handler) ListTreatments(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	patientID, err := domain.ParamID(c, "patientId", "patient")
	if err != nil {
		return err
	}
	list, err := h.svc.History(c.Request().Context(), owner, patientID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateTreatment(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	patientID, err := domain.ParamID(c, "patientId", "patient")
	if err != nil {
		return err
	}
	var in NewTreatment
	if err := domain.BindBody(c, &in); err != nil {
		return err
	}
	t, err := h.svc.Record(c.Request().Context(), owner, patientID, in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTreatment(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "treatment")
	if err != nil {
		return err
	}
	t, ok := h.svc.Get(c.Request().Context(), id, owner)
	if !ok {
		return domain.NotFound("Treatment not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTreatment(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "treatment")
	if err != nil {
		return err
	}
	var p Patch
	if err := domain.BindBody(c, &p); err != nil {
		return err
	}
	t, ok, err := h.svc.Revise(c.Request().Context(), id, owner, p)
	if err != nil {
		return mapError(err)
	}
	if !ok {
		return domain.NotFound("Treatment not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "treatment")
	if err != nil {
		return err
	}
	if !h.svc.Delete(c.Request().Context(), id, owner) {
		return domain.NotFound("Treatment not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// mapError turns service errors into responses. A patient in the path that
// is not the caller's is a 404. Foreign ids in the body are invalid input.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return domain.NotFound("Patient not found")
	case errors.Is(err, ErrMedicationNotFound):
		var verr domain.ValidationError
		verr.Add("medicationId", "medication not found")
		return domain.InvalidInput(&verr)
	default:
		if _, ok := domain.IsValidation(err); ok {
			return domain.InvalidInput(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}
