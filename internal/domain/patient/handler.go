package patient

import (
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
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.PATCH("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
}

func (h *Handler) ListPatients(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.List(c.Request().Context(), owner, c.QueryParam("search")))
}

func (h *Handler) GetPatient(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "patient")
	if err != nil {
		return err
	}
	p, ok := h.svc.Get(c.Request().Context(), id, owner)
	if !ok {
		return domain.NotFound("Patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	var in NewPatient
	if err := domain.BindBody(c, &in); err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), owner, in)
	if err != nil {
		return domain.InvalidInput(err)
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdatePatient serves both PUT and PATCH; either way only the supplied
// fields change.
func (h *Handler) UpdatePatient(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "patient")
	if err != nil {
		return err
	}
	var p Patch
	if err := domain.BindBody(c, &p); err != nil {
		return err
	}
	updated, ok, err := h.svc.Update(c.Request().Context(), id, owner, p)
	if err != nil {
		return domain.InvalidInput(err)
	}
	if !ok {
		return domain.NotFound("Patient not found")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "patient")
	if err != nil {
		return err
	}
	ok, err := h.svc.Delete(c.Request().Context(), id, owner)
	if err != nil {
		return domain.Conflict(err)
	}
	if !ok {
		return domain.NotFound("Patient not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Patient deleted successfully"})
}
