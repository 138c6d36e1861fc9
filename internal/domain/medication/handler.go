package medication

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
	api.GET("/medications", h.ListMedications)
	api.POST("/medications", h.CreateMedication)
	api.GET("/medications/:id", h.GetMedication)
	api.PUT("/medications/:id", h.UpdateMedication)
	api.PATCH("/medications/:id", h.UpdateMedication)
	api.DELETE("/medications/:id", h.DeleteMedication)
}

// ListMedications accepts ?category=, ?status= and ?search= filters.
func (h *Handler) ListMedications(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}

	var f Filter
	if cat := c.QueryParam("category"); cat != "" && cat != "all" {
		f.Category = Category(cat)
		if !f.Category.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category")
		}
	}
	if f.Status, err = ParseStatus(c.QueryParam("status")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}
	f.Search = c.QueryParam("search")

	return c.JSON(http.StatusOK, h.svc.List(c.Request().Context(), owner, f))
}

func (h *Handler) GetMedication(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "medication")
	if err != nil {
		return err
	}
	m, ok := h.svc.Get(c.Request().Context(), id, owner)
	if !ok {
		return domain.NotFound("Medication not found")
	}
	return c.JSON(http.StatusOK, h.svc.Item(m))
}

func (h *Handler) CreateMedication(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	var in NewMedication
	if err := domain.BindBody(c, &in); err != nil {
		return err
	}
	m, err := h.svc.Create(c.Request().Context(), owner, in)
	if err != nil {
		return domain.InvalidInput(err)
	}
	return c.JSON(http.StatusCreated, h.svc.Item(m))
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "medication")
	if err != nil {
		return err
	}
	var p Patch
	if err := domain.BindBody(c, &p); err != nil {
		return err
	}
	m, ok, err := h.svc.Update(c.Request().Context(), id, owner, p)
	if err != nil {
		return domain.InvalidInput(err)
	}
	if !ok {
		return domain.NotFound("Medication not found")
	}
	return c.JSON(http.StatusOK, h.svc.Item(m))
}

func (h *Handler) DeleteMedication(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	id, err := domain.ParamID(c, "id", "medication")
	if err != nil {
		return err
	}
	ok, err := h.svc.Delete(c.Request().Context(), id, owner)
	if err != nil {
		return domain.Conflict(err)
	}
	if !ok {
		return domain.NotFound("Medication not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Medication deleted successfully"})
}
