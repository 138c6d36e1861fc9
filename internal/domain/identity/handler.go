package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medisync/medisync/internal/domain"
	"github.com/medisync/medisync/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	sessions *auth.SessionManager
}

func NewHandler(svc *Service, sessions *auth.SessionManager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)
}

type userResponse struct {
	User *User `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := domain.BindBody(c, &in); err != nil {
		return err
	}
	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		}
		if _, ok := domain.IsValidation(err); ok {
			return domain.InvalidInput(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed").SetInternal(err)
	}
	if err := h.startSession(c, u); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: u})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := domain.BindBody(c, &in); err != nil {
		return err
	}
	u, err := h.svc.Authenticate(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		if _, ok := domain.IsValidation(err); ok {
			return domain.InvalidInput(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed").SetInternal(err)
	}
	if err := h.startSession(c, u); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: u})
}

// Logout revokes the presented session, if any, and clears the cookie.
func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if claims, err := h.sessions.Parse(cookie.Value); err == nil {
			h.sessions.Revoke(claims)
		}
	}
	h.sessions.ClearCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) Me(c echo.Context) error {
	uid, err := auth.OwnerID(c)
	if err != nil {
		return err
	}
	u, ok := h.svc.Get(c.Request().Context(), uid)
	if !ok {
		return domain.NotFound("User not found")
	}
	return c.JSON(http.StatusOK, userResponse{User: u})
}

func (h *Handler) startSession(c echo.Context, u *User) error {
	token, claims, err := h.sessions.Issue(u.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not start session").SetInternal(err)
	}
	h.sessions.SetCookie(c, token, claims)
	return nil
}
