package record

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/imuniza/imuniza/internal/domain/status"
	"github.com/imuniza/imuniza/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHealth, auth.RoleSchool))
	g.GET("/students/:id/vaccinations/", h.ListByStudent)
	g.POST("/students/:id/vaccinations/", h.Create)
	g.PATCH("/vaccinations/:id/", h.Update)
	g.DELETE("/vaccinations/:id/", h.Delete)
}

// callerSchool is nil for admin and health users. School users carry
// their school in the token and only see their own students.
func callerSchool(c echo.Context) *uuid.UUID {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) != auth.RoleSchool {
		return nil
	}
	if id, ok := auth.SchoolIDFromContext(ctx); ok {
		return &id
	}
	return nil
}

type createRequest struct {
	VaccineID       uuid.UUID   `json:"vaccine_id" validate:"required"`
	DoseNumber      int         `json:"dose_number" validate:"required,min=1"`
	ApplicationDate status.Date `json:"application_date" validate:"required"`
	Source          string      `json:"source" validate:"required"`
	Notes           string      `json:"notes"`
}

type updateRequest struct {
	DoseNumber      *int         `json:"dose_number"`
	ApplicationDate *status.Date `json:"application_date"`
	Source          *string      `json:"source"`
	Notes           *string      `json:"notes"`
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) Create(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	source, err := ParseSource(req.Source)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec := &VaccinationRecord{
		StudentID:       studentID,
		VaccineID:       req.VaccineID,
		DoseNumber:      req.DoseNumber,
		ApplicationDate: req.ApplicationDate,
		Source:          source,
		Notes:           req.Notes,
	}
	if err := h.svc.Create(c.Request().Context(), rec, callerSchool(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListByStudent(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	items, err := h.svc.ListByStudent(c.Request().Context(), studentID, callerSchool(c))
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*VaccinationRecord{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in := UpdateInput{
		DoseNumber:      req.DoseNumber,
		ApplicationDate: req.ApplicationDate,
		Notes:           req.Notes,
	}
	if req.Source != nil {
		source, err := ParseSource(*req.Source)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Source = &source
	}
	rec, err := h.svc.Update(c.Request().Context(), id, in, callerSchool(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, callerSchool(c)); err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return c.NoContent(http.StatusNoContent)
}
