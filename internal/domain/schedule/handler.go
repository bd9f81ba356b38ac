package schedule

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/imuniza/imuniza/internal/platform/auth"
	"github.com/imuniza/imuniza/internal/platform/db"
	"github.com/imuniza/imuniza/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHealth, auth.RoleSchool))
	read.GET("/schedules/", h.List)
	read.GET("/schedules/:id/", h.Get)
	read.GET("/schedules/:id/rules/", h.ListRules)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/schedules/", h.Create)
	admin.PATCH("/schedules/:id/", h.Update)
	admin.DELETE("/schedules/:id/", h.Delete)
	admin.POST("/schedules/:id/rules/", h.AddRule)
	admin.PATCH("/schedules/:id/rules/:ruleID/", h.UpdateRule)
	admin.DELETE("/schedules/:id/rules/:ruleID/", h.DeleteRule)
}

type createVersionRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type updateVersionRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type ruleRequest struct {
	VaccineID    uuid.UUID `json:"vaccine_id" validate:"required"`
	DoseNumber   int       `json:"dose_number" validate:"required,min=1"`
	MinAgeMonths int       `json:"min_age_months" validate:"min=0"`
	MaxAgeMonths int       `json:"max_age_months" validate:"min=0"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createVersionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v := &ScheduleVersion{Code: req.Code, Name: req.Name}
	if err := h.svc.Create(c.Request().Context(), v); err != nil {
		if errors.Is(err, ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "schedule version not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// Update renames a version and, when is_active flips, runs the
// activation or deactivation path.
func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateVersionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if req.Name != nil {
		if _, err := h.svc.Update(ctx, id, *req.Name); err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "schedule version not found")
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			err = h.svc.Activate(ctx, id)
		} else {
			err = h.svc.Deactivate(ctx, id)
		}
		if err != nil {
			if errors.Is(err, ErrConflict) {
				return echo.NewHTTPError(http.StatusConflict, err.Error())
			}
			return echo.NewHTTPError(http.StatusNotFound, "schedule version not found")
		}
	}
	v, err := h.svc.Get(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "schedule version not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "schedule version not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRules(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rules, err := h.svc.Rules(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rules == nil {
		rules = []*ScheduleRule{}
	}
	return c.JSON(http.StatusOK, rules)
}

func (h *Handler) AddRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r := &ScheduleRule{
		ScheduleVersionID: id,
		VaccineID:         req.VaccineID,
		DoseNumber:        req.DoseNumber,
		MinAgeMonths:      req.MinAgeMonths,
		MaxAgeMonths:      req.MaxAgeMonths,
	}
	if err := h.svc.AddRule(c.Request().Context(), r); err != nil {
		if errors.Is(err, ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateRule(c echo.Context) error {
	ruleID, err := uuid.Parse(c.Param("ruleID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid rule id")
	}
	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateRule(c.Request().Context(), ruleID, req.DoseNumber, req.MinAgeMonths, req.MaxAgeMonths)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRule(c echo.Context) error {
	ruleID, err := uuid.Parse(c.Param("ruleID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid rule id")
	}
	if err := h.svc.DeleteRule(c.Request().Context(), ruleID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
