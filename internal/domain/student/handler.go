package student

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/imuniza/imuniza/internal/domain/status"
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
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHealth, auth.RoleSchool))
	g.GET("/students/", h.List)
	g.GET("/students/:id/", h.Get)
	g.GET("/students/:id/immunization-status/", h.ImmunizationStatus)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleSchool))
	write.POST("/students/", h.Create)
	write.PATCH("/students/:id/", h.Update)
	write.DELETE("/students/:id/", h.Delete)
}

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
	SchoolID        uuid.UUID   `json:"school_id" validate:"required"`
	FullName        string      `json:"full_name" validate:"required"`
	BirthDate       status.Date `json:"birth_date" validate:"required"`
	Sex             string      `json:"sex"`
	GuardianName    string      `json:"guardian_name"`
	GuardianContact string      `json:"guardian_contact"`
	ClassGroup      string      `json:"class_group"`
}

type updateRequest struct {
	SchoolID        *uuid.UUID   `json:"school_id"`
	FullName        *string      `json:"full_name"`
	BirthDate       *status.Date `json:"birth_date"`
	Sex             *string      `json:"sex"`
	GuardianName    *string      `json:"guardian_name"`
	GuardianContact *string      `json:"guardian_contact"`
	ClassGroup      *string      `json:"class_group"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sex, err := ParseSex(req.Sex)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st := &Student{
		SchoolID:        req.SchoolID,
		FullName:        req.FullName,
		BirthDate:       req.BirthDate,
		Sex:             sex,
		GuardianName:    req.GuardianName,
		GuardianContact: req.GuardianContact,
		ClassGroup:      req.ClassGroup,
	}
	if err := h.svc.Create(c.Request().Context(), st, callerSchool(c)); err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	st, err := h.svc.Get(c.Request().Context(), id, callerSchool(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

// FiltersFromQuery parses the listing filters shared by the student
// listing and the dashboards. Bad values for optional filters are
// reported, not ignored.
func FiltersFromQuery(c echo.Context) (Filters, error) {
	var f Filters
	f.Query = c.QueryParam("q")
	if raw := c.QueryParam("schoolId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, errors.New("invalid schoolId")
		}
		f.SchoolID = &id
	}
	if raw := c.QueryParam("sex"); raw != "" {
		sex, err := ParseSex(raw)
		if err != nil {
			return f, err
		}
		f.Sex = sex
	}
	for param, dst := range map[string]**int{"ageMin": &f.AgeMin, "ageMax": &f.AgeMax} {
		if raw := c.QueryParam(param); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return f, errors.New("invalid " + param)
			}
			*dst = &n
		}
	}
	if raw := c.QueryParam("status"); raw != "" {
		st, err := status.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	return f, nil
}

func (h *Handler) List(c echo.Context) error {
	f, err := FiltersFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.ListWithStatus(c.Request().Context(), f, callerSchool(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pg := pagination.FromContext(c)
	page := pagination.Paginate(items, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, len(items), pg.Limit, pg.Offset))
}

func (h *Handler) ImmunizationStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	res, err := h.svc.ImmunizationStatus(c.Request().Context(), id, callerSchool(c))
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "student not found")
	}
	return c.JSON(http.StatusOK, res)
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
		SchoolID:        req.SchoolID,
		FullName:        req.FullName,
		BirthDate:       req.BirthDate,
		GuardianName:    req.GuardianName,
		GuardianContact: req.GuardianContact,
		ClassGroup:      req.ClassGroup,
	}
	if req.Sex != nil {
		sex, err := ParseSex(*req.Sex)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Sex = &sex
	}
	st, err := h.svc.Update(c.Request().Context(), id, in, callerSchool(c))
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, st)
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
		return echo.NewHTTPError(http.StatusNotFound, "student not found")
	}
	return c.NoContent(http.StatusNoContent)
}
