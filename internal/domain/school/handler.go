package school

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
	read.GET("/schools/", h.List)
	read.GET("/schools/:id/", h.Get)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("/schools/", h.Create)
	write.PATCH("/schools/:id/", h.Update)
	write.DELETE("/schools/:id/", h.Delete)
}

type createRequest struct {
	Name         string `json:"name" validate:"required"`
	INEPCode     string `json:"inep_code"`
	Address      string `json:"address"`
	TerritoryRef string `json:"territory_ref"`
}

type updateRequest struct {
	Name         *string `json:"name"`
	INEPCode     *string `json:"inep_code"`
	Address      *string `json:"address"`
	TerritoryRef *string `json:"territory_ref"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sc := &School{
		Name:         req.Name,
		INEPCode:     req.INEPCode,
		Address:      req.Address,
		TerritoryRef: req.TerritoryRef,
	}
	if err := h.svc.Create(c.Request().Context(), sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "school not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
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
	sc, err := h.svc.Update(c.Request().Context(), id, UpdateInput{
		Name:         req.Name,
		INEPCode:     req.INEPCode,
		Address:      req.Address,
		TerritoryRef: req.TerritoryRef,
	})
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "school not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrHasStudents) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
