package coverage

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imuniza/imuniza/internal/domain/student"
	"github.com/imuniza/imuniza/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHealth))
	g.GET("/dashboards/schools/coverage/", h.SchoolCoverage)
	g.GET("/dashboards/schools/ranking/", h.SchoolRanking)
	g.GET("/dashboards/age-distribution/", h.AgeDistribution)
	g.GET("/dashboards/preferences/age-buckets/", h.GetBuckets)
	g.PUT("/dashboards/preferences/age-buckets/", h.PutBuckets)
}

// itemsEnvelope is the response shape the dashboard UI expects.
type itemsEnvelope struct {
	Items any `json:"items"`
}

func (h *Handler) SchoolCoverage(c echo.Context) error {
	f, err := student.FiltersFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.SchoolCoverage(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, itemsEnvelope{Items: items})
}

func (h *Handler) SchoolRanking(c echo.Context) error {
	f, err := student.FiltersFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.SchoolRanking(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, itemsEnvelope{Items: items})
}

func (h *Handler) AgeDistribution(c echo.Context) error {
	f, err := student.FiltersFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	dist, err := h.svc.AgeDistribution(c.Request().Context(), f, userID)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dist)
}

func (h *Handler) GetBuckets(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	buckets, err := h.svc.BucketsFor(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, itemsEnvelope{Items: buckets})
}

type putBucketsRequest struct {
	Items []AgeBucket `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) PutBuckets(c echo.Context) error {
	var req putBucketsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.SaveBuckets(c.Request().Context(), userID, req.Items); err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, itemsEnvelope{Items: req.Items})
}
