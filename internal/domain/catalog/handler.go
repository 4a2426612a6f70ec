package catalog

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clinilab/clinilab/internal/platform/auth"
	"github.com/clinilab/clinilab/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints: any authenticated operator
	readGroup := api.Group("", auth.RequireRole("admin", "lab_tech", "reception"))
	readGroup.GET("/tests", h.ListTests)
	readGroup.GET("/tests/:id", h.GetTest)
	readGroup.GET("/catalog/units", h.ListUnits)

	// Write endpoints: lab staff only
	writeGroup := api.Group("", auth.RequireRole("admin", "lab_tech"))
	writeGroup.POST("/tests", h.CreateTest)
	writeGroup.PUT("/tests/:id", h.UpdateTest)
	writeGroup.DELETE("/tests/:id", h.DeleteTest)
	writeGroup.POST("/catalog/reference-range", h.PreviewRange)
}

func (h *Handler) CreateTest(c echo.Context) error {
	var draft TestDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	def, err := h.svc.CreateTest(c.Request().Context(), draft)
	if err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, def)
}

func (h *Handler) GetTest(c echo.Context) error {
	def, err := h.svc.GetTest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "test not found")
	}
	return c.JSON(http.StatusOK, def)
}

func (h *Handler) ListTests(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	if v := c.QueryParam("category"); v != "" {
		params["category"] = v
	}
	if v := c.QueryParam("q"); v != "" {
		params["q"] = v
	}
	items, total, err := h.svc.ListTests(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateTest(c echo.Context) error {
	var def TestDefinition
	if err := c.Bind(&def); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	def.ID = c.Param("id")
	if err := h.svc.UpdateTest(c.Request().Context(), &def); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return echo.NewHTTPError(http.StatusNotFound, "test not found")
		case errors.Is(err, ErrDuplicateCode):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, def)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	if err := h.svc.DeleteTest(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "test not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListUnits(c echo.Context) error {
	return c.JSON(http.StatusOK, Units)
}

type previewRequest struct {
	Cutoff string     `json:"cutoff"`
	Unit   string     `json:"unit"`
	Kind   ResultKind `json:"kind"`
}

func (h *Handler) PreviewRange(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.PreviewRange(req.Cutoff, req.Unit, req.Kind))
}
