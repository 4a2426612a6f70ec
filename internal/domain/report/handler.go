package report

import (
	"errors"
	"net/http"
	"strconv"

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
	readGroup.GET("/reports", h.ListReports)
	readGroup.GET("/reports/:id", h.GetReport)
	readGroup.GET("/reports/folio/:folio", h.GetReportByFolio)
	readGroup.GET("/reports/:id/reconstruction", h.ReconstructReport)
	readGroup.GET("/capture-forms/:testId", h.NewCaptureForm)

	// Write endpoints: lab staff only
	writeGroup := api.Group("", auth.RequireRole("admin", "lab_tech"))
	writeGroup.POST("/reports", h.CreateReport)
	writeGroup.PUT("/reports/:id", h.UpdateReport)
	writeGroup.PATCH("/reports/:id/status", h.UpdateStatus)
	writeGroup.DELETE("/reports/:id", h.DeleteReport)
}

func (h *Handler) CreateReport(c echo.Context) error {
	var in CaptureInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	session := auth.SessionFromContext(c.Request().Context())
	rep, err := h.svc.CreateReport(c.Request().Context(), in, session.OperatorID)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, ve.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) GetReport(c echo.Context) error {
	rep, err := h.svc.GetReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) GetReportByFolio(c echo.Context) error {
	folio, err := strconv.ParseInt(c.Param("folio"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid folio")
	}
	rep, err := h.svc.GetReportByFolio(c.Request().Context(), folio)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) ListReports(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"status", "patient", "from", "to"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.ListReports(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateReport(c echo.Context) error {
	var in CaptureInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.UpdateReport(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		default:
			var ve *ValidationError
			if errors.As(err, &ve) {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, ve.Error())
			}
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, rep)
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	if err := h.svc.DeleteReport(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ReconstructReport returns the stored report together with the rebuilt
// capture form and the strategy that produced it.
func (h *Handler) ReconstructReport(c echo.Context) error {
	rep, rec, err := h.svc.Reconstruct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"report":         rep,
		"reconstruction": rec,
	})
}

// NewCaptureForm returns the test definition and default form values an
// operator starts a fresh capture from.
func (h *Handler) NewCaptureForm(c echo.Context) error {
	def, form, err := h.svc.NewCaptureForm(c.Request().Context(), c.Param("testId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "test not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"test": def,
		"form": form,
	})
}
