package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthtrack/healthtrack/internal/api/metrics"
	"github.com/healthtrack/healthtrack/internal/core/domain"
	"github.com/healthtrack/healthtrack/internal/core/ports"
)

type MetricHandler struct {
	service ports.MetricService
}

func NewMetricHandler(service ports.MetricService) *MetricHandler {
	return &MetricHandler{service: service}
}

// List handles GET /metrics. Readings are returned newest first.
//
// @Summary      List health metrics
// @Tags         metrics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  errorResponse
// @Router       /metrics [get]
func (h *MetricHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: list})
}

// Create handles POST /metrics.
//
// @Summary      Record a health metric
// @Description  blood-pressure takes systolic and diastolic (unit mmHg); every other type takes value and unit.
// @Tags         metrics
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      metricRequest  true  "Reading"
// @Success      201   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /metrics [post]
func (h *MetricHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req metricRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ReadingsRejectedTotal.Inc()
		return err
	}

	metric, err := h.service.Record(c.Request().Context(), userID, ports.MetricInput{
		Type:      req.Type,
		Value:     req.Value,
		Systolic:  req.Systolic,
		Diastolic: req.Diastolic,
		Unit:      req.Unit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMetric) {
			metrics.ReadingsRejectedTotal.Inc()
		}
		return err
	}

	metrics.ReadingsRecordedTotal.WithLabelValues(string(metric.Type)).Inc()
	return c.JSON(http.StatusCreated, dataResponse{Data: metric})
}

// History handles GET /metrics/history.
//
// @Summary      Metric history grouped by type
// @Description  Maps each metric type to its readings, oldest first.
// @Tags         metrics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  errorResponse
// @Router       /metrics/history [get]
func (h *MetricHandler) History(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	start := time.Now()
	history, err := h.service.History(c.Request().Context(), userID)
	metrics.HistoryBuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: history})
}
