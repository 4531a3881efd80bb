package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthtrack/healthtrack/internal/api/metrics"
	"github.com/healthtrack/healthtrack/internal/core/ports"
)

// MedicationHandler serves the caller's medications. Every route requires
// the Auth middleware.
type MedicationHandler struct {
	service ports.MedicationService
}

func NewMedicationHandler(service ports.MedicationService) *MedicationHandler {
	return &MedicationHandler{service: service}
}

// List handles GET /medications.
//
// @Summary      List medications
// @Tags         medications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /medications [get]
func (h *MedicationHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	meds, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: meds})
}

// Create handles POST /medications.
//
// @Summary      Add a medication
// @Tags         medications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      medicationRequest  true  "Medication"
// @Success      201   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /medications [post]
func (h *MedicationHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req medicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	med, err := h.service.Create(c.Request().Context(), userID, toMedicationInput(req))
	if err != nil {
		return err
	}

	metrics.MedicationWritesTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, dataResponse{Data: med})
}

// Get handles GET /medications/:id.
//
// @Summary      Get a medication
// @Tags         medications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Medication ID"
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /medications/{id} [get]
func (h *MedicationHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	med, err := h.service.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: med})
}

// Update handles PUT /medications/:id.
//
// @Summary      Replace a medication
// @Tags         medications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Medication ID"
// @Param        body  body      medicationRequest  true  "Medication"
// @Success      200   {object}  dataResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /medications/{id} [put]
func (h *MedicationHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req medicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	med, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), toMedicationInput(req))
	if err != nil {
		return err
	}

	metrics.MedicationWritesTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, dataResponse{Data: med})
}

// Delete handles DELETE /medications/:id.
//
// @Summary      Delete a medication
// @Tags         medications
// @Security     BearerAuth
// @Param        id   path  string  true  "Medication ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /medications/{id} [delete]
func (h *MedicationHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}

	metrics.MedicationWritesTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func toMedicationInput(req medicationRequest) ports.MedicationInput {
	return ports.MedicationInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		Instructions: req.Instructions,
	}
}
