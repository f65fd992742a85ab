package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/dto"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/delivery"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
)

// DeliveryHandler serves letter exports
type DeliveryHandler struct {
	delivery  delivery.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(svc delivery.Service, log *logger.Logger, val *validator.Validator) *DeliveryHandler {
	return &DeliveryHandler{
		delivery:  svc,
		logger:    log,
		validator: val,
	}
}

// PDF downloads a letter as PDF
// @Summary Download letter PDF
// @Tags Letters
// @Produce application/pdf
// @Param id path string true "Artifact ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /letters/{id}/pdf [get]
func (h *DeliveryHandler) PDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.delivery.ExportPDF(r.Context(), middleware.GetCaller(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.logger.ErrorWithErr(err, "Failed to write PDF")
	}
}

// SendEmail emails a completed letter, PDF attached, to an attorney
// @Summary Send letter to attorney
// @Tags Letters
// @Accept json
// @Produce json
// @Param id path string true "Artifact ID"
// @Param request body dto.SendEmailRequest true "Attorney"
// @Success 200 {object} delivery.Receipt
// @Failure 400 {object} utils.ErrorResponse "Invalid email address"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Failure 503 {object} utils.ErrorResponse "Email delivery is not configured"
// @Security BearerAuth
// @Router /letters/{id}/send-email [post]
func (h *DeliveryHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.SendEmailRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	email := strings.TrimSpace(req.AttorneyEmail)
	if email == "" {
		utils.WriteError(w, errors.BadRequest("Attorney email is required").
			WithDetails(map[string]string{"field": "attorney_email"}))
		return
	}
	if err := h.validator.ValidateVar(email, "email"); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid email address").
			WithDetails(map[string]string{"field": "attorney_email", "value": email}))
		return
	}

	receipt, err := h.delivery.SendToAttorney(r.Context(), middleware.GetCaller(r), chi.URLParam(r, "id"), delivery.SendRequest{
		AttorneyEmail: email,
		AttorneyName:  req.AttorneyName,
	})
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Email sent successfully", receipt)
}
