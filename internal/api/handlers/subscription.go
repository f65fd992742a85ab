package handlers

import (
	"net/http"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/dto"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/auth"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/checkout"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
)

// WebhookSecretHeader authenticates the payment provider's callbacks
const WebhookSecretHeader = "X-Webhook-Secret"

// SubscriptionHandler serves packages, checkout and quota status
type SubscriptionHandler struct {
	ledger        subscription.Ledger
	checkout      checkout.Service
	webhookSecret string
	logger        *logger.Logger
	validator     *validator.Validator
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(
	ledger subscription.Ledger,
	checkoutSvc checkout.Service,
	webhookSecret string,
	log *logger.Logger,
	val *validator.Validator,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		ledger:        ledger,
		checkout:      checkoutSvc,
		webhookSecret: webhookSecret,
		logger:        log,
		validator:     val,
	}
}

// Packages lists the purchasable tiers
// @Summary List packages
// @Tags Subscription
// @Produce json
// @Success 200 {object} dto.PackagesResponse
// @Router /subscription/packages [get]
func (h *SubscriptionHandler) Packages(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, dto.PackagesResponse{Packages: subscription.Packages()})
}

// CreateCheckout opens a checkout session for a package
// @Summary Create checkout session
// @Tags Subscription
// @Accept json
// @Produce json
// @Param request body dto.CheckoutRequest true "Package"
// @Success 201 {object} dto.CheckoutResponse
// @Failure 400 {object} utils.ErrorResponse "Unknown package"
// @Security BearerAuth
// @Router /subscription/create-checkout [post]
func (h *SubscriptionHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	caller := middleware.GetCaller(r)
	sess, err := h.checkout.Create(r.Context(), caller.AccountID, subscription.Tier(req.PackageType))
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.ToCheckoutResponse(sess))
}

// Status returns the caller's quota
// @Summary Subscription status
// @Tags Subscription
// @Produce json
// @Success 200 {object} dto.SubscriptionDTO
// @Security BearerAuth
// @Router /subscription/status [get]
func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r)
	status, err := h.ledger.StatusOf(r.Context(), caller.AccountID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(status))
}

// CheckoutCompleted is the payment provider's completion callback
// @Summary Checkout completed webhook
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared webhook secret"
// @Param request body dto.CheckoutCompletedRequest true "Completed session"
// @Success 200 {object} dto.CheckoutResponse
// @Failure 401 {object} utils.ErrorResponse "Bad webhook secret"
// @Failure 409 {object} utils.ErrorResponse "Session already completed"
// @Router /webhooks/checkout-completed [post]
func (h *SubscriptionHandler) CheckoutCompleted(w http.ResponseWriter, r *http.Request) {
	if !auth.SecretMatches(r.Header.Get(WebhookSecretHeader), h.webhookSecret) {
		h.logger.With("ip", middleware.ClientIP(r)).Warn("Checkout webhook rejected")
		utils.WriteError(w, errors.Unauthorized("Invalid webhook secret"))
		return
	}

	var req dto.CheckoutCompletedRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	sess, err := h.checkout.Complete(r.Context(), req.SessionID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Subscription activated", dto.ToCheckoutResponse(sess))
}
