package handlers

import (
	"fmt"
	"net/http"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/dto"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/referral"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
)

// ReferralHandler serves coupon checks and contractor statistics
type ReferralHandler struct {
	referrals referral.Ledger
	accounts  account.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(referrals referral.Ledger, accounts account.Service, log *logger.Logger, val *validator.Validator) *ReferralHandler {
	return &ReferralHandler{
		referrals: referrals,
		accounts:  accounts,
		logger:    log,
		validator: val,
	}
}

// ValidateCoupon checks a referral code without redeeming it
// @Summary Validate coupon
// @Tags Coupons
// @Accept json
// @Produce json
// @Param request body dto.ValidateCouponRequest true "Coupon code"
// @Success 200 {object} dto.ValidateCouponResponse
// @Router /coupons/validate [post]
func (h *ReferralHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateCouponRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	v, err := h.referrals.ValidateCode(r.Context(), req.Code())
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	resp := dto.ValidateCouponResponse{Valid: v.Valid, DiscountPercent: v.DiscountPercent}
	if v.Valid {
		resp.Message = fmt.Sprintf("Valid referral code, %d%% discount applied at checkout", v.DiscountPercent)
	} else {
		resp.Message = "Invalid referral code"
	}
	utils.WriteSuccess(w, http.StatusOK, resp)
}

// Stats returns the calling contractor's referral code and counters
// @Summary Contractor referral stats
// @Tags Remote Employee
// @Produce json
// @Success 200 {object} dto.ReferralStatsResponse
// @Failure 403 {object} utils.ErrorResponse "Not a contractor"
// @Security BearerAuth
// @Router /remote-employee/stats [get]
func (h *ReferralHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r)

	stats, err := h.referrals.Stats(r.Context(), caller.AccountID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	a, err := h.accounts.GetByID(r.Context(), caller.AccountID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ReferralStatsResponse{
		Username:        a.Name,
		Code:            stats.Code,
		Points:          stats.TotalSignups,
		TotalSignups:    stats.TotalSignups,
		DiscountPercent: stats.DiscountPercent,
	})
}
