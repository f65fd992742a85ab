package handlers

import (
	"net/http"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/dto"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/auth"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
)

// RefreshTokenCookie holds the refresh token between requests
const RefreshTokenCookie = "refreshToken"

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	accounts  account.Service
	ledger    subscription.Ledger
	config    *config.Config
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	accounts account.Service,
	ledger subscription.Ledger,
	cfg *config.Config,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		ledger:    ledger,
		config:    cfg,
		logger:    log,
		validator: val,
	}
}

// Register handles account registration
// @Summary Register
// @Description Register a user, contractor or admin account. Contractors receive a referral code. Admin accounts require secretKey to match the configured signup secret.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "Account registered"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 403 {object} utils.ErrorResponse "Admin signup secret missing or wrong"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	h.register(w, r, req.ToInput())
}

// RegisterWithCoupon handles registration that redeems a referral code
// @Summary Register with coupon
// @Description Register a user account and redeem a contractor's referral code for a discount
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterWithCouponRequest true "Registration details with coupon"
// @Success 201 {object} dto.AuthResponse "Account registered"
// @Failure 400 {object} utils.ErrorResponse "Invalid referral code"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register-with-coupon [post]
func (h *AuthHandler) RegisterWithCoupon(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterWithCouponRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	coupon := req.Coupon()
	if coupon == "" {
		utils.WriteError(w, errors.ValidationError("Validation failed", []validator.ValidationError{{
			Field:   "couponCode",
			Tag:     "required",
			Message: "couponCode is required",
		}}))
		return
	}

	in := req.ToInput()
	in.CouponCode = coupon
	h.register(w, r, in)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, in account.RegisterInput) {
	reg, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"email": in.Email,
			"role":  in.Role,
		}).Warn("Registration failed")
		writeErr(w, h.logger, err)
		return
	}

	resp, err := h.issue(w, r, reg.Account)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	resp.ReferralCode = reg.ReferralCode
	resp.Discount = reg.Discount

	utils.WriteSuccess(w, http.StatusCreated, resp)
}

// Login handles login
// @Summary Login
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Successfully authenticated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	a, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.With("email", req.Email).Warn("Authentication failed")
		writeErr(w, h.logger, err)
		return
	}

	resp, err := h.issue(w, r, a)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"account_id": a.ID,
		"role":       a.Role,
	}).Info("Account logged in")

	utils.WriteSuccess(w, http.StatusOK, resp)
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token; the refreshToken cookie is used when omitted"
// @Success 200 {object} dto.AuthResponse "New tokens"
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil && r.ContentLength <= 0 {
		req.RefreshToken = cookie.Value
	} else if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	claims, err := auth.ParseTyped(req.RefreshToken, h.config.Auth.JWTSecret, auth.TokenTypeRefresh)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	a, err := h.accounts.GetByID(r.Context(), claims.AccountID)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid refresh token"))
		return
	}

	resp, err := h.issue(w, r, a)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, resp)
}

// Logout clears the auth cookies
// @Summary Logout
// @Tags Auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, middleware.AccessTokenCookie, "", -1)
	h.setCookie(w, RefreshTokenCookie, "", -1)
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the current account and its subscription
// @Summary Current account
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.MeResponse "Account and subscription"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r)

	a, err := h.accounts.GetByID(r.Context(), caller.AccountID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	status, err := h.ledger.StatusOf(r.Context(), a.ID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.MeResponse{User: dto.ToUserDTO(a, status)})
}

// issue mints a token pair for the account, sets the cookies and builds
// the response body.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, a *account.Account) (*dto.AuthResponse, error) {
	tokens, err := auth.MintTokens(
		auth.Identity{AccountID: a.ID, Email: a.Email, Role: string(a.Role)},
		h.config.Auth.JWTSecret,
		h.config.Auth.AccessTokenExpiry,
		h.config.Auth.RefreshTokenExpiry,
	)
	if err != nil {
		return nil, errors.Internal("Failed to generate tokens", err)
	}

	h.setCookie(w, middleware.AccessTokenCookie, tokens.AccessToken, int(h.config.Auth.AccessTokenExpiry.Seconds()))
	h.setCookie(w, RefreshTokenCookie, tokens.RefreshToken, int(h.config.Auth.RefreshTokenExpiry.Seconds()))

	status, err := h.ledger.StatusOf(r.Context(), a.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         dto.ToUserDTO(a, status),
	}, nil
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
