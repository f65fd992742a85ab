package client

import (
	"context"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request. CouponCode is only
// sent by RegisterWithCoupon.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	CouponCode string `json:"couponCode,omitempty"`

	// SecretKey is the admin signup secret, required for role admin
	SecretKey string `json:"secretKey,omitempty"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
	ReferralCode string `json:"referralCode,omitempty"`
	Discount     int    `json:"discount_percent,omitempty"`
}

// CouponValidation is the answer to a coupon check
type CouponValidation struct {
	Valid           bool   `json:"valid"`
	DiscountPercent int    `json:"discount_percent"`
	Message         string `json:"message"`
}

// ReferralStats is a contractor's view of their code
type ReferralStats struct {
	Username        string `json:"username"`
	Code            string `json:"code"`
	Points          int    `json:"points"`
	TotalSignups    int    `json:"total_signups"`
	DiscountPercent int    `json:"discount_percent"`
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := LoginRequest{
		Email:    email,
		Password: password,
	}
	return c.authenticate(ctx, "/api/auth/login", req)
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.CouponCode = ""
	return c.authenticate(ctx, "/api/auth/register", req)
}

// RegisterWithCoupon creates a user account and redeems a referral code
func (c *Client) RegisterWithCoupon(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/register-with-coupon", req)
}

// RefreshToken exchanges a refresh token for a new token pair
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	req := map[string]string{
		"refreshToken": refreshToken,
	}
	return c.authenticate(ctx, "/api/auth/refresh", req)
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doRequest(ctx, "POST", path, body, &resp); err != nil {
		return nil, err
	}

	// Automatically set the token for future requests
	if resp.AccessToken != "" {
		c.SetToken(resp.AccessToken)
	}

	return &resp, nil
}

// Me retrieves the authenticated account with its subscription
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.doRequest(ctx, "GET", "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout logs out the current user
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, "POST", "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// ValidateCoupon checks a referral code without redeeming it
func (c *Client) ValidateCoupon(ctx context.Context, code string) (*CouponValidation, error) {
	var resp CouponValidation
	if err := c.doRequest(ctx, "POST", "/api/coupons/validate", map[string]string{"coupon_code": code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReferralStats returns the calling contractor's code statistics
func (c *Client) ReferralStats(ctx context.Context) (*ReferralStats, error) {
	var resp ReferralStats
	if err := c.doRequest(ctx, "GET", "/api/remote-employee/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
