package dto

import (
	"strings"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request. Role defaults to user
// when omitted; role admin also needs the admin signup secret.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Name      string `json:"name" validate:"required,max=100"`
	Role      string `json:"role,omitempty" validate:"omitempty,role"`
	SecretKey string `json:"secretKey,omitempty" validate:"max=200"`
}

// RegisterWithCouponRequest is a registration that redeems a referral code.
// Both couponCode and coupon_code are accepted.
type RegisterWithCouponRequest struct {
	RegisterRequest
	CouponCode      string `json:"couponCode,omitempty"`
	CouponCodeSnake string `json:"coupon_code,omitempty"`
}

// Coupon returns whichever coupon spelling was sent
func (r RegisterWithCouponRequest) Coupon() string {
	return firstNonEmpty(r.CouponCode, r.CouponCodeSnake)
}

// ToInput converts the request to the service input
func (r RegisterRequest) ToInput() account.RegisterInput {
	role := account.Role(r.Role)
	if role == "" {
		role = account.RoleUser
	}
	return account.RegisterInput{
		Email:       strings.ToLower(strings.TrimSpace(r.Email)),
		Password:    r.Password,
		Name:        strings.TrimSpace(r.Name),
		Role:        role,
		AdminSecret: r.SecretKey,
	}
}

// RefreshTokenRequest represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         *UserDTO `json:"user"`
	ReferralCode string   `json:"referralCode,omitempty"`
	Discount     int      `json:"discount_percent,omitempty"`
}

// UserDTO is the public view of an account
type UserDTO struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	Role         string           `json:"role"`
	Subscription *SubscriptionDTO `json:"subscription,omitempty"`
}

// MeResponse wraps the current account
type MeResponse struct {
	User *UserDTO `json:"user"`
}

// SubscriptionDTO is the quota view embedded in account responses
type SubscriptionDTO struct {
	Status           string  `json:"status"`
	PackageType      string  `json:"packageType,omitempty"`
	LettersRemaining int     `json:"lettersRemaining"`
	DiscountPercent  int     `json:"discount_percent"`
	ReferredBy       *string `json:"referred_by,omitempty"`
}

// ToUserDTO converts an account and an optional quota status
func ToUserDTO(a *account.Account, q *subscription.QuotaStatus) *UserDTO {
	u := &UserDTO{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  string(a.Role),
	}
	if q != nil {
		u.Subscription = ToSubscriptionDTO(q)
	}
	return u
}

// ToSubscriptionDTO converts a quota status
func ToSubscriptionDTO(q *subscription.QuotaStatus) *SubscriptionDTO {
	return &SubscriptionDTO{
		Status:           string(q.Status),
		PackageType:      string(q.Tier),
		LettersRemaining: q.LettersRemaining,
		DiscountPercent:  q.DiscountPercent,
		ReferredBy:       q.ReferredBy,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
