package dto

import (
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/checkout"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
)

// CheckoutRequest selects a package to buy
type CheckoutRequest struct {
	PackageType string `json:"packageType" validate:"required,oneof=4letters 6letters 8letters"`
}

// CheckoutResponse describes an opened checkout session
type CheckoutResponse struct {
	SessionID       string `json:"sessionId"`
	URL             string `json:"url"`
	PackageType     string `json:"packageType"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	DiscountPercent int    `json:"discount_percent"`
}

// ToCheckoutResponse converts a checkout session
func ToCheckoutResponse(s *checkout.Session) *CheckoutResponse {
	return &CheckoutResponse{
		SessionID:       s.ID,
		URL:             s.URL,
		PackageType:     string(s.Tier),
		AmountCents:     s.AmountCents,
		Currency:        s.Currency,
		DiscountPercent: s.DiscountPercent,
	}
}

// CheckoutCompletedRequest is the payment webhook payload
type CheckoutCompletedRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// PackagesResponse lists the purchasable tiers
type PackagesResponse struct {
	Packages []subscription.Package `json:"packages"`
}

// ActivateRequest grants a package manually
type ActivateRequest struct {
	PackageType     string `json:"packageType" validate:"required,oneof=4letters 6letters 8letters"`
	DiscountPercent *int   `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}
