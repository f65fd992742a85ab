package client

import (
	"context"
)

// SubscriptionService handles packages, checkout and quota
type SubscriptionService struct {
	client *Client
}

// Packages lists the purchasable tiers
func (s *SubscriptionService) Packages(ctx context.Context) ([]Package, error) {
	var resp struct {
		Packages []Package `json:"packages"`
	}
	if err := s.client.doRequest(ctx, "GET", "/api/subscription/packages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Packages, nil
}

// CreateCheckout opens a checkout session for a package
func (s *SubscriptionService) CreateCheckout(ctx context.Context, packageType string) (*CheckoutSession, error) {
	var sess CheckoutSession
	body := map[string]string{"packageType": packageType}
	if err := s.client.doRequest(ctx, "POST", "/api/subscription/create-checkout", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Status returns the caller's quota
func (s *SubscriptionService) Status(ctx context.Context) (*Subscription, error) {
	var sub Subscription
	if err := s.client.doRequest(ctx, "GET", "/api/subscription/status", nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CompleteCheckout sends the payment provider's completion callback. It is
// meant for operators and tests that stand in for the provider.
func (s *SubscriptionService) CompleteCheckout(ctx context.Context, sessionID, webhookSecret string) (*CheckoutSession, error) {
	var sess CheckoutSession
	body := map[string]string{"sessionId": sessionID}
	headers := map[string]string{"X-Webhook-Secret": webhookSecret}
	if err := s.client.do(ctx, "POST", "/api/webhooks/checkout-completed", body, headers, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}
