package client

import (
	"context"
	"fmt"
	"net/url"
)

// AdminService wraps the admin-only endpoints
type AdminService struct {
	client *Client
}

// Users lists accounts with their subscriptions
func (s *AdminService) Users(ctx context.Context, opts *ListOptions) (*Page[User], error) {
	var page Page[User]
	if err := s.client.doRequest(ctx, "GET", "/api/admin/users"+pageQuery(opts, nil), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Letters lists every artifact; kind may be empty, letter or document
func (s *AdminService) Letters(ctx context.Context, kind string, opts *ListOptions) (*Page[Artifact], error) {
	extra := url.Values{}
	if kind != "" {
		extra.Set("kind", kind)
	}
	var page Page[Artifact]
	if err := s.client.doRequest(ctx, "GET", "/api/admin/letters"+pageQuery(opts, extra), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Logs lists audit entries, optionally filtered by event type
func (s *AdminService) Logs(ctx context.Context, eventType string, opts *ListOptions) (*Page[AuditEntry], error) {
	extra := url.Values{}
	if eventType != "" {
		extra.Set("event_type", eventType)
	}
	var page Page[AuditEntry]
	if err := s.client.doRequest(ctx, "GET", "/api/admin/logs"+pageQuery(opts, extra), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Activate grants a package to an account without checkout
func (s *AdminService) Activate(ctx context.Context, accountID, packageType string) (*Subscription, error) {
	var sub Subscription
	path := fmt.Sprintf("/api/admin/subscriptions/%s/activate", url.PathEscape(accountID))
	if err := s.client.doRequest(ctx, "POST", path, map[string]string{"packageType": packageType}, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
