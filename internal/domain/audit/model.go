package audit

import (
	"context"
	"time"
)

// EventType classifies audit entries
type EventType string

const (
	EventUserCreated         EventType = "user_created"
	EventLetterCreated       EventType = "letter_created"
	EventDocumentCreated     EventType = "document_created"
	EventLetterSent          EventType = "letter_sent"
	EventSubscriptionCreated EventType = "subscription_created"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventCouponCreated       EventType = "coupon_created"
	EventCouponRedeemed      EventType = "coupon_redeemed"
	EventAdminLogin          EventType = "admin_login"
	EventRateLimitExceeded   EventType = "rate_limit_exceeded"
	EventSecurity            EventType = "security_event"
)

// Entry is one audit log line
type Entry struct {
	ID           string                 `json:"id"`
	AccountID    *string                `json:"user_id,omitempty"`
	EventType    EventType              `json:"event_type"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type,omitempty"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type requestInfoKey struct{}

// RequestInfo is the client address and agent of the current request.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

// WithRequestInfo stores request information for entries recorded downstream.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestInfoFrom returns the request information stored in ctx, if any.
func RequestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}
