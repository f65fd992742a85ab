package checkout

import (
	"errors"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
)

// Status of a checkout session
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ErrAlreadyCompleted is returned when a session is completed twice.
var ErrAlreadyCompleted = errors.New("checkout: session already completed")

// Session is a pending purchase of a package.
type Session struct {
	ID              string            `json:"sessionId"`
	AccountID       string            `json:"account_id"`
	Tier            subscription.Tier `json:"packageType"`
	AmountCents     int64             `json:"amount_cents"`
	Currency        string            `json:"currency"`
	DiscountPercent int               `json:"discount_percent"`
	Status          Status            `json:"status"`
	URL             string            `json:"url"`
	CreatedAt       time.Time         `json:"created_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
}
