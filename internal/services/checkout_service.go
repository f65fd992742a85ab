package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/checkout"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
)

// CheckoutService implements checkout.Service
type CheckoutService struct {
	repo     checkout.Repository
	ledger   subscription.Ledger
	audit    audit.Service
	logger   *logger.Logger
	baseURL  string
	currency string
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repo checkout.Repository, ledger subscription.Ledger, auditSvc audit.Service, log *logger.Logger, baseURL, currency string) checkout.Service {
	return &CheckoutService{
		repo:     repo,
		ledger:   ledger,
		audit:    auditSvc,
		logger:   log,
		baseURL:  baseURL,
		currency: currency,
	}
}

// Create opens a pending session priced with the account's discount
func (s *CheckoutService) Create(ctx context.Context, accountID string, tier subscription.Tier) (*checkout.Session, error) {
	pkg, err := subscription.LookupPackage(tier)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "Unknown package type", http.StatusBadRequest)
	}

	status, err := s.ledger.StatusOf(ctx, accountID)
	if err != nil {
		return nil, err
	}

	id := "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	sess := &checkout.Session{
		ID:              id,
		AccountID:       accountID,
		Tier:            pkg.Tier,
		AmountCents:     pkg.DiscountedPrice(status.DiscountPercent),
		Currency:        s.currency,
		DiscountPercent: status.DiscountPercent,
		Status:          checkout.StatusPending,
		URL:             fmt.Sprintf("%s?session_id=%s", s.baseURL, url.QueryEscape(id)),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id":   accountID,
		"session_id":   sess.ID,
		"tier":         sess.Tier,
		"amount_cents": sess.AmountCents,
	}).Info("Checkout session created")

	return sess, nil
}

// Complete settles a session once and activates the purchased package
func (s *CheckoutService) Complete(ctx context.Context, sessionID string) (*checkout.Session, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkCompleted(ctx, sessionID); err != nil {
		if stderrors.Is(err, checkout.ErrAlreadyCompleted) {
			return nil, errors.Wrap(err, errors.ErrCodeConflict, "Checkout session already completed", http.StatusConflict)
		}
		return nil, err
	}

	if err := s.ledger.Activate(ctx, sess.AccountID, sess.Tier, sess.DiscountPercent); err != nil {
		log := s.logger.WithFields(map[string]interface{}{
			"session_id": sess.ID,
			"account_id": sess.AccountID,
		})
		log.ErrorWithErr(err, "Activation failed, reopening checkout session")

		// The provider retries the callback; it must find the session pending.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if rerr := s.repo.Reopen(rctx, sess.ID); rerr != nil {
			log.With("fatal", true).ErrorWithErr(rerr, "Failed to reopen checkout session")
		}
		return nil, err
	}

	sess.Status = checkout.StatusCompleted
	s.audit.Record(ctx, audit.Entry{
		AccountID:    strPtr(sess.AccountID),
		EventType:    audit.EventSubscriptionCreated,
		Action:       "checkout_completed",
		ResourceType: "subscription",
		ResourceID:   sess.AccountID,
		Metadata: map[string]interface{}{
			"session_id":   sess.ID,
			"tier":         string(sess.Tier),
			"amount_cents": sess.AmountCents,
		},
	})

	return sess, nil
}
