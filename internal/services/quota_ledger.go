package services

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/metrics"
	"github.com/oklog/ulid/v2"
)

// QuotaLedger implements subscription.Ledger. Mutations for one account are
// serialized by a per-account lock; the storage layer's conditional updates
// keep the counter correct across processes.
type QuotaLedger struct {
	repo   subscription.Repository
	logger *logger.Logger
	locks  *keyedMutex

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewQuotaLedger creates a new quota ledger
func NewQuotaLedger(repo subscription.Repository, log *logger.Logger) *QuotaLedger {
	return &QuotaLedger{
		repo:    repo,
		logger:  log,
		locks:   newKeyedMutex(),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Activate grants a package allotment. It replaces whatever was left.
func (l *QuotaLedger) Activate(ctx context.Context, accountID string, tier subscription.Tier, discountPercent int) error {
	pkg, err := subscription.LookupPackage(tier)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "Unknown package type", http.StatusBadRequest)
	}
	if discountPercent < 0 || discountPercent > 100 {
		return errors.ValidationError("Discount must be between 0 and 100", nil)
	}

	unlock := l.locks.Lock(accountID)
	defer unlock()

	if err := l.repo.Activate(ctx, accountID, pkg.Tier, pkg.Letters, discountPercent); err != nil {
		l.logger.ErrorWithErr(err, "Failed to activate subscription")
		return err
	}

	l.refreshActiveGauge(ctx)
	l.logger.WithFields(map[string]interface{}{
		"account_id": accountID,
		"tier":       pkg.Tier,
		"letters":    pkg.Letters,
		"discount":   discountPercent,
	}).Info("Subscription activated")

	return nil
}

// TryReserve takes one letter. Both an inactive subscription and an empty
// quota surface as SubscriptionRequired.
func (l *QuotaLedger) TryReserve(ctx context.Context, accountID string) (*subscription.Reservation, error) {
	unlock := l.locks.Lock(accountID)
	defer unlock()

	res := &subscription.Reservation{
		ID:        l.newReservationID(),
		AccountID: accountID,
	}

	start := time.Now()
	err := l.repo.Reserve(ctx, res)
	metrics.RecordDBQuery("reserve", "subscriptions", time.Since(start))
	switch {
	case err == nil:
		metrics.RecordReservation("reserved")
		return res, nil
	case stderrors.Is(err, subscription.ErrQuotaExhausted):
		metrics.RecordReservation("exhausted")
		return nil, errors.SubscriptionRequired(err)
	case stderrors.Is(err, subscription.ErrSubscriptionInactive):
		metrics.RecordReservation("inactive")
		return nil, errors.SubscriptionRequired(err)
	default:
		metrics.RecordReservation("error")
		l.logger.ErrorWithErr(err, "Failed to reserve letter")
		return nil, err
	}
}

// Commit makes a reservation final
func (l *QuotaLedger) Commit(ctx context.Context, r *subscription.Reservation, artifactID string) error {
	if err := l.repo.Commit(ctx, r.ID, artifactID); err != nil {
		return settledConflict(err)
	}
	r.Status = subscription.ReservationCommitted
	r.ArtifactID = &artifactID
	return nil
}

// Release returns the reservation's letter. A reservation that was already
// released or committed is rejected and the counter is left alone.
func (l *QuotaLedger) Release(ctx context.Context, r *subscription.Reservation) error {
	return l.release(ctx, r, "released")
}

// Expire releases a reservation abandoned by a crashed or stuck request.
func (l *QuotaLedger) Expire(ctx context.Context, r *subscription.Reservation) error {
	return l.release(ctx, r, "expired")
}

func (l *QuotaLedger) release(ctx context.Context, r *subscription.Reservation, reason string) error {
	unlock := l.locks.Lock(r.AccountID)
	defer unlock()

	start := time.Now()
	err := l.repo.Release(ctx, r.ID)
	metrics.RecordDBQuery("release", "reservations", time.Since(start))
	if err != nil {
		return settledConflict(err)
	}

	r.Status = subscription.ReservationReleased
	metrics.RecordRelease(reason)
	l.logger.WithFields(map[string]interface{}{
		"account_id":     r.AccountID,
		"reservation_id": r.ID,
		"reason":         reason,
	}).Info("Reservation released")
	return nil
}

// Reservation returns the stored state of a reservation
func (l *QuotaLedger) Reservation(ctx context.Context, id string) (*subscription.Reservation, error) {
	return l.repo.GetReservation(ctx, id)
}

// StatusOf reports the account's quota
func (l *QuotaLedger) StatusOf(ctx context.Context, accountID string) (*subscription.QuotaStatus, error) {
	s, err := l.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &subscription.QuotaStatus{
		Status:           s.Status,
		Tier:             s.Tier,
		LettersRemaining: s.LettersRemaining,
		DiscountPercent:  s.DiscountPercent,
		ReferredBy:       s.ReferredBy,
	}, nil
}

// Stale returns reservations held for longer than ttl.
func (l *QuotaLedger) Stale(ctx context.Context, ttl time.Duration) ([]*subscription.Reservation, error) {
	return l.repo.ListHeldBefore(ctx, time.Now().Add(-ttl))
}

// RefreshGauges updates the held-reservation and active-subscription gauges.
func (l *QuotaLedger) RefreshGauges(ctx context.Context) {
	if held, err := l.repo.CountHeld(ctx); err == nil {
		metrics.SetHeldReservations(float64(held))
	} else {
		l.logger.ErrorWithErr(err, "Failed to count held reservations")
	}
	l.refreshActiveGauge(ctx)
}

func (l *QuotaLedger) refreshActiveGauge(ctx context.Context) {
	n, err := l.repo.CountByStatus(ctx, subscription.StatusActive)
	if err != nil {
		l.logger.ErrorWithErr(err, "Failed to count active subscriptions")
		return
	}
	metrics.SetActiveSubscriptions(float64(n))
}

func (l *QuotaLedger) newReservationID() string {
	l.idMu.Lock()
	defer l.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), l.entropy).String()
}

func settledConflict(err error) error {
	if stderrors.Is(err, subscription.ErrReservationSettled) {
		return errors.Wrap(err, errors.ErrCodeConflict, "Reservation already settled", http.StatusConflict)
	}
	return err
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
