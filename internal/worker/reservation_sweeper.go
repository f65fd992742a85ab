package worker

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/notification"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ReservationLedger is the part of the quota ledger the sweeper settles through
type ReservationLedger interface {
	Stale(ctx context.Context, ttl time.Duration) ([]*subscription.Reservation, error)
	Commit(ctx context.Context, r *subscription.Reservation, artifactID string) error
	Expire(ctx context.Context, r *subscription.Reservation) error
	RefreshGauges(ctx context.Context)
}

// SweepResult summarizes one sweep
type SweepResult struct {
	Committed int `json:"committed"`
	Expired   int `json:"expired"`
	Skipped   int `json:"skipped"`
}

// ReservationSweeper settles reservations left held by requests that died
// between reserve and commit. A reservation whose artifact was stored is
// committed; any other is released back to the quota.
type ReservationSweeper struct {
	ledger    ReservationLedger
	artifacts artifact.Repository
	notifier  notification.Notifier
	schedule  string
	ttl       time.Duration
	logger    *logger.Logger

	scheduler    *cron.Cron
	runningMutex sync.Mutex
	isRunning    bool
}

// NewReservationSweeper creates a new reservation sweeper worker
func NewReservationSweeper(
	ledger ReservationLedger,
	artifacts artifact.Repository,
	notifier notification.Notifier,
	schedule string,
	ttl time.Duration,
	log *logger.Logger,
) *ReservationSweeper {
	return &ReservationSweeper{
		ledger:    ledger,
		artifacts: artifacts,
		notifier:  notifier,
		schedule:  schedule,
		ttl:       ttl,
		logger:    log,
	}
}

// Start schedules the sweep. It returns an error for an invalid schedule.
func (s *ReservationSweeper) Start(ctx context.Context) error {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	if s.isRunning {
		return fmt.Errorf("sweeper is already running")
	}

	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.ErrorWithErr(err, "Reservation sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.scheduler.Start()
	s.isRunning = true

	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
		"ttl":      s.ttl.String(),
	}).Info("Reservation sweeper started")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *ReservationSweeper) Stop() {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	if !s.isRunning {
		return
	}
	<-s.scheduler.Stop().Done()
	s.isRunning = false
	s.logger.Info("Reservation sweeper stopped")
}

// Sweep settles every reservation held longer than the TTL
func (s *ReservationSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	stale, err := s.ledger.Stale(ctx, s.ttl)
	if err != nil {
		return result, err
	}

	for _, r := range stale {
		if err := s.settle(ctx, r, &result); err != nil {
			if stderrors.Is(err, subscription.ErrReservationSettled) {
				// settled by its own request in the meantime
				result.Skipped++
				continue
			}
			s.logger.WithFields(map[string]interface{}{
				"reservation_id": r.ID,
				"account_id":     r.AccountID,
			}).ErrorWithErr(err, "Failed to settle stale reservation")
			result.Skipped++
		}
	}

	s.ledger.RefreshGauges(ctx)

	if result.Committed+result.Expired > 0 {
		s.logger.WithFields(map[string]interface{}{
			"committed": result.Committed,
			"expired":   result.Expired,
			"skipped":   result.Skipped,
		}).Warn("Stale reservations settled")

		alert := notification.Alert{
			Type:     notification.AlertStaleReservations,
			Priority: notification.PriorityMedium,
			Title:    "Stale reservations settled",
			Message:  "Held reservations outlived their request and were settled by the sweeper",
			Fields: map[string]string{
				"committed": strconv.Itoa(result.Committed),
				"expired":   strconv.Itoa(result.Expired),
				"ttl":       s.ttl.String(),
			},
			CreatedAt: time.Now(),
		}
		if err := s.notifier.Notify(ctx, alert); err != nil {
			s.logger.ErrorWithErr(err, "Failed to send stale reservation alert")
		}
	}

	return result, nil
}

func (s *ReservationSweeper) settle(ctx context.Context, r *subscription.Reservation, result *SweepResult) error {
	a, err := s.artifacts.GetByReservation(ctx, r.ID)
	switch {
	case err == nil:
		if err := s.ledger.Commit(ctx, r, a.ID); err != nil {
			return err
		}
		result.Committed++
		return nil
	case errors.HasCode(err, errors.ErrCodeNotFound):
		if err := s.ledger.Expire(ctx, r); err != nil {
			return err
		}
		result.Expired++
		return nil
	default:
		return err
	}
}
