package worker

import (
	"context"
	"testing"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/notification"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/services"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
)

func TestReservationSweeper_Sweep(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	log := logger.Nop()

	ledger := services.NewQuotaLedger(postgres.NewSubscriptionRepository(db), log)
	artifacts := postgres.NewArtifactRepository(db)
	notifier := &testutil.MockNotifier{}

	acct := testutil.SeedAccount(t, db, "user")
	testutil.SeedActiveSubscription(t, db, acct, 4)

	orphan, err := ledger.TryReserve(ctx, acct)
	if err != nil {
		t.Fatalf("TryReserve() error = %v", err)
	}
	stored, err := ledger.TryReserve(ctx, acct)
	if err != nil {
		t.Fatalf("TryReserve() error = %v", err)
	}
	fresh, err := ledger.TryReserve(ctx, acct)
	if err != nil {
		t.Fatalf("TryReserve() error = %v", err)
	}

	// the request died after persisting but before committing
	if err := artifacts.Create(ctx, &artifact.Artifact{
		ID:            "artifact-1",
		AccountID:     acct,
		Kind:          artifact.KindLetter,
		Type:          "general",
		Title:         "Orphaned",
		Content:       "body",
		UrgencyLevel:  artifact.UrgencyStandard,
		Status:        artifact.StatusCompleted,
		ReservationID: stored.ID,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	old := time.Now().Add(-time.Hour).Unix()
	if _, err := db.Exec(`UPDATE reservations SET created_at = ? WHERE id IN (?, ?)`, old, orphan.ID, stored.ID); err != nil {
		t.Fatalf("age reservations: %v", err)
	}

	sweeper := NewReservationSweeper(ledger, artifacts, notifier, "*/5 * * * *", 15*time.Minute, log)
	result, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if result.Committed != 1 || result.Expired != 1 || result.Skipped != 0 {
		t.Errorf("Sweep() = %+v, want 1 committed, 1 expired", result)
	}
	// 4 - 3 reserved + 1 expired
	if got := testutil.LettersRemaining(t, db, acct); got != 2 {
		t.Errorf("lettersRemaining = %d, want 2", got)
	}

	var status string
	if err := db.QueryRow(`SELECT status FROM reservations WHERE id = ?`, fresh.ID).Scan(&status); err != nil {
		t.Fatalf("read reservation: %v", err)
	}
	if status != "held" {
		t.Errorf("fresh reservation status = %q, want held", status)
	}

	alerts := notifier.Sent()
	if len(alerts) != 1 || alerts[0].Type != notification.AlertStaleReservations {
		t.Errorf("alerts = %+v, want one stale_reservations alert", alerts)
	}

	again, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep() error = %v", err)
	}
	if again != (SweepResult{}) {
		t.Errorf("second Sweep() = %+v, want nothing to do", again)
	}
	if len(notifier.Sent()) != 1 {
		t.Error("second sweep sent another alert")
	}
}

func TestReservationSweeper_StartRejectsBadSchedule(t *testing.T) {
	log := logger.Nop()
	sweeper := NewReservationSweeper(nil, nil, &testutil.MockNotifier{}, "every tuesday", time.Minute, log)

	if err := sweeper.Start(context.Background()); err == nil {
		sweeper.Stop()
		t.Fatal("Start() accepted an invalid schedule")
	}
}

func TestReservationSweeper_StartStop(t *testing.T) {
	log := logger.Nop()
	sweeper := NewReservationSweeper(nil, nil, &testutil.MockNotifier{}, "@every 1h", time.Minute, log)

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sweeper.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded")
	}
	sweeper.Stop()
	sweeper.Stop()
}
