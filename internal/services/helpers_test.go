package services

import (
	"database/sql"
	"testing"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
)

func newTestLogger() *logger.Logger {
	return logger.Nop()
}

type ledgerFixture struct {
	db       *sql.DB
	ledger   *QuotaLedger
	referral *ReferralLedger
	notifier *testutil.MockNotifier
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := newTestLogger()
	notifier := &testutil.MockNotifier{}
	return &ledgerFixture{
		db:       db,
		ledger:   NewQuotaLedger(postgres.NewSubscriptionRepository(db), log),
		referral: NewReferralLedger(postgres.NewReferralRepository(db), notifier, log),
		notifier: notifier,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !errors.HasCode(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}
