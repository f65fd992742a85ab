package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
)

type gatekeeperFixture struct {
	*ledgerFixture
	gate      *Gatekeeper
	generator *testutil.MockGenerator
	archive   *testutil.MockArchive
	audit     *testutil.MockAuditService
}

func newGatekeeperFixture(t *testing.T, timeout time.Duration) *gatekeeperFixture {
	t.Helper()
	f := newLedgerFixture(t)
	gen := &testutil.MockGenerator{}
	archive := testutil.NewMockArchive()
	auditSvc := &testutil.MockAuditService{}
	gate := NewGatekeeper(GatekeeperConfig{
		Ledger:    f.ledger,
		Artifacts: postgres.NewArtifactRepository(f.db),
		Generator: gen,
		Archive:   archive,
		Audit:     auditSvc,
		Logger:    newTestLogger(),
		Timeout:   timeout,
	})
	return &gatekeeperFixture{ledgerFixture: f, gate: gate, generator: gen, archive: archive, audit: auditSvc}
}

func userCaller(id string) access.Caller {
	return access.Caller{AccountID: id, Email: id + "@example.com", Role: account.RoleUser}
}

func letterRequest() artifact.Request {
	return artifact.Request{
		Kind:     artifact.KindLetter,
		Type:     "demand_letter",
		Title:    "Unpaid invoice",
		Prompt:   "Client owes 1200 USD since March",
		FormData: map[string]interface{}{"recipientName": "Acme Corp"},
	}
}

func reservationStatuses(t *testing.T, db *sql.DB, accountID string) map[string]int {
	t.Helper()
	rows, err := db.Query(`SELECT status, COUNT(*) FROM reservations WHERE account_id = ? GROUP BY status`, accountID)
	if err != nil {
		t.Fatalf("query reservations: %v", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			t.Fatalf("scan reservations: %v", err)
		}
		out[status] = n
	}
	return out
}

func TestGatekeeper_GenerateCommits(t *testing.T) {
	f := newGatekeeperFixture(t, 0)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, 2)

	a, err := f.gate.Generate(ctx, userCaller(acct), letterRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a.Content == "" || a.Status != artifact.StatusCompleted {
		t.Errorf("artifact = %+v, want completed content", a)
	}
	if a.UrgencyLevel != artifact.UrgencyStandard {
		t.Errorf("UrgencyLevel = %q, want standard default", a.UrgencyLevel)
	}
	if a.ArchiveKey == "" {
		t.Error("ArchiveKey is empty")
	}

	if got := testutil.LettersRemaining(t, f.db, acct); got != 1 {
		t.Errorf("lettersRemaining = %d, want 1", got)
	}
	if got := reservationStatuses(t, f.db, acct); got["committed"] != 1 || got["held"] != 0 {
		t.Errorf("reservations = %v, want one committed", got)
	}

	stored, err := f.gate.Get(ctx, userCaller(acct), a.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.FormData["recipientName"] != "Acme Corp" {
		t.Errorf("FormData = %v", stored.FormData)
	}

	events := f.audit.Events()
	if len(events) != 1 || events[0] != audit.EventLetterCreated {
		t.Errorf("audit events = %v, want [letter_created]", events)
	}
}

func TestGatekeeper_FailureReleasesReservation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *gatekeeperFixture)
	}{
		{
			name: "generator error",
			setup: func(f *gatekeeperFixture) {
				f.generator.Err = stderrors.New("upstream 503")
			},
		},
		{
			name: "empty content",
			setup: func(f *gatekeeperFixture) {
				f.generator.GenerateFunc = func(context.Context, artifact.Request) (string, error) {
					return "   ", nil
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGatekeeperFixture(t, 0)
			ctx := context.Background()
			acct := testutil.SeedAccount(t, f.db, "user")
			testutil.SeedActiveSubscription(t, f.db, acct, 1)
			tt.setup(f)

			a, err := f.gate.Generate(ctx, userCaller(acct), letterRequest())
			if a != nil {
				t.Errorf("Generate() returned %v", a)
			}
			assertCode(t, err, errors.ErrCodeGenerationFailed)

			if got := testutil.LettersRemaining(t, f.db, acct); got != 1 {
				t.Errorf("lettersRemaining = %d, want 1", got)
			}
			if got := reservationStatuses(t, f.db, acct); got["released"] != 1 {
				t.Errorf("reservations = %v, want one released", got)
			}
			_, total, err := f.gate.ListMine(ctx, userCaller(acct), "", 10, 0)
			if err != nil {
				t.Fatalf("ListMine() error = %v", err)
			}
			if total != 0 {
				t.Errorf("artifacts = %d, want 0", total)
			}
		})
	}
}

func TestGatekeeper_CancellationReleases(t *testing.T) {
	f := newGatekeeperFixture(t, 0)
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, 1)

	started := make(chan struct{})
	f.generator.GenerateFunc = func(ctx context.Context, _ artifact.Request) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := f.gate.Generate(ctx, userCaller(acct), letterRequest())
	assertCode(t, err, errors.ErrCodeGenerationFailed)
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
	if got := testutil.LettersRemaining(t, f.db, acct); got != 1 {
		t.Errorf("lettersRemaining = %d, want 1", got)
	}
}

func TestGatekeeper_TimeoutReleases(t *testing.T) {
	f := newGatekeeperFixture(t, 20*time.Millisecond)
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, 1)

	f.generator.GenerateFunc = func(ctx context.Context, _ artifact.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	_, err := f.gate.Generate(context.Background(), userCaller(acct), letterRequest())
	assertCode(t, err, errors.ErrCodeGenerationFailed)
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Generate() error = %v, want deadline exceeded", err)
	}
	if got := testutil.LettersRemaining(t, f.db, acct); got != 1 {
		t.Errorf("lettersRemaining = %d, want 1", got)
	}
}

func TestGatekeeper_RejectsBeforeGenerating(t *testing.T) {
	f := newGatekeeperFixture(t, 0)

	inactive := testutil.SeedAccount(t, f.db, "user")
	active := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, active, 3)

	unknownDoc := artifact.Request{Kind: artifact.KindDocument, Category: "business", Type: "haiku", Title: "T"}
	badUrgency := letterRequest()
	badUrgency.UrgencyLevel = "yesterday"
	noTitle := letterRequest()
	noTitle.Title = "  "

	tests := []struct {
		name    string
		caller  access.Caller
		req     artifact.Request
		wantErr string
	}{
		{name: "no subscription", caller: userCaller(inactive), req: letterRequest(), wantErr: errors.ErrCodeSubscriptionRequired},
		{name: "anonymous", caller: access.Caller{}, req: letterRequest(), wantErr: errors.ErrCodeUnauthorized},
		{name: "unknown document type", caller: userCaller(active), req: unknownDoc, wantErr: errors.ErrCodeValidation},
		{name: "unknown urgency", caller: userCaller(active), req: badUrgency, wantErr: errors.ErrCodeValidation},
		{name: "missing title", caller: userCaller(active), req: noTitle, wantErr: errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.gate.Generate(context.Background(), tt.caller, tt.req)
			assertCode(t, err, tt.wantErr)
		})
	}

	if n := f.generator.CallCount(); n != 0 {
		t.Errorf("generator calls = %d, want 0", n)
	}
	if got := testutil.LettersRemaining(t, f.db, active); got != 3 {
		t.Errorf("lettersRemaining = %d, want 3", got)
	}
}

func TestGatekeeper_GenerateDocument(t *testing.T) {
	f := newGatekeeperFixture(t, 0)
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, 1)

	a, err := f.gate.Generate(context.Background(), userCaller(acct), artifact.Request{
		Kind:         artifact.KindDocument,
		Category:     "consumer",
		Type:         "landlord_tenant",
		Title:        "Deposit not returned",
		UrgencyLevel: artifact.UrgencyRush,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a.Kind != artifact.KindDocument || a.Category != "consumer" {
		t.Errorf("artifact = %+v", a)
	}
	if events := f.audit.Events(); len(events) != 1 || events[0] != audit.EventDocumentCreated {
		t.Errorf("audit events = %v, want [document_created]", events)
	}
}

func TestGatekeeper_ConcurrentGenerationsRespectQuota(t *testing.T) {
	const letters = 3
	const requests = 12

	f := newGatekeeperFixture(t, 0)
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, letters)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gate.Generate(context.Background(), userCaller(acct), letterRequest())
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.HasCode(err, errors.ErrCodeSubscriptionRequired) {
				t.Errorf("Generate() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != letters {
		t.Errorf("succeeded = %d, want %d", succeeded, letters)
	}
	if got := testutil.LettersRemaining(t, f.db, acct); got != 0 {
		t.Errorf("lettersRemaining = %d, want 0", got)
	}
	if n := f.generator.CallCount(); n != letters {
		t.Errorf("generator calls = %d, want %d", n, letters)
	}
}

func TestGatekeeper_GetHidesOtherAccounts(t *testing.T) {
	f := newGatekeeperFixture(t, 0)
	ctx := context.Background()
	owner := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, owner, 1)
	other := testutil.SeedAccount(t, f.db, "user")
	admin := testutil.SeedAccount(t, f.db, "admin")

	a, err := f.gate.Generate(ctx, userCaller(owner), letterRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = f.gate.Get(ctx, userCaller(other), a.ID)
	assertCode(t, err, errors.ErrCodeNotFound)

	got, err := f.gate.Get(ctx, access.Caller{AccountID: admin, Role: account.RoleAdmin}, a.ID)
	if err != nil {
		t.Fatalf("Get(admin) error = %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("Get(admin) = %s, want %s", got.ID, a.ID)
	}

	all, total, err := f.gate.ListAll(ctx, artifact.KindLetter, 10, 0)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if total != 1 || len(all) != 1 {
		t.Errorf("ListAll() = %d/%d, want 1", len(all), total)
	}
}

func heldReservation(t *testing.T, db *sql.DB, accountID string) *subscription.Reservation {
	t.Helper()
	r := &subscription.Reservation{AccountID: accountID}
	if err := db.QueryRow(`SELECT id FROM reservations WHERE account_id = ? AND status = 'held'`, accountID).Scan(&r.ID); err != nil {
		t.Fatalf("held reservation: %v", err)
	}
	return r
}

func TestGatekeeper_ExpiredBeforeCommitFails(t *testing.T) {
	f := newGatekeeperFixture(t, 0)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, 1)

	// the sweeper gives the letter back while the generator is still busy
	f.generator.GenerateFunc = func(ctx context.Context, req artifact.Request) (string, error) {
		if err := f.ledger.Expire(ctx, heldReservation(t, f.db, acct)); err != nil {
			return "", err
		}
		return "Dear Acme,\n\nPay up.", nil
	}

	a, err := f.gate.Generate(ctx, userCaller(acct), letterRequest())
	if a != nil {
		t.Errorf("Generate() returned %v", a)
	}
	assertCode(t, err, errors.ErrCodeGenerationFailed)
	if !stderrors.Is(err, subscription.ErrReservationSettled) {
		t.Errorf("Generate() error = %v, want ErrReservationSettled", err)
	}

	if got := testutil.LettersRemaining(t, f.db, acct); got != 1 {
		t.Errorf("lettersRemaining = %d, want 1", got)
	}
	_, total, err := f.gate.ListMine(ctx, userCaller(acct), "", 10, 0)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if total != 0 {
		t.Errorf("artifacts = %d, want 0", total)
	}
	if len(f.archive.Stored) != 0 {
		t.Errorf("archived = %d, want 0", len(f.archive.Stored))
	}
	if len(f.audit.Events()) != 0 {
		t.Errorf("audit events = %v, want none", f.audit.Events())
	}
}

// sweptFirst commits the reservation twice, as if the sweeper found the
// stored artifact just before the request's own commit.
type sweptFirst struct {
	*QuotaLedger
}

func (l sweptFirst) Commit(ctx context.Context, r *subscription.Reservation, artifactID string) error {
	if err := l.QuotaLedger.Commit(ctx, r, artifactID); err != nil {
		return err
	}
	return l.QuotaLedger.Commit(ctx, r, artifactID)
}

func TestGatekeeper_SweeperCommitCounts(t *testing.T) {
	f := newGatekeeperFixture(t, 0)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, 2)

	gate := NewGatekeeper(GatekeeperConfig{
		Ledger:    sweptFirst{f.ledger},
		Artifacts: postgres.NewArtifactRepository(f.db),
		Generator: f.generator,
		Archive:   f.archive,
		Audit:     f.audit,
		Logger:    newTestLogger(),
	})

	a, err := gate.Generate(ctx, userCaller(acct), letterRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := testutil.LettersRemaining(t, f.db, acct); got != 1 {
		t.Errorf("lettersRemaining = %d, want 1", got)
	}

	stored, err := gate.Get(ctx, userCaller(acct), a.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.ArchiveKey == "" || stored.ArchiveKey != a.ArchiveKey {
		t.Errorf("stored ArchiveKey = %q, want %q", stored.ArchiveKey, a.ArchiveKey)
	}
}

func TestGatekeeper_ArchiveFailureKeepsArtifact(t *testing.T) {
	f := newGatekeeperFixture(t, 0)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, f.db, "user")
	testutil.SeedActiveSubscription(t, f.db, acct, 1)
	f.archive.Err = stderrors.New("bucket unavailable")

	a, err := f.gate.Generate(ctx, userCaller(acct), letterRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a.ArchiveKey != "" {
		t.Errorf("ArchiveKey = %q, want empty", a.ArchiveKey)
	}
	if got := reservationStatuses(t, f.db, acct); got["committed"] != 1 {
		t.Errorf("reservations = %v, want one committed", got)
	}
}
