package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/providers"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/services"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

const testWebhookSecret = "whsec_test"

type handlerFixture struct {
	db        *sql.DB
	cfg       *config.Config
	audit     *testutil.MockAuditService
	generator *testutil.MockGenerator
	mailer    *testutil.MockMailer

	auth         *AuthHandler
	referral     *ReferralHandler
	subscription *SubscriptionHandler
	artifact     *ArtifactHandler
	admin        *AdminHandler
	health       *HealthHandler
	delivery     *DeliveryHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := logger.Nop()
	val := validator.New()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "handler-test-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
			BCryptCost:         bcrypt.MinCost,
		},
	}

	auditSvc := &testutil.MockAuditService{}
	gen := &testutil.MockGenerator{}
	mailer := &testutil.MockMailer{}

	ledger := services.NewQuotaLedger(postgres.NewSubscriptionRepository(db), log)
	referrals := services.NewReferralLedger(postgres.NewReferralRepository(db), &testutil.MockNotifier{}, log)
	accountRepo := postgres.NewAccountRepository(db)
	accounts := services.NewAccountService(accountRepo, referrals, auditSvc, log, bcrypt.MinCost, "handler-admin-secret")
	checkoutSvc := services.NewCheckoutService(postgres.NewCheckoutRepository(db), ledger, auditSvc, log,
		"https://pay.example.com/checkout", "usd")
	gate := services.NewGatekeeper(services.GatekeeperConfig{
		Ledger:    ledger,
		Artifacts: postgres.NewArtifactRepository(db),
		Generator: gen,
		Archive:   testutil.NewMockArchive(),
		Audit:     auditSvc,
		Logger:    log,
	})

	deliverySvc := services.NewDeliveryService(gate, accountRepo, providers.NewPDFRenderer("handler-test"),
		mailer, auditSvc, log, "http://api.test")

	return &handlerFixture{
		db:           db,
		cfg:          cfg,
		audit:        auditSvc,
		generator:    gen,
		mailer:       mailer,
		auth:         NewAuthHandler(accounts, ledger, cfg, log, val),
		referral:     NewReferralHandler(referrals, accounts, log, val),
		subscription: NewSubscriptionHandler(ledger, checkoutSvc, testWebhookSecret, log, val),
		artifact:     NewArtifactHandler(gate, log, val),
		admin:        NewAdminHandler(accounts, ledger, gate, auditSvc, log, val),
		health:       NewHealthHandler(db, gen.Name(), log),
		delivery:     NewDeliveryHandler(deliverySvc, log, val),
	}
}

// envelope mirrors utils.SuccessResponse / utils.ErrorResponse
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	SubscriptionRequired bool `json:"subscription_required"`
}

type call struct {
	method  string
	path    string
	body    interface{}
	caller  *access.Caller
	params  map[string]string
	headers map[string]string
}

func (f *handlerFixture) do(t *testing.T, h http.HandlerFunc, c call) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	switch b := c.body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	method := c.method
	if method == "" {
		method = http.MethodPost
	}
	req := httptest.NewRequest(method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	ctx := req.Context()
	if c.caller != nil {
		ctx = middleware.WithCaller(ctx, *c.caller)
	}
	if len(c.params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range c.params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func seedCaller(t *testing.T, db *sql.DB, role account.Role) access.Caller {
	t.Helper()
	id := testutil.SeedAccount(t, db, string(role))
	return access.Caller{AccountID: id, Email: id + "@example.com", Role: role}
}
