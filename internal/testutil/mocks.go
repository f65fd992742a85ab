package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/delivery"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/notification"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// MockAccountRepository is a mock implementation of account.Repository
type MockAccountRepository struct {
	mu          sync.Mutex
	Accounts    map[string]*account.Account
	EmailIndex  map[string]*account.Account
	CreateError error
	GetError    error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts:   make(map[string]*account.Account),
		EmailIndex: make(map[string]*account.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	email := strings.ToLower(a.Email)
	if _, ok := m.EmailIndex[email]; ok {
		return errors.Conflict("Email already registered")
	}
	m.Accounts[a.ID] = a
	m.EmailIndex[email] = a
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Accounts[id]
	if !ok {
		return nil, errors.NotFound("Account")
	}
	return a, nil
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.EmailIndex[strings.ToLower(email)]
	if !ok {
		return nil, errors.NotFound("Account")
	}
	return a, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[id]
	if !ok {
		return errors.NotFound("Account")
	}
	delete(m.Accounts, id)
	delete(m.EmailIndex, strings.ToLower(a.Email))
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*account.Account
	for _, a := range m.Accounts {
		out = append(out, a)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// MockGenerator is a mock artifact.Generator. GenerateFunc overrides the
// canned Content when set.
type MockGenerator struct {
	mu           sync.Mutex
	Content      string
	Err          error
	GenerateFunc func(ctx context.Context, req artifact.Request) (string, error)
	Calls        int
}

func (m *MockGenerator) Name() string { return "mock" }

func (m *MockGenerator) Generate(ctx context.Context, req artifact.Request) (string, error) {
	m.mu.Lock()
	m.Calls++
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Content == "" {
		return "Dear Sir or Madam,\n\n" + req.Title + "\n\nSincerely,", nil
	}
	return m.Content, nil
}

// CallCount returns how many times Generate ran
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockArchive is a mock artifact.Archive
type MockArchive struct {
	mu     sync.Mutex
	Stored map[string]*artifact.Artifact
	Err    error
}

func NewMockArchive() *MockArchive {
	return &MockArchive{Stored: make(map[string]*artifact.Artifact)}
}

func (m *MockArchive) Put(ctx context.Context, a *artifact.Artifact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	key := "mock://" + a.ID
	m.Stored[key] = a
	return key, nil
}

// MockMailer records sent emails instead of delivering them
type MockMailer struct {
	mu     sync.Mutex
	Emails []*delivery.Email
	Err    error
}

func (m *MockMailer) Send(ctx context.Context, e *delivery.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Emails = append(m.Emails, e)
	return nil
}

// Sent returns a copy of the recorded emails
func (m *MockMailer) Sent() []*delivery.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*delivery.Email, len(m.Emails))
	copy(out, m.Emails)
	return out
}

// MockNotifier records alerts
type MockNotifier struct {
	mu     sync.Mutex
	Alerts []notification.Alert
	Err    error
}

func (m *MockNotifier) Notify(ctx context.Context, a notification.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, a)
	return m.Err
}

// Sent returns a copy of the recorded alerts
func (m *MockNotifier) Sent() []notification.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.Alert, len(m.Alerts))
	copy(out, m.Alerts)
	return out
}

// MockAuditService records entries in memory
type MockAuditService struct {
	mu      sync.Mutex
	Entries []audit.Entry
}

func (m *MockAuditService) Record(ctx context.Context, e audit.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, e)
}

func (m *MockAuditService) List(ctx context.Context, eventType audit.EventType, limit, offset int) ([]*audit.Entry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*audit.Entry
	for i := range m.Entries {
		if eventType == "" || m.Entries[i].EventType == eventType {
			e := m.Entries[i]
			out = append(out, &e)
		}
	}
	return out, int64(len(out)), nil
}

// Events returns the recorded event types in order
func (m *MockAuditService) Events() []audit.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.EventType, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.EventType)
	}
	return out
}
