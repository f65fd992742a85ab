package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
)

// AuditService implements audit.Service
type AuditService struct {
	repo   audit.Repository
	logger *logger.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo audit.Repository, log *logger.Logger) audit.Service {
	return &AuditService{repo: repo, logger: log}
}

// Record writes an entry. Failures are logged and swallowed so auditing
// never fails the request that triggered it.
func (s *AuditService) Record(ctx context.Context, e audit.Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	info := audit.RequestInfoFrom(ctx)
	if e.IPAddress == "" {
		e.IPAddress = info.IPAddress
	}
	if e.UserAgent == "" {
		e.UserAgent = info.UserAgent
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), &e); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"event_type": e.EventType,
			"action":     e.Action,
		}).ErrorWithErr(err, "Failed to write audit log")
	}
}

// List returns audit entries newest first
func (s *AuditService) List(ctx context.Context, eventType audit.EventType, limit, offset int) ([]*audit.Entry, int64, error) {
	return s.repo.List(ctx, eventType, limit, offset)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
