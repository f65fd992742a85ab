package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/metrics"
)

// releaseTimeout bounds cleanup writes that run detached from the request
// context.
const releaseTimeout = 10 * time.Second

// Gatekeeper implements artifact.Service. A generation moves through
// authorize, reserve, generate, persist, commit and archive. Any failure
// before the commit gives the letter back.
type Gatekeeper struct {
	ledger    subscription.Ledger
	artifacts artifact.Repository
	generator artifact.Generator
	archive   artifact.Archive
	audit     audit.Service
	logger    *logger.Logger
	timeout   time.Duration
}

// GatekeeperConfig collects the gatekeeper's collaborators
type GatekeeperConfig struct {
	Ledger    subscription.Ledger
	Artifacts artifact.Repository
	Generator artifact.Generator
	Archive   artifact.Archive
	Audit     audit.Service
	Logger    *logger.Logger
	// Timeout bounds a single generator call; zero means no extra bound.
	// The sweeper's reservation TTL must stay well above it.
	Timeout time.Duration
}

// NewGatekeeper creates a new gatekeeper
func NewGatekeeper(cfg GatekeeperConfig) *Gatekeeper {
	return &Gatekeeper{
		ledger:    cfg.Ledger,
		artifacts: cfg.Artifacts,
		generator: cfg.Generator,
		archive:   cfg.Archive,
		audit:     cfg.Audit,
		logger:    cfg.Logger,
		timeout:   cfg.Timeout,
	}
}

// Generate produces and stores an artifact for the caller, consuming one letter.
func (g *Gatekeeper) Generate(ctx context.Context, caller access.Caller, req artifact.Request) (*artifact.Artifact, error) {
	kind := string(req.Kind)

	action, err := generationAction(req.Kind)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(caller, action); err != nil {
		metrics.RecordGeneration(kind, "rejected")
		return nil, err
	}
	req, err = normalizeRequest(req)
	if err != nil {
		metrics.RecordGeneration(kind, "rejected")
		return nil, err
	}

	res, err := g.ledger.TryReserve(ctx, caller.AccountID)
	if err != nil {
		metrics.RecordGeneration(kind, "rejected")
		return nil, err
	}

	log := g.logger.WithFields(map[string]interface{}{
		"account_id":     caller.AccountID,
		"reservation_id": res.ID,
		"kind":           kind,
		"type":           req.Type,
	})

	content, err := g.generate(ctx, req)
	if err != nil {
		g.release(ctx, res, log)
		metrics.RecordGeneration(kind, "failed")
		log.ErrorWithErr(err, "Generation failed")
		return nil, errors.GenerationFailed(err)
	}
	if err := ctx.Err(); err != nil {
		g.release(ctx, res, log)
		metrics.RecordGeneration(kind, "cancelled")
		return nil, errors.GenerationFailed(err)
	}

	a := &artifact.Artifact{
		ID:            uuid.NewString(),
		AccountID:     caller.AccountID,
		Kind:          req.Kind,
		Type:          req.Type,
		Category:      req.Category,
		Title:         req.Title,
		Prompt:        req.Prompt,
		FormData:      req.FormData,
		UrgencyLevel:  req.UrgencyLevel,
		Content:       content,
		Status:        artifact.StatusCompleted,
		ReservationID: res.ID,
		CreatedAt:     time.Now(),
	}

	if err := g.artifacts.Create(ctx, a); err != nil {
		g.release(ctx, res, log)
		metrics.RecordGeneration(kind, "failed")
		log.ErrorWithErr(err, "Failed to persist artifact")
		return nil, errors.Internal("Failed to save generated content", err)
	}

	if err := g.commit(ctx, res, a, log); err != nil {
		metrics.RecordGeneration(kind, "failed")
		return nil, err
	}

	g.archiveArtifact(ctx, a, log)

	metrics.RecordGeneration(kind, "completed")
	log.With("artifact_id", a.ID).Info("Artifact generated")

	event := audit.EventLetterCreated
	if req.Kind == artifact.KindDocument {
		event = audit.EventDocumentCreated
	}
	g.audit.Record(ctx, audit.Entry{
		AccountID:    strPtr(caller.AccountID),
		EventType:    event,
		Action:       "generate",
		ResourceType: kind,
		ResourceID:   a.ID,
		Metadata: map[string]interface{}{
			"type":      a.Type,
			"generator": g.generator.Name(),
		},
	})

	return a, nil
}

func (g *Gatekeeper) generate(ctx context.Context, req artifact.Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := g.generator.Generate(ctx, req)
	metrics.RecordGenerationDuration(g.generator.Name(), time.Since(start))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s returned empty content", g.generator.Name())
	}
	return content, nil
}

// commit spends the reservation on a stored artifact. The artifact exists,
// so the letter is spent even if the request is gone. A reservation the
// sweeper settled first counts only if it was committed to this artifact;
// otherwise the letter went back to the quota and the artifact is removed.
func (g *Gatekeeper) commit(ctx context.Context, res *subscription.Reservation, a *artifact.Artifact, log *logger.Logger) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	err := g.ledger.Commit(cctx, res, a.ID)
	if err == nil {
		return nil
	}
	if !stderrors.Is(err, subscription.ErrReservationSettled) {
		// still held: the sweeper commits it once it is stale
		log.ErrorWithErr(err, "Failed to commit reservation")
		return nil
	}

	stored, gerr := g.ledger.Reservation(cctx, res.ID)
	if gerr == nil && stored.Status == subscription.ReservationCommitted &&
		stored.ArtifactID != nil && *stored.ArtifactID == a.ID {
		return nil
	}

	log.Warn("Reservation settled before commit, discarding artifact")
	if derr := g.artifacts.Delete(cctx, a.ID); derr != nil {
		log.With("fatal", true).ErrorWithErr(derr, "Failed to delete uncommitted artifact")
	}
	return errors.GenerationFailed(err)
}

// archiveArtifact copies a committed artifact to the archive. Failures are
// logged; the database row stays authoritative.
func (g *Gatekeeper) archiveArtifact(ctx context.Context, a *artifact.Artifact, log *logger.Logger) {
	if g.archive == nil {
		return
	}
	key, err := g.archive.Put(ctx, a)
	if err != nil {
		log.ErrorWithErr(err, "Failed to archive artifact")
		return
	}
	if key == "" {
		return
	}
	if err := g.artifacts.SetArchiveKey(context.WithoutCancel(ctx), a.ID, key); err != nil {
		log.ErrorWithErr(err, "Failed to record archive key")
		return
	}
	a.ArchiveKey = key
}

// release returns the reservation on a context that outlives the request.
func (g *Gatekeeper) release(ctx context.Context, res *subscription.Reservation, log *logger.Logger) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := g.ledger.Release(rctx, res); err != nil {
		log.ErrorWithErr(err, "Failed to release reservation")
	}
}

// Get returns an artifact visible to the caller. Other accounts' artifacts
// look missing unless the caller is an admin.
func (g *Gatekeeper) Get(ctx context.Context, caller access.Caller, id string) (*artifact.Artifact, error) {
	if err := access.Authorize(caller, access.ActionViewArtifact); err != nil {
		return nil, err
	}
	a, err := g.artifacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.AccountID != caller.AccountID && caller.Role != account.RoleAdmin {
		return nil, errors.NotFound("Artifact")
	}
	return a, nil
}

// ListMine lists the caller's own artifacts
func (g *Gatekeeper) ListMine(ctx context.Context, caller access.Caller, kind artifact.Kind, limit, offset int) ([]*artifact.Artifact, int64, error) {
	if err := access.Authorize(caller, access.ActionListOwnArtifacts); err != nil {
		return nil, 0, err
	}
	return g.artifacts.ListByAccount(ctx, caller.AccountID, kind, limit, offset)
}

// ListAll lists every artifact
func (g *Gatekeeper) ListAll(ctx context.Context, kind artifact.Kind, limit, offset int) ([]*artifact.Artifact, int64, error) {
	return g.artifacts.List(ctx, kind, limit, offset)
}

func generationAction(kind artifact.Kind) (access.Action, error) {
	switch kind {
	case artifact.KindLetter:
		return access.ActionGenerateLetter, nil
	case artifact.KindDocument:
		return access.ActionGenerateDocument, nil
	default:
		return "", errors.ValidationError("Unknown artifact kind", map[string]string{"kind": string(kind)})
	}
}

func normalizeRequest(req artifact.Request) (artifact.Request, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return req, errors.ValidationError("Title is required", nil)
	}

	switch req.UrgencyLevel {
	case "":
		req.UrgencyLevel = artifact.UrgencyStandard
	case artifact.UrgencyStandard, artifact.UrgencyUrgent, artifact.UrgencyRush:
	default:
		return req, errors.ValidationError("urgencyLevel must be one of [standard urgent rush]", nil)
	}

	if req.Kind == artifact.KindDocument {
		if _, ok := artifact.LookupDocumentType(req.Category, req.Type); !ok {
			return req, errors.ValidationError("Unknown document type for category", map[string]string{
				"category":     req.Category,
				"documentType": req.Type,
			})
		}
	} else if strings.TrimSpace(req.Type) == "" {
		req.Type = "general"
	}

	return req, nil
}
