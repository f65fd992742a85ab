package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// AuditRepository implements audit.Repository
type AuditRepository struct {
	store
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) audit.Repository {
	return &AuditRepository{store: newStore(db)}
}

const auditColumns = `id, account_id, event_type, action, resource_type, resource_id, ip_address, user_agent, metadata, created_at`

// Create appends an audit entry
func (r *AuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var metadata sql.NullString
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return errors.Internal("Failed to encode audit metadata", err)
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), e.ID, nullString(e.AccountID), string(e.EventType), e.Action, e.ResourceType, e.ResourceID,
		e.IPAddress, e.UserAgent, metadata, e.CreatedAt.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to write audit log", err)
	}
	return nil
}

// List returns audit entries newest first, optionally filtered by event type
func (r *AuditRepository) List(ctx context.Context, eventType audit.EventType, limit, offset int) ([]*audit.Entry, int64, error) {
	where := ``
	var args []interface{}
	if eventType != "" {
		where = `WHERE event_type = ?`
		args = append(args, string(eventType))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM audit_logs `+where), args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count audit logs", err)
	}

	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+auditColumns+`
		FROM audit_logs `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list audit logs", err)
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		var accountID, metadata sql.NullString
		var eventType string
		var createdAt int64

		if err := rows.Scan(&e.ID, &accountID, &eventType, &e.Action, &e.ResourceType, &e.ResourceID,
			&e.IPAddress, &e.UserAgent, &metadata, &createdAt); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan audit log", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
				return nil, 0, errors.Internal("Failed to decode audit metadata", err)
			}
		}
		e.AccountID = stringPtr(accountID)
		e.EventType = audit.EventType(eventType)
		e.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate audit logs", err)
	}
	return out, total, nil
}
