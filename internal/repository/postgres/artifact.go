package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// ArtifactRepository implements artifact.Repository
type ArtifactRepository struct {
	store
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(db *sql.DB) artifact.Repository {
	return &ArtifactRepository{store: newStore(db)}
}

const artifactColumns = `id, account_id, kind, type, category, title, prompt, form_data, urgency_level,
	content, status, archive_key, reservation_id, created_at`

// Create stores a generated artifact
func (r *ArtifactRepository) Create(ctx context.Context, a *artifact.Artifact) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	var formData sql.NullString
	if len(a.FormData) > 0 {
		b, err := json.Marshal(a.FormData)
		if err != nil {
			return errors.Internal("Failed to encode form data", err)
		}
		formData = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO artifacts (`+artifactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), a.ID, a.AccountID, string(a.Kind), a.Type, a.Category, a.Title, a.Prompt, formData,
		a.UrgencyLevel, a.Content, string(a.Status), a.ArchiveKey, a.ReservationID, a.CreatedAt.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to create artifact", err)
	}
	return nil
}

// SetArchiveKey records where the artifact was archived
func (r *ArtifactRepository) SetArchiveKey(ctx context.Context, id, key string) error {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE artifacts SET archive_key = ? WHERE id = ?`), key, id)
	if err != nil {
		return errors.DatabaseError("Failed to update artifact", err)
	}
	return requireRow(res, "Artifact")
}

// Delete removes an artifact
func (r *ArtifactRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM artifacts WHERE id = ?`), id)
	if err != nil {
		return errors.DatabaseError("Failed to delete artifact", err)
	}
	return requireRow(res, "Artifact")
}

// GetByID retrieves an artifact by ID
func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*artifact.Artifact, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`), id)
	return scanArtifact(row)
}

// GetByReservation returns the artifact produced under a reservation
func (r *ArtifactRepository) GetByReservation(ctx context.Context, reservationID string) (*artifact.Artifact, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+artifactColumns+` FROM artifacts WHERE reservation_id = ?`), reservationID)
	return scanArtifact(row)
}

// ListByAccount lists an account's artifacts, newest first. An empty kind
// lists every kind.
func (r *ArtifactRepository) ListByAccount(ctx context.Context, accountID string, kind artifact.Kind, limit, offset int) ([]*artifact.Artifact, int64, error) {
	where := `WHERE account_id = ?`
	args := []interface{}{accountID}
	if kind != "" {
		where += ` AND kind = ?`
		args = append(args, string(kind))
	}
	return r.list(ctx, where, args, limit, offset)
}

// List lists all artifacts, newest first
func (r *ArtifactRepository) List(ctx context.Context, kind artifact.Kind, limit, offset int) ([]*artifact.Artifact, int64, error) {
	where := ``
	var args []interface{}
	if kind != "" {
		where = `WHERE kind = ?`
		args = append(args, string(kind))
	}
	return r.list(ctx, where, args, limit, offset)
}

func (r *ArtifactRepository) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*artifact.Artifact, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM artifacts `+where), args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count artifacts", err)
	}

	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+artifactColumns+`
		FROM artifacts `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list artifacts", err)
	}
	defer rows.Close()

	var out []*artifact.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate artifacts", err)
	}
	return out, total, nil
}

func scanArtifact(row rowScanner) (*artifact.Artifact, error) {
	var a artifact.Artifact
	var kind, status string
	var formData sql.NullString
	var createdAt int64

	err := row.Scan(&a.ID, &a.AccountID, &kind, &a.Type, &a.Category, &a.Title, &a.Prompt, &formData,
		&a.UrgencyLevel, &a.Content, &status, &a.ArchiveKey, &a.ReservationID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Artifact")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get artifact", err)
	}

	if formData.Valid && formData.String != "" {
		if err := json.Unmarshal([]byte(formData.String), &a.FormData); err != nil {
			return nil, errors.Internal("Failed to decode form data", err)
		}
	}
	a.Kind = artifact.Kind(kind)
	a.Status = artifact.Status(status)
	a.CreatedAt = time.Unix(createdAt, 0)
	return &a, nil
}
