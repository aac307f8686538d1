package repository

import (
	"context"
	"fmt"
	"time"

	"gym-checkin-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckinRepository handles database operations for the append-only
// check-in log
type CheckinRepository struct {
	db *pgxpool.Pool
}

// NewCheckinRepository creates a new check-in repository
func NewCheckinRepository(db *pgxpool.Pool) *CheckinRepository {
	return &CheckinRepository{db: db}
}

// AppendIfNoneSince appends a check-in record unless the member already
// has one scanned after the given instant. The existence check and the
// insert run in one transaction under a per-member advisory lock, so two
// concurrent scans for the same member cannot both pass the check.
// Returns false when a recent record blocked the append. The scanned_at
// timestamp is assigned by the database and written back into rec.
func (r *CheckinRepository) AppendIfNoneSince(ctx context.Context, memberID string, rec *models.CheckIn, since time.Time) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, memberID); err != nil {
		return false, fmt.Errorf("failed to lock member: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM checkins WHERE member_id = $1 AND scanned_at > $2)`,
		memberID, since,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query recent check-ins: %w", err)
	}
	if exists {
		return false, nil
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO checkins (id, member_id, date, session_name, scanned_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING scanned_at
	`, rec.ID, memberID, rec.Date, rec.SessionName).Scan(&rec.ScannedAt)
	if err != nil {
		return false, fmt.Errorf("failed to append check-in: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit check-in: %w", err)
	}
	return true, nil
}

// ListSince retrieves a member's check-ins scanned after the given
// instant, newest first
func (r *CheckinRepository) ListSince(ctx context.Context, memberID string, since time.Time) ([]*models.CheckIn, error) {
	query := `
		SELECT id, member_id, date, session_name, scanned_at
		FROM checkins
		WHERE member_id = $1 AND scanned_at > $2
		ORDER BY scanned_at DESC
	`
	rows, err := r.db.Query(ctx, query, memberID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []*models.CheckIn
	for rows.Next() {
		var rec models.CheckIn
		err := rows.Scan(&rec.ID, &rec.MemberID, &rec.Date, &rec.SessionName, &rec.ScannedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkins = append(checkins, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check-ins: %w", err)
	}

	return checkins, nil
}

// ExistsOnDate reports whether the member has a check-in recorded for
// the given local calendar date (YYYY-MM-DD)
func (r *CheckinRepository) ExistsOnDate(ctx context.Context, memberID, date string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM checkins WHERE member_id = $1 AND date = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, memberID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check date existence: %w", err)
	}
	return exists, nil
}
