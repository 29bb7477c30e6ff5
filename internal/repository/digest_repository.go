package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"suitec/pkg/models"
)

// DigestRepository logs sent digest emails. The log is bookkeeping only:
// digest computation never reads it, so a failed write is not fatal to a run.
type DigestRepository interface {
	Record(ctx context.Context, record *models.DigestRecord) error
	GetLastSent(ctx context.Context, courseID, frequency string) (*time.Time, error)
}

type digestRepository struct {
	pool *pgxpool.Pool
}

// NewDigestRepository creates a new PostgreSQL digest repository
func NewDigestRepository(pool *pgxpool.Pool) DigestRepository {
	return &digestRepository{pool: pool}
}

// Record inserts a sent-digest log row
func (r *digestRepository) Record(ctx context.Context, record *models.DigestRecord) error {
	query := `
		INSERT INTO digest_records (id, course_id, user_id, frequency, subject, sent_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, CURRENT_TIMESTAMP))
		RETURNING id, sent_at
	`

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.CourseID,
		record.UserID,
		record.Frequency,
		record.Subject,
		record.SentAt,
	).Scan(&record.ID, &record.SentAt)
	if err != nil {
		return r.mapDBError(err, "record_digest")
	}
	return nil
}

// GetLastSent returns when a course last had a digest of the given frequency
// sent, or nil if never
func (r *digestRepository) GetLastSent(ctx context.Context, courseID, frequency string) (*time.Time, error) {
	query := `
		SELECT sent_at
		FROM digest_records
		WHERE course_id = $1 AND frequency = $2
		ORDER BY sent_at DESC
		LIMIT 1
	`
	var sentAt time.Time
	err := r.pool.QueryRow(ctx, query, courseID, frequency).Scan(&sentAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, r.mapDBError(err, "get_last_sent")
	}
	return &sentAt, nil
}

func (r *digestRepository) mapDBError(err error, operation string) error {
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("required field missing in digest record: %w", err)
		case "23514": // check_violation
			return fmt.Errorf("invalid digest frequency: %w", err)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
