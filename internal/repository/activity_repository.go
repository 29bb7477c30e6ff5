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

// ActivityRepository handles activity persistence and the per-course
// activity-type point configuration
type ActivityRepository interface {
	// Core operations
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	GetActivitiesInRange(ctx context.Context, courseID string, start, end time.Time) ([]*models.Activity, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, int, error)

	// Engagement index integration
	SumPointsByUser(ctx context.Context, courseID string) (map[string]int, error)
	GetTypeConfiguration(ctx context.Context, courseID string) ([]*models.ActivityTypeConfiguration, error)
	UpsertTypeConfiguration(ctx context.Context, cfg *models.ActivityTypeConfiguration) error

	// Transaction support
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new PostgreSQL activity repository
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

// Create inserts a new activity with proper null handling
func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (id, course_id, type, user_id, actor_id, asset_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		activity.ID,
		activity.CourseID,
		activity.Type,
		activity.UserID,
		activity.ActorID,
		activity.AssetID,
		activity.CreatedAt,
	).Scan(&activity.ID, &activity.CreatedAt)

	if err != nil {
		return r.mapDBError(err, "create_activity")
	}
	return nil
}

func (r *activityRepository) scanActivity(row pgx.Row) (*models.Activity, error) {
	activity := &models.Activity{}
	var actorID, assetID *string

	err := row.Scan(
		&activity.ID,
		&activity.CourseID,
		&activity.Type,
		&activity.UserID,
		&actorID,
		&assetID,
		&activity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	activity.ActorID = actorID
	activity.AssetID = assetID
	return activity, nil
}

// GetByID retrieves an activity by ID with proper null handling
func (r *activityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := `
		SELECT id, course_id, type, user_id, actor_id, asset_id, created_at
		FROM activities
		WHERE id = $1
	`
	activity, err := r.scanActivity(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.mapDBError(err, "get_activity_by_id")
	}
	return activity, nil
}

// GetActivitiesInRange retrieves all activities for a course inside
// [start, end), oldest first. This is the raw input of the weekly fold.
func (r *activityRepository) GetActivitiesInRange(ctx context.Context, courseID string, start, end time.Time) ([]*models.Activity, error) {
	query := `
		SELECT id, course_id, type, user_id, actor_id, asset_id, created_at
		FROM activities
		WHERE course_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, courseID, start, end)
	if err != nil {
		return nil, r.mapDBError(err, "get_activities_in_range")
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		activity, err := r.scanActivity(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_activity")
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// ListByUserID retrieves a user's activities, newest first
func (r *activityRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM activities WHERE user_id = $1", userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, r.mapDBError(err, "count_user_activities")
	}

	query := `
		SELECT id, course_id, type, user_id, actor_id, asset_id, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, r.mapDBError(err, "list_user_activities")
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		activity, err := r.scanActivity(rows)
		if err != nil {
			return nil, 0, r.mapDBError(err, "scan_activity")
		}
		activities = append(activities, activity)
	}
	return activities, total, rows.Err()
}

// SumPointsByUser recomputes every user's lifetime point total from the raw
// activity log, joined against the enabled type configuration. Used by the
// engagement index reconciliation.
func (r *activityRepository) SumPointsByUser(ctx context.Context, courseID string) (map[string]int, error) {
	query := `
		SELECT a.user_id, COALESCE(SUM(c.points), 0)
		FROM activities a
		JOIN activity_type_configurations c
		  ON c.course_id = a.course_id AND c.type = a.type AND c.enabled = TRUE
		WHERE a.course_id = $1
		GROUP BY a.user_id
	`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, r.mapDBError(err, "sum_points_by_user")
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var userID string
		var points int
		if err := rows.Scan(&userID, &points); err != nil {
			return nil, r.mapDBError(err, "scan_point_sum")
		}
		totals[userID] = points
	}
	return totals, rows.Err()
}

// GetTypeConfiguration retrieves the per-course activity type point values
func (r *activityRepository) GetTypeConfiguration(ctx context.Context, courseID string) ([]*models.ActivityTypeConfiguration, error) {
	query := `
		SELECT course_id, type, points, enabled
		FROM activity_type_configurations
		WHERE course_id = $1
		ORDER BY type ASC
	`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, r.mapDBError(err, "get_type_configuration")
	}
	defer rows.Close()

	var configs []*models.ActivityTypeConfiguration
	for rows.Next() {
		cfg := &models.ActivityTypeConfiguration{}
		if err := rows.Scan(&cfg.CourseID, &cfg.Type, &cfg.Points, &cfg.Enabled); err != nil {
			return nil, r.mapDBError(err, "scan_type_configuration")
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// UpsertTypeConfiguration creates or updates one activity type's point value
func (r *activityRepository) UpsertTypeConfiguration(ctx context.Context, cfg *models.ActivityTypeConfiguration) error {
	query := `
		INSERT INTO activity_type_configurations (course_id, type, points, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, type)
		DO UPDATE SET points = EXCLUDED.points, enabled = EXCLUDED.enabled
	`
	_, err := r.pool.Exec(ctx, query, cfg.CourseID, cfg.Type, cfg.Points, cfg.Enabled)
	if err != nil {
		return r.mapDBError(err, "upsert_type_configuration")
	}
	return nil
}

// WithTransaction executes a function within a database transaction
func (r *activityRepository) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *activityRepository) mapDBError(err error, operation string) error {
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("required field missing in activity: %w", err)
		case "23514": // check_violation
			return fmt.Errorf("invalid activity type: %w", err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("activity references missing row: %w", err)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
