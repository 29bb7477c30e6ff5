package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"suitec/pkg/models"
)

// CourseRepository handles course data persistence
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	ListActiveCourses(ctx context.Context) ([]*models.Course, error)
	UpdateNotificationSettings(ctx context.Context, id string, daily, weekly bool) error
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new PostgreSQL course repository
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

// Create inserts a new course
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (id, canvas_course_id, name, asset_library_enabled, engagement_index_enabled,
		                     daily_notifications_enabled, weekly_notifications_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		course.ID,
		course.CanvasCourseID,
		course.Name,
		course.AssetLibraryEnabled,
		course.EngagementIndexEnabled,
		course.DailyNotificationsEnabled,
		course.WeeklyNotificationsEnabled,
		course.CreatedAt,
	).Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		return r.mapDBError(err, "create_course")
	}
	return nil
}

// GetByID retrieves a course by ID
func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := `
		SELECT id, canvas_course_id, name, asset_library_enabled, engagement_index_enabled,
		       daily_notifications_enabled, weekly_notifications_enabled, created_at
		FROM courses
		WHERE id = $1
	`
	course := &models.Course{}

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.CanvasCourseID,
		&course.Name,
		&course.AssetLibraryEnabled,
		&course.EngagementIndexEnabled,
		&course.DailyNotificationsEnabled,
		&course.WeeklyNotificationsEnabled,
		&course.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, models.NewHTTPError(models.ErrCodeNotFound, "course not found", 404, err)
	}
	if err != nil {
		return nil, r.mapDBError(err, "get_course_by_id")
	}

	return course, nil
}

// ListActiveCourses retrieves every course that still has at least one
// SuiteC tool enabled. The digest builders iterate this list in the order
// returned here; no additional sort is imposed beyond creation order.
func (r *courseRepository) ListActiveCourses(ctx context.Context) ([]*models.Course, error) {
	query := `
		SELECT id, canvas_course_id, name, asset_library_enabled, engagement_index_enabled,
		       daily_notifications_enabled, weekly_notifications_enabled, created_at
		FROM courses
		WHERE asset_library_enabled = TRUE OR engagement_index_enabled = TRUE
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, r.mapDBError(err, "list_active_courses")
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course := &models.Course{}
		if err := rows.Scan(
			&course.ID,
			&course.CanvasCourseID,
			&course.Name,
			&course.AssetLibraryEnabled,
			&course.EngagementIndexEnabled,
			&course.DailyNotificationsEnabled,
			&course.WeeklyNotificationsEnabled,
			&course.CreatedAt,
		); err != nil {
			return nil, r.mapDBError(err, "scan_course")
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

// UpdateNotificationSettings toggles the digest opt-ins for a course
func (r *courseRepository) UpdateNotificationSettings(ctx context.Context, id string, daily, weekly bool) error {
	query := `
		UPDATE courses
		SET daily_notifications_enabled = $2, weekly_notifications_enabled = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, daily, weekly)
	if err != nil {
		return r.mapDBError(err, "update_notification_settings")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCourseNotFound
	}
	return nil
}

func (r *courseRepository) mapDBError(err error, operation string) error {
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("course already exists: %w", err)
		case "23502": // not_null_violation
			return fmt.Errorf("required field missing in course: %w", err)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
