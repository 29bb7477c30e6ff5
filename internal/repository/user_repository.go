package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"suitec/pkg/models"
)

const userColumns = `id, course_id, canvas_user_id, username, full_name, email, password_hash,
	role, points, share_points, active, created_at`

// UserRepository handles user data persistence, including the roster queries
// the digest builders depend on
type UserRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePoints(ctx context.Context, id string, points int) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) error

	// Roster queries. GetRankedActiveUsers returns active users sorted by
	// points descending (rank assignment happens in the service layer).
	// GetAllUsers includes inactive users so that authors of older parent
	// comments can still be named in daily digests.
	GetRankedActiveUsers(ctx context.Context, courseID string) ([]*models.User, error)
	GetAllUsers(ctx context.Context, courseID string) ([]*models.User, error)

	// Transaction support
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// Create inserts a new user into the database with UUID generation
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, course_id, canvas_user_id, username, full_name, email, password_hash,
		                   role, points, share_points, active, created_at)
		VALUES (COALESCE($1, uuid_generate_v4()::text), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        COALESCE($12, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.CourseID,
		user.CanvasUserID,
		user.Username,
		user.FullName,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Points,
		user.SharePoints,
		user.Active,
		user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return r.mapDBError(err, "create_user")
	}
	return nil
}

func (r *userRepository) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var roleStr string

	err := row.Scan(
		&user.ID,
		&user.CourseID,
		&user.CanvasUserID,
		&user.Username,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&roleStr,
		&user.Points,
		&user.SharePoints,
		&user.Active,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = models.UserRole(roleStr)
	return user, nil
}

// GetByID retrieves a user by ID with proper role type conversion
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.NewHTTPError(models.ErrCodeNotFound, "user not found", 404, err)
	}
	if err != nil {
		return nil, r.mapDBError(err, "get_user_by_id")
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := r.scanUser(r.pool.QueryRow(ctx, query, username))
	if err == pgx.ErrNoRows {
		return nil, models.NewHTTPError(models.ErrCodeNotFound, "user not found", 404, err)
	}
	if err != nil {
		return nil, r.mapDBError(err, "get_user_by_username")
	}
	return user, nil
}

// UsernameExists checks whether a username is taken
func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username,
	).Scan(&exists)
	if err != nil {
		return false, r.mapDBError(err, "username_exists")
	}
	return exists, nil
}

// UpdatePoints sets a user's engagement index total
func (r *userRepository) UpdatePoints(ctx context.Context, id string, points int) error {
	tag, err := r.pool.Exec(ctx, "UPDATE users SET points = $2 WHERE id = $1", id, points)
	if err != nil {
		return r.mapDBError(err, "update_points")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdateRole changes a user's role
func (r *userRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	tag, err := r.pool.Exec(ctx, "UPDATE users SET role = $2 WHERE id = $1", id, string(role))
	if err != nil {
		return r.mapDBError(err, "update_role")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) listUsers(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetRankedActiveUsers retrieves active course members ordered by points
// descending (ties broken by name for a stable listing)
func (r *userRepository) GetRankedActiveUsers(ctx context.Context, courseID string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE course_id = $1 AND active = TRUE
		ORDER BY points DESC, full_name ASC`

	users, err := r.listUsers(ctx, query, courseID)
	if err != nil {
		return nil, r.mapDBError(err, "get_ranked_active_users")
	}
	return users, nil
}

// GetAllUsers retrieves every course member, active or not
func (r *userRepository) GetAllUsers(ctx context.Context, courseID string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE course_id = $1
		ORDER BY full_name ASC`

	users, err := r.listUsers(ctx, query, courseID)
	if err != nil {
		return nil, r.mapDBError(err, "get_all_users")
	}
	return users, nil
}

// WithTransaction executes a function within a database transaction
func (r *userRepository) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
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

func (r *userRepository) mapDBError(err error, operation string) error {
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", operation, models.ErrUsernameExists)
		case "23502": // not_null_violation
			return fmt.Errorf("required field missing in user: %w", err)
		case "23514": // check_violation
			return fmt.Errorf("invalid user role: %w", err)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
