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

// WhiteboardRepository handles whiteboard and chat message persistence
type WhiteboardRepository interface {
	Create(ctx context.Context, whiteboard *models.Whiteboard) error
	GetByID(ctx context.Context, id string) (*models.Whiteboard, error)

	// Chat
	CreateChatMessage(ctx context.Context, message *models.ChatMessage) error
	GetChatHistory(ctx context.Context, whiteboardID string, limit, offset int) ([]*models.ChatMessage, int, error)

	// Daily digest integration: whiteboards with chat messages created
	// inside [start, end), members attached.
	GetChattedWhiteboards(ctx context.Context, courseID string, start, end time.Time) ([]*models.ChattedWhiteboard, error)
}

type whiteboardRepository struct {
	pool *pgxpool.Pool
}

// NewWhiteboardRepository creates a new PostgreSQL whiteboard repository
func NewWhiteboardRepository(pool *pgxpool.Pool) WhiteboardRepository {
	return &whiteboardRepository{pool: pool}
}

// Create inserts a whiteboard and its member associations
func (r *whiteboardRepository) Create(ctx context.Context, whiteboard *models.Whiteboard) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_create_whiteboard")
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO whiteboards (id, course_id, title, deleted, created_at)
		VALUES ($1, $2, $3, FALSE, COALESCE($4, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		whiteboard.ID,
		whiteboard.CourseID,
		whiteboard.Title,
		whiteboard.CreatedAt,
	).Scan(&whiteboard.ID, &whiteboard.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_whiteboard")
	}

	for _, m := range whiteboard.Members {
		_, err = tx.Exec(ctx,
			"INSERT INTO whiteboard_members (whiteboard_id, user_id) VALUES ($1, $2)",
			whiteboard.ID, m.ID,
		)
		if err != nil {
			return r.mapDBError(err, "create_whiteboard_member")
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a whiteboard with its members
func (r *whiteboardRepository) GetByID(ctx context.Context, id string) (*models.Whiteboard, error) {
	query := `
		SELECT id, course_id, title, deleted, created_at
		FROM whiteboards
		WHERE id = $1 AND deleted = FALSE
	`
	wb := &models.Whiteboard{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&wb.ID,
		&wb.CourseID,
		&wb.Title,
		&wb.Deleted,
		&wb.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.NewHTTPError(models.ErrCodeNotFound, "whiteboard not found", 404, err)
	}
	if err != nil {
		return nil, r.mapDBError(err, "get_whiteboard_by_id")
	}

	if err := r.attachMembers(ctx, map[string]*models.Whiteboard{wb.ID: wb}); err != nil {
		return nil, err
	}
	return wb, nil
}

func (r *whiteboardRepository) attachMembers(ctx context.Context, whiteboards map[string]*models.Whiteboard) error {
	if len(whiteboards) == 0 {
		return nil
	}
	ids := make([]string, 0, len(whiteboards))
	for id := range whiteboards {
		ids = append(ids, id)
	}

	query := `
		SELECT wm.whiteboard_id, u.id, u.full_name
		FROM whiteboard_members wm
		JOIN users u ON u.id = wm.user_id
		WHERE wm.whiteboard_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return r.mapDBError(err, "attach_whiteboard_members")
	}
	defer rows.Close()

	for rows.Next() {
		var wbID string
		var member models.WhiteboardUser
		if err := rows.Scan(&wbID, &member.ID, &member.FullName); err != nil {
			return r.mapDBError(err, "scan_whiteboard_member")
		}
		if wb, ok := whiteboards[wbID]; ok {
			wb.Members = append(wb.Members, member)
		}
	}
	return rows.Err()
}

// CreateChatMessage inserts a chat message
func (r *whiteboardRepository) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO whiteboard_chat_messages (id, whiteboard_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		message.ID,
		message.WhiteboardID,
		message.UserID,
		message.Body,
		message.CreatedAt,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_chat_message")
	}
	return nil
}

func (r *whiteboardRepository) scanChatMessage(row pgx.Row) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{User: &models.UserProfile{}}
	err := row.Scan(
		&msg.ID,
		&msg.WhiteboardID,
		&msg.UserID,
		&msg.Body,
		&msg.CreatedAt,
		&msg.User.ID,
		&msg.User.Username,
		&msg.User.FullName,
	)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

const chatSelect = `
	SELECT m.id, m.whiteboard_id, m.user_id, m.body, m.created_at,
	       u.id, u.username, u.full_name
	FROM whiteboard_chat_messages m
	JOIN users u ON u.id = m.user_id
`

// GetChatHistory retrieves a whiteboard's chat messages, newest first
func (r *whiteboardRepository) GetChatHistory(ctx context.Context, whiteboardID string, limit, offset int) ([]*models.ChatMessage, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM whiteboard_chat_messages WHERE whiteboard_id = $1", whiteboardID,
	).Scan(&total)
	if err != nil {
		return nil, 0, r.mapDBError(err, "count_chat_messages")
	}

	query := chatSelect + ` WHERE m.whiteboard_id = $1 ORDER BY m.created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, whiteboardID, limit, offset)
	if err != nil {
		return nil, 0, r.mapDBError(err, "get_chat_history")
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg, err := r.scanChatMessage(rows)
		if err != nil {
			return nil, 0, r.mapDBError(err, "scan_chat_message")
		}
		messages = append(messages, msg)
	}
	return messages, total, rows.Err()
}

// GetChattedWhiteboards retrieves non-deleted whiteboards with chat messages
// created inside [start, end), newest message first per whiteboard
func (r *whiteboardRepository) GetChattedWhiteboards(ctx context.Context, courseID string, start, end time.Time) ([]*models.ChattedWhiteboard, error) {
	query := chatSelect + `
		JOIN whiteboards w ON w.id = m.whiteboard_id
		WHERE w.course_id = $1 AND w.deleted = FALSE
		  AND m.created_at >= $2 AND m.created_at < $3
		ORDER BY m.whiteboard_id, m.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, courseID, start, end)
	if err != nil {
		return nil, r.mapDBError(err, "get_chatted_whiteboards")
	}
	defer rows.Close()

	byWhiteboard := make(map[string][]*models.ChatMessage)
	var order []string
	for rows.Next() {
		msg, err := r.scanChatMessage(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_windowed_chat_message")
		}
		if _, seen := byWhiteboard[msg.WhiteboardID]; !seen {
			order = append(order, msg.WhiteboardID)
		}
		byWhiteboard[msg.WhiteboardID] = append(byWhiteboard[msg.WhiteboardID], msg)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapDBError(err, "get_chatted_whiteboards")
	}
	if len(order) == 0 {
		return nil, nil
	}

	whiteboards := make(map[string]*models.Whiteboard, len(order))
	wbQuery := `
		SELECT id, course_id, title, deleted, created_at
		FROM whiteboards
		WHERE id = ANY($1)
	`
	wbRows, err := r.pool.Query(ctx, wbQuery, order)
	if err != nil {
		return nil, r.mapDBError(err, "list_whiteboards_by_ids")
	}
	defer wbRows.Close()
	for wbRows.Next() {
		wb := &models.Whiteboard{}
		if err := wbRows.Scan(&wb.ID, &wb.CourseID, &wb.Title, &wb.Deleted, &wb.CreatedAt); err != nil {
			return nil, r.mapDBError(err, "scan_whiteboard")
		}
		whiteboards[wb.ID] = wb
	}
	if err := wbRows.Err(); err != nil {
		return nil, r.mapDBError(err, "list_whiteboards_by_ids")
	}

	if err := r.attachMembers(ctx, whiteboards); err != nil {
		return nil, err
	}

	var result []*models.ChattedWhiteboard
	for _, id := range order {
		wb, ok := whiteboards[id]
		if !ok {
			continue
		}
		result = append(result, &models.ChattedWhiteboard{
			Whiteboard:  wb,
			NewMessages: byWhiteboard[id],
		})
	}
	return result, nil
}

func (r *whiteboardRepository) mapDBError(err error, operation string) error {
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("required field missing in whiteboard: %w", err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("whiteboard references missing row: %w", err)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
