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

// AssetRepository handles asset library persistence, including the windowed
// comment query the daily digest depends on
type AssetRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	ListByIDs(ctx context.Context, ids []string) (map[string]*models.Asset, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) error

	// Comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, assetID string, limit, offset int) ([]*models.Comment, int, error)

	// Daily digest integration: visible, non-deleted assets with comments
	// created inside [start, end), plus the parents of any window replies.
	GetCommentedAssets(ctx context.Context, courseID string, start, end time.Time) ([]*models.CommentedAsset, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates a new PostgreSQL asset repository
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

// Create inserts a new asset and its user association
func (r *assetRepository) Create(ctx context.Context, asset *models.Asset) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_create_asset")
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO assets (id, course_id, type, title, url, description, views, likes,
		                    comment_count, visible, deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, TRUE, FALSE, COALESCE($7, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		asset.ID,
		asset.CourseID,
		asset.Type,
		asset.Title,
		asset.URL,
		asset.Description,
		asset.CreatedAt,
	).Scan(&asset.ID, &asset.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_asset")
	}

	for _, u := range asset.Users {
		_, err = tx.Exec(ctx,
			"INSERT INTO asset_users (asset_id, user_id) VALUES ($1, $2)",
			asset.ID, u.ID,
		)
		if err != nil {
			return r.mapDBError(err, "create_asset_user")
		}
	}

	return tx.Commit(ctx)
}

func (r *assetRepository) scanAsset(row pgx.Row) (*models.Asset, error) {
	asset := &models.Asset{}
	err := row.Scan(
		&asset.ID,
		&asset.CourseID,
		&asset.Type,
		&asset.Title,
		&asset.URL,
		&asset.Description,
		&asset.Views,
		&asset.Likes,
		&asset.CommentCount,
		&asset.Visible,
		&asset.Deleted,
		&asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

const assetColumns = `id, course_id, type, title, url, description, views, likes,
	comment_count, visible, deleted, created_at`

// GetByID retrieves an asset with its associated users
func (r *assetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 AND deleted = FALSE`

	asset, err := r.scanAsset(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.NewHTTPError(models.ErrCodeNotFound, "asset not found", 404, err)
	}
	if err != nil {
		return nil, r.mapDBError(err, "get_asset_by_id")
	}

	if err := r.attachUsers(ctx, map[string]*models.Asset{asset.ID: asset}); err != nil {
		return nil, err
	}
	return asset, nil
}

// ListByIDs retrieves a batch of assets keyed by id (deleted rows included:
// the weekly summarizer needs them to score deleted assets as zero)
func (r *assetRepository) ListByIDs(ctx context.Context, ids []string) (map[string]*models.Asset, error) {
	if len(ids) == 0 {
		return map[string]*models.Asset{}, nil
	}

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, r.mapDBError(err, "list_assets_by_ids")
	}
	defer rows.Close()

	assets := make(map[string]*models.Asset)
	for rows.Next() {
		asset, err := r.scanAsset(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_asset")
		}
		assets[asset.ID] = asset
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapDBError(err, "list_assets_by_ids")
	}

	if err := r.attachUsers(ctx, assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// attachUsers loads the asset_users associations for a batch of assets
func (r *assetRepository) attachUsers(ctx context.Context, assets map[string]*models.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	ids := make([]string, 0, len(assets))
	for id := range assets {
		ids = append(ids, id)
	}

	query := `
		SELECT au.asset_id, u.id, u.full_name, u.role
		FROM asset_users au
		JOIN users u ON u.id = au.user_id
		WHERE au.asset_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return r.mapDBError(err, "attach_asset_users")
	}
	defer rows.Close()

	for rows.Next() {
		var assetID string
		var au models.AssetUser
		var roleStr string
		if err := rows.Scan(&assetID, &au.ID, &au.FullName, &roleStr); err != nil {
			return r.mapDBError(err, "scan_asset_user")
		}
		au.Role = models.UserRole(roleStr)
		if asset, ok := assets[assetID]; ok {
			asset.Users = append(asset.Users, au)
		}
	}
	return rows.Err()
}

// IncrementViews bumps the lifetime view counter
func (r *assetRepository) IncrementViews(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "UPDATE assets SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return r.mapDBError(err, "increment_views")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAssetNotFound
	}
	return nil
}

// IncrementLikes bumps the lifetime like counter
func (r *assetRepository) IncrementLikes(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "UPDATE assets SET likes = likes + 1 WHERE id = $1", id)
	if err != nil {
		return r.mapDBError(err, "increment_likes")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAssetNotFound
	}
	return nil
}

// CreateComment inserts a comment and bumps the asset's comment counter
func (r *assetRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_create_comment")
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO asset_comments (id, asset_id, user_id, parent_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		comment.ID,
		comment.AssetID,
		comment.UserID,
		comment.ParentID,
		comment.Body,
		comment.CreatedAt,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_comment")
	}

	_, err = tx.Exec(ctx,
		"UPDATE assets SET comment_count = comment_count + 1 WHERE id = $1",
		comment.AssetID,
	)
	if err != nil {
		return r.mapDBError(err, "increment_comment_count")
	}

	return tx.Commit(ctx)
}

func (r *assetRepository) scanComment(row pgx.Row) (*models.Comment, error) {
	comment := &models.Comment{User: &models.UserProfile{}}
	var parentID *string

	err := row.Scan(
		&comment.ID,
		&comment.AssetID,
		&comment.UserID,
		&parentID,
		&comment.Body,
		&comment.CreatedAt,
		&comment.User.ID,
		&comment.User.Username,
		&comment.User.FullName,
	)
	if err != nil {
		return nil, err
	}
	comment.ParentID = parentID
	return comment, nil
}

const commentSelect = `
	SELECT c.id, c.asset_id, c.user_id, c.parent_id, c.body, c.created_at,
	       u.id, u.username, u.full_name
	FROM asset_comments c
	JOIN users u ON u.id = c.user_id
`

// GetCommentByID retrieves one comment with its author
func (r *assetRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := r.scanComment(r.pool.QueryRow(ctx, commentSelect+" WHERE c.id = $1", id))
	if err != nil {
		return nil, r.mapDBError(err, "get_comment_by_id")
	}
	return comment, nil
}

// ListComments retrieves an asset's comments, newest first
func (r *assetRepository) ListComments(ctx context.Context, assetID string, limit, offset int) ([]*models.Comment, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM asset_comments WHERE asset_id = $1", assetID,
	).Scan(&total)
	if err != nil {
		return nil, 0, r.mapDBError(err, "count_comments")
	}

	query := commentSelect + ` WHERE c.asset_id = $1 ORDER BY c.created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, assetID, limit, offset)
	if err != nil {
		return nil, 0, r.mapDBError(err, "list_comments")
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := r.scanComment(rows)
		if err != nil {
			return nil, 0, r.mapDBError(err, "scan_comment")
		}
		comments = append(comments, comment)
	}
	return comments, total, rows.Err()
}

// GetCommentedAssets retrieves visible, non-deleted assets with comments
// created inside [start, end), their window comments (newest first), and the
// parents those comments reply to. Parents may predate the window.
func (r *assetRepository) GetCommentedAssets(ctx context.Context, courseID string, start, end time.Time) ([]*models.CommentedAsset, error) {
	query := commentSelect + `
		JOIN assets a ON a.id = c.asset_id
		WHERE a.course_id = $1 AND a.visible = TRUE AND a.deleted = FALSE
		  AND c.created_at >= $2 AND c.created_at < $3
		ORDER BY c.asset_id, c.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, courseID, start, end)
	if err != nil {
		return nil, r.mapDBError(err, "get_commented_assets")
	}
	defer rows.Close()

	byAsset := make(map[string][]*models.Comment)
	var order []string
	for rows.Next() {
		comment, err := r.scanComment(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_windowed_comment")
		}
		if _, seen := byAsset[comment.AssetID]; !seen {
			order = append(order, comment.AssetID)
		}
		byAsset[comment.AssetID] = append(byAsset[comment.AssetID], comment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapDBError(err, "get_commented_assets")
	}
	if len(order) == 0 {
		return nil, nil
	}

	assets, err := r.ListByIDs(ctx, order)
	if err != nil {
		return nil, err
	}

	var result []*models.CommentedAsset
	for _, assetID := range order {
		asset, ok := assets[assetID]
		if !ok {
			continue
		}
		ca := &models.CommentedAsset{
			Asset:       asset,
			NewComments: byAsset[assetID],
			Parents:     make(map[string]*models.Comment),
		}

		// Resolve reply parents not already inside the window set
		window := make(map[string]*models.Comment, len(ca.NewComments))
		for _, c := range ca.NewComments {
			window[c.ID] = c
		}
		for _, c := range ca.NewComments {
			if c.ParentID == nil {
				continue
			}
			if parent, ok := window[*c.ParentID]; ok {
				ca.Parents[parent.ID] = parent
				continue
			}
			parent, err := r.GetCommentByID(ctx, *c.ParentID)
			if err != nil {
				return nil, err
			}
			ca.Parents[parent.ID] = parent
		}

		result = append(result, ca)
	}
	return result, nil
}

func (r *assetRepository) mapDBError(err error, operation string) error {
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("required field missing in asset: %w", err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("asset references missing row: %w", err)
		case "23514": // check_violation
			return fmt.Errorf("invalid asset type: %w", err)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
