// Protocol-agnostic asset library service
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suitec/internal/repository"
	"suitec/pkg/logger"
	"suitec/pkg/models"
	"suitec/pkg/utils"
)

// AssetService defines asset library operations. Every engagement with an
// asset (view, like, comment) records an activity so the engagement index
// and the digests see it.
type AssetService interface {
	CreateAsset(ctx context.Context, owner *models.User, req *models.CreateAssetRequest) (*models.Asset, error)
	GetAsset(ctx context.Context, viewer *models.User, assetID string) (*models.Asset, error)
	LikeAsset(ctx context.Context, liker *models.User, assetID string) error
	CreateComment(ctx context.Context, author *models.User, assetID string, req *models.CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, assetID string, limit, offset int) (*models.CommentListResponse, error)
}

type assetService struct {
	assetRepo  repository.AssetRepository
	engagement EngagementService
}

// NewAssetService creates a new asset library service
func NewAssetService(assetRepo repository.AssetRepository, engagement EngagementService) AssetService {
	return &assetService{
		assetRepo:  assetRepo,
		engagement: engagement,
	}
}

// CreateAsset adds an asset to the course library and credits the upload
func (s *assetService) CreateAsset(ctx context.Context, owner *models.User, req *models.CreateAssetRequest) (*models.Asset, error) {
	if err := utils.ValidateAssetTitle(req.Title); err != nil {
		return nil, err
	}
	switch req.Type {
	case models.AssetTypeFile, models.AssetTypeLink, models.AssetTypeWhiteboard:
	default:
		return nil, fmt.Errorf("invalid asset type: %s", req.Type)
	}
	if req.Type == models.AssetTypeLink && req.URL == "" {
		return nil, fmt.Errorf("link assets require a url")
	}

	asset := &models.Asset{
		ID:          utils.GenerateAssetID(),
		CourseID:    owner.CourseID,
		Type:        req.Type,
		Title:       strings.TrimSpace(req.Title),
		URL:         req.URL,
		Description: req.Description,
		Visible:     true,
		Users: []models.AssetUser{
			{ID: owner.ID, FullName: owner.FullName, Role: owner.Role},
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, &models.Activity{
		CourseID: owner.CourseID,
		Type:     models.ActivityTypeAddAsset,
		UserID:   owner.ID,
		AssetID:  &asset.ID,
	})
	return asset, nil
}

// GetAsset fetches an asset and counts the view. A view by someone other
// than the owner is a reciprocal activity credited to the owner.
func (s *assetService) GetAsset(ctx context.Context, viewer *models.User, assetID string) (*models.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if err := s.assetRepo.IncrementViews(ctx, assetID); err != nil {
		logger.Warnf("failed to count view on asset %s: %v", assetID, err)
	} else {
		asset.Views++
	}

	if viewer != nil && !asset.OwnedBy(viewer.ID) {
		if owner := ownerID(asset); owner != "" {
			s.recordActivity(ctx, &models.Activity{
				CourseID: asset.CourseID,
				Type:     models.ActivityTypeViewAsset,
				UserID:   owner,
				ActorID:  &viewer.ID,
				AssetID:  &asset.ID,
			})
		}
	}
	return asset, nil
}

// LikeAsset likes an asset on behalf of the given user. Liking your own
// asset is rejected.
func (s *assetService) LikeAsset(ctx context.Context, liker *models.User, assetID string) error {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.OwnedBy(liker.ID) {
		return models.ErrInvalidInput
	}

	if err := s.assetRepo.IncrementLikes(ctx, assetID); err != nil {
		return err
	}

	if owner := ownerID(asset); owner != "" {
		s.recordActivity(ctx, &models.Activity{
			CourseID: asset.CourseID,
			Type:     models.ActivityTypeLike,
			UserID:   owner,
			ActorID:  &liker.ID,
			AssetID:  &asset.ID,
		})
	}
	return nil
}

// CreateComment adds a comment or a direct reply to an asset. Replies are
// one level deep: replying to a reply is rejected.
func (s *assetService) CreateComment(ctx context.Context, author *models.User, assetID string, req *models.CreateCommentRequest) (*models.Comment, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" || len(body) > models.MaxCommentLength {
		return nil, models.ErrInvalidInput
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.assetRepo.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.AssetID != assetID || parent.Reply() {
			return nil, models.ErrInvalidInput
		}
	}

	comment := &models.Comment{
		ID:        utils.GenerateID("comment"),
		AssetID:   assetID,
		UserID:    author.ID,
		ParentID:  req.ParentID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.assetRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if !asset.OwnedBy(author.ID) {
		if owner := ownerID(asset); owner != "" {
			s.recordActivity(ctx, &models.Activity{
				CourseID: asset.CourseID,
				Type:     models.ActivityTypeAssetComment,
				UserID:   owner,
				ActorID:  &author.ID,
				AssetID:  &asset.ID,
			})
		}
	}
	return comment, nil
}

// ListComments returns a page of an asset's comments
func (s *assetService) ListComments(ctx context.Context, assetID string, limit, offset int) (*models.CommentListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	comments, total, err := s.assetRepo.ListComments(ctx, assetID, limit, offset)
	if err != nil {
		return nil, err
	}

	data := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		data = append(data, *c)
	}
	return &models.CommentListResponse{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}, nil
}

// recordActivity is best-effort bookkeeping: a failed activity write never
// fails the user-facing operation that triggered it
func (s *assetService) recordActivity(ctx context.Context, activity *models.Activity) {
	if err := s.engagement.RecordActivity(ctx, activity); err != nil {
		logger.WithFields(map[string]interface{}{
			"course_id": activity.CourseID,
			"type":      activity.Type,
			"error":     err.Error(),
		}).Warn("activity not recorded")
	}
}

// ownerID returns the first associated user, the uploader by convention
func ownerID(asset *models.Asset) string {
	if len(asset.Users) == 0 {
		return ""
	}
	return asset.Users[0].ID
}
