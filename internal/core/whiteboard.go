// Protocol-agnostic whiteboard service
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suitec/internal/repository"
	"suitec/pkg/models"
	"suitec/pkg/utils"
)

// WhiteboardService defines collaborative whiteboard operations
type WhiteboardService interface {
	CreateWhiteboard(ctx context.Context, creator *models.User, title string, memberIDs []string) (*models.Whiteboard, error)
	GetWhiteboard(ctx context.Context, whiteboardID string) (*models.Whiteboard, error)
	SendChatMessage(ctx context.Context, sender *models.User, whiteboardID string, req *models.SendChatMessageRequest) (*models.ChatMessage, error)
	GetChatHistory(ctx context.Context, whiteboardID string, limit, offset int) (*models.ChatHistoryResponse, error)
	ExportWhiteboard(ctx context.Context, exporter *models.User, whiteboardID string) (*models.Asset, error)
}

type whiteboardService struct {
	whiteboardRepo repository.WhiteboardRepository
	userRepo       repository.UserRepository
	assetRepo      repository.AssetRepository
	engagement     EngagementService
}

// NewWhiteboardService creates a new whiteboard service
func NewWhiteboardService(
	whiteboardRepo repository.WhiteboardRepository,
	userRepo repository.UserRepository,
	assetRepo repository.AssetRepository,
	engagement EngagementService,
) WhiteboardService {
	return &whiteboardService{
		whiteboardRepo: whiteboardRepo,
		userRepo:       userRepo,
		assetRepo:      assetRepo,
		engagement:     engagement,
	}
}

// CreateWhiteboard creates a whiteboard with the creator plus the given
// users as members
func (s *whiteboardService) CreateWhiteboard(ctx context.Context, creator *models.User, title string, memberIDs []string) (*models.Whiteboard, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.ErrInvalidInput
	}

	members := []models.WhiteboardUser{{ID: creator.ID, FullName: creator.FullName}}
	seen := map[string]bool{creator.ID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", id, err)
		}
		if user.CourseID != creator.CourseID {
			return nil, models.ErrInvalidInput
		}
		seen[id] = true
		members = append(members, models.WhiteboardUser{ID: user.ID, FullName: user.FullName})
	}

	whiteboard := &models.Whiteboard{
		ID:        utils.GenerateID("wb"),
		CourseID:  creator.CourseID,
		Title:     title,
		Members:   members,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.whiteboardRepo.Create(ctx, whiteboard); err != nil {
		return nil, err
	}
	return whiteboard, nil
}

// GetWhiteboard fetches one whiteboard with its members
func (s *whiteboardService) GetWhiteboard(ctx context.Context, whiteboardID string) (*models.Whiteboard, error) {
	return s.whiteboardRepo.GetByID(ctx, whiteboardID)
}

// SendChatMessage posts a chat message to a whiteboard the sender belongs to
func (s *whiteboardService) SendChatMessage(ctx context.Context, sender *models.User, whiteboardID string, req *models.SendChatMessageRequest) (*models.ChatMessage, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" || len(body) > models.MaxCommentLength {
		return nil, models.ErrInvalidInput
	}

	whiteboard, err := s.whiteboardRepo.GetByID(ctx, whiteboardID)
	if err != nil {
		return nil, err
	}
	if !whiteboard.HasMember(sender.ID) {
		return nil, models.ErrForbidden
	}

	message := &models.ChatMessage{
		ID:           utils.GenerateID("chat"),
		WhiteboardID: whiteboardID,
		UserID:       sender.ID,
		Body:         body,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.whiteboardRepo.CreateChatMessage(ctx, message); err != nil {
		return nil, err
	}
	message.User = &models.UserProfile{
		ID:        sender.ID,
		Username:  sender.Username,
		FullName:  sender.FullName,
		CreatedAt: sender.CreatedAt,
	}
	return message, nil
}

// GetChatHistory returns a page of a whiteboard's chat messages
func (s *whiteboardService) GetChatHistory(ctx context.Context, whiteboardID string, limit, offset int) (*models.ChatHistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, total, err := s.whiteboardRepo.GetChatHistory(ctx, whiteboardID, limit, offset)
	if err != nil {
		return nil, err
	}

	data := make([]models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		data = append(data, *m)
	}
	return &models.ChatHistoryResponse{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}, nil
}

// ExportWhiteboard snapshots a whiteboard into the asset library. All
// whiteboard members become associated users of the new asset, and the
// exporter earns the export activity.
func (s *whiteboardService) ExportWhiteboard(ctx context.Context, exporter *models.User, whiteboardID string) (*models.Asset, error) {
	whiteboard, err := s.whiteboardRepo.GetByID(ctx, whiteboardID)
	if err != nil {
		return nil, err
	}
	if !whiteboard.HasMember(exporter.ID) {
		return nil, models.ErrForbidden
	}

	users := make([]models.AssetUser, 0, len(whiteboard.Members))
	// Exporter first, so asset ownership conventions hold
	users = append(users, models.AssetUser{ID: exporter.ID, FullName: exporter.FullName, Role: exporter.Role})
	for _, m := range whiteboard.Members {
		if m.ID == exporter.ID {
			continue
		}
		member, err := s.userRepo.GetByID(ctx, m.ID)
		if err != nil {
			continue
		}
		users = append(users, models.AssetUser{ID: member.ID, FullName: member.FullName, Role: member.Role})
	}

	asset := &models.Asset{
		ID:        utils.GenerateAssetID(),
		CourseID:  whiteboard.CourseID,
		Type:      models.AssetTypeWhiteboard,
		Title:     whiteboard.Title,
		Visible:   true,
		Users:     users,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		CourseID: whiteboard.CourseID,
		Type:     models.ActivityTypeExportWhiteboard,
		UserID:   exporter.ID,
		AssetID:  &asset.ID,
	}
	if err := s.engagement.RecordActivity(ctx, activity); err != nil {
		return asset, fmt.Errorf("whiteboard exported but activity not recorded: %w", err)
	}
	return asset, nil
}
