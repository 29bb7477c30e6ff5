package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"suitec/internal/repository"
	"suitec/pkg/logger"
	"suitec/pkg/models"
	"suitec/pkg/utils"
)

// EngagementService defines the engagement index operations: recording
// point-carrying activities, the course leaderboard, and the per-course
// activity type point configuration.
type EngagementService interface {
	RecordActivity(ctx context.Context, activity *models.Activity) error
	GetLeaderboard(ctx context.Context, courseID string, limit int) (*models.LeaderboardResponse, error)
	GetTypeConfiguration(ctx context.Context, courseID string) ([]*models.ActivityTypeConfiguration, error)
	UpdateTypeConfiguration(ctx context.Context, caller *models.User, courseID string, req *models.UpdateActivityTypeRequest) error
	RecalculatePoints(ctx context.Context, caller *models.User, courseID string) error
}

type engagementService struct {
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
	cache        *redis.Client
	cacheTTL     time.Duration
}

// NewEngagementService creates an engagement index service. cache may be
// nil, in which case the leaderboard is computed from the database on every
// request.
func NewEngagementService(
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
) EngagementService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &engagementService{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

func leaderboardKey(courseID string) string {
	return "suitec:leaderboard:" + courseID
}

// RecordActivity persists one activity and credits its configured point
// value to the recipient. A disabled or unconfigured type still records the
// activity but moves no points.
func (s *engagementService) RecordActivity(ctx context.Context, activity *models.Activity) error {
	switch activity.Type {
	case models.ActivityTypeAddAsset, models.ActivityTypeAssetComment,
		models.ActivityTypeLike, models.ActivityTypeViewAsset,
		models.ActivityTypeExportWhiteboard, models.ActivityTypeWhiteboardAddAsset:
	default:
		return fmt.Errorf("invalid activity type: %s", activity.Type)
	}

	if activity.ID == "" {
		activity.ID = utils.GenerateActivityID()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return err
	}

	configs, err := s.activityRepo.GetTypeConfiguration(ctx, activity.CourseID)
	if err != nil {
		return err
	}
	if cfg, ok := ConfigByType(configs)[activity.Type]; ok && cfg.Enabled && cfg.Points != 0 {
		user, err := s.userRepo.GetByID(ctx, activity.UserID)
		if err != nil {
			return err
		}
		if err := s.userRepo.UpdatePoints(ctx, user.ID, user.Points+cfg.Points); err != nil {
			return err
		}
		s.invalidateLeaderboard(ctx, activity.CourseID)
	}
	return nil
}

// GetLeaderboard returns the ranked engagement index for a course, serving
// from the cache when possible. Users who opted out of sharing points are
// listed with identity redacted, same rule as the weekly top-user pick.
func (s *engagementService) GetLeaderboard(ctx context.Context, courseID string, limit int) (*models.LeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if cached := s.cachedLeaderboard(ctx, courseID); cached != nil {
		if len(cached.Entries) > limit {
			cached.Entries = cached.Entries[:limit]
		}
		return cached, nil
	}

	roster, err := s.userRepo.GetRankedActiveUsers(ctx, courseID)
	if err != nil {
		return nil, err
	}

	ranks := rankUsers(roster)
	entries := make([]models.LeaderboardEntry, 0, len(roster))
	for _, user := range roster {
		entry := models.LeaderboardEntry{
			Points:      user.Points,
			Rank:        ranks[user.ID],
			SharePoints: user.SharePoints,
		}
		if user.SharePoints {
			entry.UserID = user.ID
			entry.FullName = user.FullName
		}
		entries = append(entries, entry)
	}

	response := &models.LeaderboardResponse{CourseID: courseID, Entries: entries}
	s.storeLeaderboard(ctx, courseID, response)

	if len(response.Entries) > limit {
		response.Entries = response.Entries[:limit]
	}
	return response, nil
}

func (s *engagementService) cachedLeaderboard(ctx context.Context, courseID string) *models.LeaderboardResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, leaderboardKey(courseID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("leaderboard cache read failed: %v", err)
		}
		return nil
	}
	var response models.LeaderboardResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		logger.Warnf("leaderboard cache entry corrupt, discarding: %v", err)
		return nil
	}
	response.Cached = true
	return &response
}

func (s *engagementService) storeLeaderboard(ctx context.Context, courseID string, response *models.LeaderboardResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, leaderboardKey(courseID), raw, s.cacheTTL).Err(); err != nil {
		logger.Warnf("leaderboard cache write failed: %v", err)
	}
}

func (s *engagementService) invalidateLeaderboard(ctx context.Context, courseID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardKey(courseID)).Err(); err != nil {
		logger.Warnf("leaderboard cache invalidation failed: %v", err)
	}
}

// GetTypeConfiguration returns the course's activity type point values
func (s *engagementService) GetTypeConfiguration(ctx context.Context, courseID string) ([]*models.ActivityTypeConfiguration, error) {
	return s.activityRepo.GetTypeConfiguration(ctx, courseID)
}

// UpdateTypeConfiguration changes one activity type's point value.
// Admin only; past activities keep their recorded points until an explicit
// recalculation.
func (s *engagementService) UpdateTypeConfiguration(ctx context.Context, caller *models.User, courseID string, req *models.UpdateActivityTypeRequest) error {
	if caller == nil || !caller.IsAdmin() {
		return models.ErrUnauthorized
	}
	if req.Type == "" {
		return models.ErrInvalidInput
	}

	err := s.activityRepo.UpsertTypeConfiguration(ctx, &models.ActivityTypeConfiguration{
		CourseID: courseID,
		Type:     req.Type,
		Points:   req.Points,
		Enabled:  req.Enabled,
	})
	if err != nil {
		return err
	}
	s.invalidateLeaderboard(ctx, courseID)
	return nil
}

// RecalculatePoints rebuilds every user's point total from the activity log
// under the current configuration. Admin only.
func (s *engagementService) RecalculatePoints(ctx context.Context, caller *models.User, courseID string) error {
	if caller == nil || !caller.IsAdmin() {
		return models.ErrUnauthorized
	}

	totals, err := s.activityRepo.SumPointsByUser(ctx, courseID)
	if err != nil {
		return err
	}

	users, err := s.userRepo.GetAllUsers(ctx, courseID)
	if err != nil {
		return err
	}
	for _, user := range users {
		if err := s.userRepo.UpdatePoints(ctx, user.ID, totals[user.ID]); err != nil {
			return err
		}
	}

	s.invalidateLeaderboard(ctx, courseID)
	logger.WithFields(map[string]interface{}{
		"course_id": courseID,
		"users":     len(users),
	}).Info("engagement points recalculated")
	return nil
}
