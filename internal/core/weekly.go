package core

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"suitec/internal/email"
	"suitec/internal/repository"
	"suitec/pkg/config"
	"suitec/pkg/logger"
	"suitec/pkg/models"
	"suitec/pkg/utils"
)

const weeklyWindow = 7 * 24 * time.Hour

// WeeklyDigestService builds and sends the weekly digest emails
type WeeklyDigestService interface {
	// Collect runs the batch over every active course. Failures are logged
	// and confined to the course or user they occurred in; the batch itself
	// always completes.
	Collect(ctx context.Context)

	// SendDigestForCourse runs one course on demand. The caller must be an
	// administrator.
	SendDigestForCourse(ctx context.Context, caller *models.User, courseID string) error
}

type weeklyDigestService struct {
	courseRepo   repository.CourseRepository
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	assetRepo    repository.AssetRepository
	mailer       digestMailer
	summarizer   *Summarizer
	rng          *rand.Rand
	cutoffHour   int
	now          func() time.Time
}

// NewWeeklyDigestService creates a weekly digest service. rng may be nil
// (global source); now may be nil (wall clock).
func NewWeeklyDigestService(
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	assetRepo repository.AssetRepository,
	digestRepo repository.DigestRepository,
	sender email.Sender,
	cfg config.DigestConfig,
	rng *rand.Rand,
	now func() time.Time,
) WeeklyDigestService {
	if now == nil {
		now = time.Now
	}
	return &weeklyDigestService{
		courseRepo:   courseRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		assetRepo:    assetRepo,
		mailer:       digestMailer{sender: sender, digestRepo: digestRepo, now: now},
		summarizer:   NewSummarizer(rng),
		rng:          rng,
		cutoffHour:   cfg.WeeklyHour,
		now:          now,
	}
}

// Collect iterates courses strictly sequentially so a slow course bounds
// the batch additively instead of racing the others
func (s *weeklyDigestService) Collect(ctx context.Context) {
	courses, err := s.courseRepo.ListActiveCourses(ctx)
	if err != nil {
		logger.Errorf("weekly digest: failed to list courses: %v", err)
		return
	}

	for _, course := range courses {
		if err := s.collectCourse(ctx, course); err != nil {
			logger.WithFields(map[string]interface{}{
				"course_id": course.ID,
				"error":     err.Error(),
			}).Error("weekly digest: course skipped")
		}
	}
}

// SendDigestForCourse triggers one course's weekly digest on demand
func (s *weeklyDigestService) SendDigestForCourse(ctx context.Context, caller *models.User, courseID string) error {
	if caller == nil || !caller.IsAdmin() {
		return models.ErrUnauthorized
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	return s.collectCourse(ctx, course)
}

func (s *weeklyDigestService) collectCourse(ctx context.Context, course *models.Course) error {
	if !course.WeeklyDigestEligible() {
		return nil
	}

	start, end := utils.CutoffWindow(s.now(), s.cutoffHour, weeklyWindow)

	roster, err := s.userRepo.GetRankedActiveUsers(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("fetch roster: %w", err)
	}
	configs, err := s.activityRepo.GetTypeConfiguration(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("fetch activity type configuration: %w", err)
	}
	activities, err := s.activityRepo.GetActivitiesInRange(ctx, course.ID, start, end)
	if err != nil {
		return fmt.Errorf("fetch activities: %w", err)
	}

	if len(activities) == 0 {
		logger.Digest("weekly", course.ID, 0, "no activity in window, course skipped")
		return nil
	}

	assets, err := s.fetchAssetSnapshots(ctx, activities)
	if err != nil {
		return fmt.Errorf("fetch asset snapshots: %w", err)
	}

	summary := s.summarizer.SummarizeActivities(activities, ConfigByType(configs), assets, roster)
	ranks := rankUsers(roster)

	sent := 0
	for _, user := range roster {
		if user.Email == "" {
			continue
		}

		digest := &models.WeeklyDigest{
			Course:      course,
			User:        user,
			Rank:        ranks[user.ID],
			Summary:     summary.Course,
			WindowStart: start,
			WindowEnd:   end,
		}
		// A user with no activity this week still gets the course-wide
		// sections; the personal section just renders empty.
		if totals, ok := summary.Users[user.ID]; ok {
			digest.Totals = totals
			digest.MostPopularAsset = MostPopularAsset(totals.Assets, s.rng)
		}

		subject := fmt.Sprintf("Your weekly activity summary for %s", course.Name)
		if err := s.mailer.send(ctx, course, user, subject, email.TemplateWeeklyDigest, "weekly", digest); err != nil {
			continue
		}
		sent++
	}

	logger.Digest("weekly", course.ID, sent, "weekly digest sent")
	return nil
}

// fetchAssetSnapshots loads one snapshot per asset the window's activities
// reference, including deleted and hidden assets so the summarizer can score
// them zero instead of losing their counters.
func (s *weeklyDigestService) fetchAssetSnapshots(ctx context.Context, activities []*models.Activity) (map[string]*models.Asset, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, activity := range activities {
		if activity.AssetID != nil && !seen[*activity.AssetID] {
			seen[*activity.AssetID] = true
			ids = append(ids, *activity.AssetID)
		}
	}
	if len(ids) == 0 {
		return map[string]*models.Asset{}, nil
	}
	return s.assetRepo.ListByIDs(ctx, ids)
}

// rankUsers assigns competition ranks to a score-descending roster. Rank is
// one plus the number of strictly higher scores, so equal scores share a
// rank and the next distinct score skips past the tied block.
func rankUsers(roster []*models.User) map[string]int {
	ranks := make(map[string]int, len(roster))
	rank := 0
	prevPoints := 0
	for i, user := range roster {
		if i == 0 || user.Points != prevPoints {
			rank = i + 1
			prevPoints = user.Points
		}
		ranks[user.ID] = rank
	}
	return ranks
}
