package core

import (
	"context"
	"fmt"
	"time"

	"suitec/internal/email"
	"suitec/internal/repository"
	"suitec/pkg/config"
	"suitec/pkg/logger"
	"suitec/pkg/models"
	"suitec/pkg/utils"
)

const dailyWindow = 24 * time.Hour

// DailyDigestService builds and sends the daily digest emails
type DailyDigestService interface {
	// Collect runs the batch over every active course. Failures are logged
	// and confined to the course or user they occurred in; the batch itself
	// always completes.
	Collect(ctx context.Context)

	// SendDigestForCourse runs one course on demand. The caller must be an
	// administrator.
	SendDigestForCourse(ctx context.Context, caller *models.User, courseID string) error
}

type dailyDigestService struct {
	courseRepo     repository.CourseRepository
	userRepo       repository.UserRepository
	assetRepo      repository.AssetRepository
	whiteboardRepo repository.WhiteboardRepository
	mailer         digestMailer
	cutoffHour     int
	now            func() time.Time
}

// NewDailyDigestService creates a daily digest service. now may be nil
// (wall clock).
func NewDailyDigestService(
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	assetRepo repository.AssetRepository,
	whiteboardRepo repository.WhiteboardRepository,
	digestRepo repository.DigestRepository,
	sender email.Sender,
	cfg config.DigestConfig,
	now func() time.Time,
) DailyDigestService {
	if now == nil {
		now = time.Now
	}
	return &dailyDigestService{
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		assetRepo:      assetRepo,
		whiteboardRepo: whiteboardRepo,
		mailer:         digestMailer{sender: sender, digestRepo: digestRepo, now: now},
		cutoffHour:     cfg.DailyHour,
		now:            now,
	}
}

// Collect iterates courses strictly sequentially, same as the weekly batch
func (s *dailyDigestService) Collect(ctx context.Context) {
	courses, err := s.courseRepo.ListActiveCourses(ctx)
	if err != nil {
		logger.Errorf("daily digest: failed to list courses: %v", err)
		return
	}

	for _, course := range courses {
		if err := s.collectCourse(ctx, course); err != nil {
			logger.WithFields(map[string]interface{}{
				"course_id": course.ID,
				"error":     err.Error(),
			}).Error("daily digest: course skipped")
		}
	}
}

// SendDigestForCourse triggers one course's daily digest on demand
func (s *dailyDigestService) SendDigestForCourse(ctx context.Context, caller *models.User, courseID string) error {
	if caller == nil || !caller.IsAdmin() {
		return models.ErrUnauthorized
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	return s.collectCourse(ctx, course)
}

func (s *dailyDigestService) collectCourse(ctx context.Context, course *models.Course) error {
	if !course.DailyDigestEligible() {
		return nil
	}

	start, end := utils.CutoffWindow(s.now(), s.cutoffHour, dailyWindow)

	// All users, inactive included: the author of a parent comment must
	// still be nameable even if they left the course.
	users, err := s.userRepo.GetAllUsers(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}
	assets, err := s.assetRepo.GetCommentedAssets(ctx, course.ID, start, end)
	if err != nil {
		return fmt.Errorf("fetch commented assets: %w", err)
	}
	whiteboards, err := s.whiteboardRepo.GetChattedWhiteboards(ctx, course.ID, start, end)
	if err != nil {
		return fmt.Errorf("fetch chatted whiteboards: %w", err)
	}

	if len(assets) == 0 && len(whiteboards) == 0 {
		logger.Digest("daily", course.ID, 0, "no activity in window, course skipped")
		return nil
	}

	data := &models.DailyCourseData{
		Course:      course,
		Users:       users,
		Assets:      assets,
		Whiteboards: whiteboards,
	}

	sent := 0
	for _, user := range users {
		if !user.Active || user.Email == "" {
			continue
		}

		activities := ActivitiesForUser(data, user)
		if len(activities) == 0 {
			continue
		}

		digest := &models.DailyDigest{
			Course:      course,
			User:        user,
			Activities:  activities,
			WindowStart: start,
			WindowEnd:   end,
		}
		subject := Subject(course, activities, user)
		if err := s.mailer.send(ctx, course, user, subject, email.TemplateDailyDigest, "daily", digest); err != nil {
			continue
		}
		sent++
	}

	logger.Digest("daily", course.ID, sent, "daily digest sent")
	return nil
}
