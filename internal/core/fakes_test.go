package core

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"suitec/internal/email"
	"suitec/pkg/models"
)

// In-memory repository fakes shared by the service tests in this package.

type fakeCourseRepo struct {
	courses []*models.Course
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	f.courses = append(f.courses, course)
	return nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id string) (*models.Course, error) {
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.ErrCourseNotFound
}

func (f *fakeCourseRepo) ListActiveCourses(ctx context.Context) ([]*models.Course, error) {
	return f.courses, nil
}

func (f *fakeCourseRepo) UpdateNotificationSettings(ctx context.Context, id string, daily, weekly bool) error {
	course, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	course.DailyNotificationsEnabled = daily
	course.WeeklyNotificationsEnabled = weekly
	return nil
}

type fakeUserRepo struct {
	users []*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	// Store a copy so callers mutating their struct after Create (as a real
	// database allows) do not alter the stored record.
	stored := *user
	f.users = append(f.users, &stored)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) UpdatePoints(ctx context.Context, id string, points int) error {
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Points = points
	return nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) GetRankedActiveUsers(ctx context.Context, courseID string) ([]*models.User, error) {
	var roster []*models.User
	for _, u := range f.users {
		if u.CourseID == courseID && u.Active {
			roster = append(roster, u)
		}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].Points > roster[j].Points
	})
	return roster, nil
}

func (f *fakeUserRepo) GetAllUsers(ctx context.Context, courseID string) ([]*models.User, error) {
	var users []*models.User
	for _, u := range f.users {
		if u.CourseID == courseID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return errors.New("not supported in fake")
}

type fakeActivityRepo struct {
	activities []*models.Activity
	configs    []*models.ActivityTypeConfiguration
	pointSums  map[string]int
}

func (f *fakeActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	f.activities = append(f.activities, activity)
	return nil
}

func (f *fakeActivityRepo) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	for _, a := range f.activities {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeActivityRepo) GetActivitiesInRange(ctx context.Context, courseID string, start, end time.Time) ([]*models.Activity, error) {
	var matched []*models.Activity
	for _, a := range f.activities {
		if a.CourseID != courseID {
			continue
		}
		if a.CreatedAt.Before(start) || !a.CreatedAt.Before(end) {
			continue
		}
		matched = append(matched, a)
	}
	return matched, nil
}

func (f *fakeActivityRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, int, error) {
	var matched []*models.Activity
	for _, a := range f.activities {
		if a.UserID == userID {
			matched = append(matched, a)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeActivityRepo) SumPointsByUser(ctx context.Context, courseID string) (map[string]int, error) {
	return f.pointSums, nil
}

func (f *fakeActivityRepo) GetTypeConfiguration(ctx context.Context, courseID string) ([]*models.ActivityTypeConfiguration, error) {
	return f.configs, nil
}

func (f *fakeActivityRepo) UpsertTypeConfiguration(ctx context.Context, cfg *models.ActivityTypeConfiguration) error {
	for i, existing := range f.configs {
		if existing.CourseID == cfg.CourseID && existing.Type == cfg.Type {
			f.configs[i] = cfg
			return nil
		}
	}
	f.configs = append(f.configs, cfg)
	return nil
}

func (f *fakeActivityRepo) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return errors.New("not supported in fake")
}

type fakeAssetRepo struct {
	assets    map[string]*models.Asset
	comments  []*models.Comment
	commented []*models.CommentedAsset
}

func (f *fakeAssetRepo) Create(ctx context.Context, asset *models.Asset) error {
	if f.assets == nil {
		f.assets = make(map[string]*models.Asset)
	}
	f.assets[asset.ID] = asset
	return nil
}

func (f *fakeAssetRepo) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	if asset, ok := f.assets[id]; ok {
		return asset, nil
	}
	return nil, models.ErrAssetNotFound
}

func (f *fakeAssetRepo) ListByIDs(ctx context.Context, ids []string) (map[string]*models.Asset, error) {
	found := make(map[string]*models.Asset, len(ids))
	for _, id := range ids {
		if asset, ok := f.assets[id]; ok {
			found[id] = asset
		}
	}
	return found, nil
}

func (f *fakeAssetRepo) IncrementViews(ctx context.Context, id string) error {
	asset, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	asset.Views++
	return nil
}

func (f *fakeAssetRepo) IncrementLikes(ctx context.Context, id string) error {
	asset, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	asset.Likes++
	return nil
}

func (f *fakeAssetRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeAssetRepo) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAssetRepo) ListComments(ctx context.Context, assetID string, limit, offset int) ([]*models.Comment, int, error) {
	var matched []*models.Comment
	for _, c := range f.comments {
		if c.AssetID == assetID {
			matched = append(matched, c)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeAssetRepo) GetCommentedAssets(ctx context.Context, courseID string, start, end time.Time) ([]*models.CommentedAsset, error) {
	return f.commented, nil
}

type fakeWhiteboardRepo struct {
	whiteboards []*models.Whiteboard
	messages    []*models.ChatMessage
	chatted     []*models.ChattedWhiteboard
}

func (f *fakeWhiteboardRepo) Create(ctx context.Context, whiteboard *models.Whiteboard) error {
	f.whiteboards = append(f.whiteboards, whiteboard)
	return nil
}

func (f *fakeWhiteboardRepo) GetByID(ctx context.Context, id string) (*models.Whiteboard, error) {
	for _, w := range f.whiteboards {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, models.ErrWhiteboardNotFound
}

func (f *fakeWhiteboardRepo) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeWhiteboardRepo) GetChatHistory(ctx context.Context, whiteboardID string, limit, offset int) ([]*models.ChatMessage, int, error) {
	var matched []*models.ChatMessage
	for _, m := range f.messages {
		if m.WhiteboardID == whiteboardID {
			matched = append(matched, m)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeWhiteboardRepo) GetChattedWhiteboards(ctx context.Context, courseID string, start, end time.Time) ([]*models.ChattedWhiteboard, error) {
	return f.chatted, nil
}

type fakeDigestRepo struct {
	records []*models.DigestRecord
	failure error
}

func (f *fakeDigestRepo) Record(ctx context.Context, record *models.DigestRecord) error {
	if f.failure != nil {
		return f.failure
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeDigestRepo) GetLastSent(ctx context.Context, courseID, frequency string) (*time.Time, error) {
	return nil, nil
}

// failingSender rejects delivery for one recipient and hands everything else
// to the wrapped sender.
type failingSender struct {
	inner      email.Sender
	rejectUser string
}

func (s *failingSender) SendDigest(ctx context.Context, digest *email.Digest) error {
	if digest.Recipient != nil && digest.Recipient.ID == s.rejectUser {
		return errors.New("smtp refused")
	}
	return s.inner.SendDigest(ctx, digest)
}
