package core

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitec/internal/email"
	"suitec/pkg/config"
	"suitec/pkg/models"
)

func weeklyNow() time.Time {
	// Thursday 10:00 UTC; the window closes at 08:00 the same day
	return time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
}

func weeklyFixture() (*fakeCourseRepo, *fakeUserRepo, *fakeActivityRepo, *fakeAssetRepo, *fakeDigestRepo) {
	courseRepo := &fakeCourseRepo{courses: []*models.Course{{
		ID:                         "c1",
		Name:                       "Art 101",
		AssetLibraryEnabled:        true,
		EngagementIndexEnabled:     true,
		WeeklyNotificationsEnabled: true,
	}}}

	userRepo := &fakeUserRepo{users: []*models.User{
		{ID: "u1", CourseID: "c1", FullName: "Uma", Email: "uma@example.edu", Points: 100, SharePoints: true, Active: true},
		{ID: "u2", CourseID: "c1", FullName: "Vik", Email: "vik@example.edu", Points: 50, SharePoints: true, Active: true},
		{ID: "u3", CourseID: "c1", FullName: "Wen", Points: 10, SharePoints: true, Active: true}, // no email
	}}

	activityRepo := &fakeActivityRepo{
		configs: []*models.ActivityTypeConfiguration{
			{CourseID: "c1", Type: models.ActivityTypeAddAsset, Points: 5, Enabled: true},
			{CourseID: "c1", Type: models.ActivityTypeLike, Points: 2, Enabled: true},
		},
		activities: []*models.Activity{
			{ID: "act-1", CourseID: "c1", Type: models.ActivityTypeAddAsset, UserID: "u1",
				AssetID: strPtr("a1"), CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
			{ID: "act-2", CourseID: "c1", Type: models.ActivityTypeLike, UserID: "u1",
				ActorID: strPtr("u2"), AssetID: strPtr("a1"), CreatedAt: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
		},
	}

	assetRepo := &fakeAssetRepo{assets: map[string]*models.Asset{
		"a1": {ID: "a1", CourseID: "c1", Title: "Syllabus", Visible: true,
			Views: 3, Likes: 1, Users: []models.AssetUser{{ID: "u1", FullName: "Uma"}}},
	}}

	return courseRepo, userRepo, activityRepo, assetRepo, &fakeDigestRepo{}
}

func TestWeeklyCollectSendsToUsersWithEmail(t *testing.T) {
	courseRepo, userRepo, activityRepo, assetRepo, digestRepo := weeklyFixture()
	sender := email.NewSilentConsoleSender()

	svc := NewWeeklyDigestService(courseRepo, userRepo, activityRepo, assetRepo, digestRepo,
		sender, config.DigestConfig{WeeklyHour: 8}, rand.New(rand.NewSource(1)), weeklyNow)

	svc.Collect(context.Background())

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Your weekly activity summary for Art 101", sent[0].Subject)
	assert.Equal(t, "uma@example.edu", sent[0].Recipient.Email)
	assert.Equal(t, "vik@example.edu", sent[1].Recipient.Email)

	// Per-recipient payload carries the rank and the personal totals
	payload, ok := sent[0].Data.(*models.WeeklyDigest)
	require.True(t, ok)
	assert.Equal(t, 1, payload.Rank)
	require.NotNil(t, payload.Totals)
	assert.Equal(t, 5, payload.Totals.PointsGenerated)
	assert.Equal(t, 2, payload.Totals.PointsReceived)
	require.NotNil(t, payload.MostPopularAsset)
	assert.Equal(t, "a1", payload.MostPopularAsset.ID)

	// Every send leaves a record
	require.Len(t, digestRepo.records, 2)
	assert.Equal(t, "weekly", digestRepo.records[0].Frequency)
	assert.Equal(t, "c1", digestRepo.records[0].CourseID)
	assert.Equal(t, weeklyNow(), digestRepo.records[0].SentAt)
}

func TestWeeklyCollectWindowBounds(t *testing.T) {
	courseRepo, userRepo, activityRepo, assetRepo, digestRepo := weeklyFixture()

	// Push the only activities outside the seven-day window
	for _, a := range activityRepo.activities {
		a.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	sender := email.NewSilentConsoleSender()
	svc := NewWeeklyDigestService(courseRepo, userRepo, activityRepo, assetRepo, digestRepo,
		sender, config.DigestConfig{WeeklyHour: 8}, nil, weeklyNow)

	svc.Collect(context.Background())
	assert.Empty(t, sender.Sent())
	assert.Empty(t, digestRepo.records)
}

func TestWeeklyCollectSkipsIneligibleCourse(t *testing.T) {
	courseRepo, userRepo, activityRepo, assetRepo, digestRepo := weeklyFixture()
	courseRepo.courses[0].WeeklyNotificationsEnabled = false

	sender := email.NewSilentConsoleSender()
	svc := NewWeeklyDigestService(courseRepo, userRepo, activityRepo, assetRepo, digestRepo,
		sender, config.DigestConfig{WeeklyHour: 8}, nil, weeklyNow)

	svc.Collect(context.Background())
	assert.Empty(t, sender.Sent())
}

func TestWeeklyCollectSendFailureSkipsUserOnly(t *testing.T) {
	courseRepo, userRepo, activityRepo, assetRepo, digestRepo := weeklyFixture()
	inner := email.NewSilentConsoleSender()
	sender := &failingSender{inner: inner, rejectUser: "u1"}

	svc := NewWeeklyDigestService(courseRepo, userRepo, activityRepo, assetRepo, digestRepo,
		sender, config.DigestConfig{WeeklyHour: 8}, nil, weeklyNow)

	svc.Collect(context.Background())

	sent := inner.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "u2", sent[0].Recipient.ID)
	require.Len(t, digestRepo.records, 1)
	assert.Equal(t, "u2", digestRepo.records[0].UserID)
}

func TestWeeklySendDigestForCourseRequiresAdmin(t *testing.T) {
	courseRepo, userRepo, activityRepo, assetRepo, digestRepo := weeklyFixture()
	sender := email.NewSilentConsoleSender()

	svc := NewWeeklyDigestService(courseRepo, userRepo, activityRepo, assetRepo, digestRepo,
		sender, config.DigestConfig{WeeklyHour: 8}, nil, weeklyNow)

	student := &models.User{ID: "s1", Role: models.UserRoleStudent}
	assert.ErrorIs(t, svc.SendDigestForCourse(context.Background(), student, "c1"), models.ErrUnauthorized)
	assert.ErrorIs(t, svc.SendDigestForCourse(context.Background(), nil, "c1"), models.ErrUnauthorized)
	assert.Empty(t, sender.Sent())

	admin := &models.User{ID: "adm", Role: models.UserRoleAdmin}
	assert.ErrorIs(t, svc.SendDigestForCourse(context.Background(), admin, "missing"), models.ErrCourseNotFound)

	require.NoError(t, svc.SendDigestForCourse(context.Background(), admin, "c1"))
	assert.Len(t, sender.Sent(), 2)
}
