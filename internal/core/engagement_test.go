package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitec/pkg/models"
)

func engagementFixture() (*fakeActivityRepo, *fakeUserRepo, EngagementService) {
	activityRepo := &fakeActivityRepo{
		configs: []*models.ActivityTypeConfiguration{
			{CourseID: "c1", Type: models.ActivityTypeLike, Points: 2, Enabled: true},
			{CourseID: "c1", Type: models.ActivityTypeViewAsset, Points: 0, Enabled: true},
			{CourseID: "c1", Type: models.ActivityTypeAddAsset, Points: 5, Enabled: false},
		},
	}
	userRepo := &fakeUserRepo{users: []*models.User{
		{ID: "u1", CourseID: "c1", FullName: "Uma", Points: 10, SharePoints: true, Active: true},
		{ID: "u2", CourseID: "c1", FullName: "Vik", Points: 30, SharePoints: false, Active: true},
	}}
	svc := NewEngagementService(activityRepo, userRepo, nil, time.Minute)
	return activityRepo, userRepo, svc
}

func TestRecordActivityCreditsPoints(t *testing.T) {
	activityRepo, userRepo, svc := engagementFixture()

	activity := &models.Activity{
		CourseID: "c1",
		Type:     models.ActivityTypeLike,
		UserID:   "u1",
		ActorID:  strPtr("u2"),
	}
	require.NoError(t, svc.RecordActivity(context.Background(), activity))

	// The activity got persisted with an id and timestamp filled in
	require.Len(t, activityRepo.activities, 1)
	assert.NotEmpty(t, activityRepo.activities[0].ID)
	assert.False(t, activityRepo.activities[0].CreatedAt.IsZero())

	// The recipient, not the actor, earns the configured points
	u1, _ := userRepo.GetByID(context.Background(), "u1")
	assert.Equal(t, 12, u1.Points)
	u2, _ := userRepo.GetByID(context.Background(), "u2")
	assert.Equal(t, 30, u2.Points)
}

func TestRecordActivityZeroPointTypeStillRecorded(t *testing.T) {
	activityRepo, userRepo, svc := engagementFixture()

	activity := &models.Activity{CourseID: "c1", Type: models.ActivityTypeViewAsset, UserID: "u1"}
	require.NoError(t, svc.RecordActivity(context.Background(), activity))

	assert.Len(t, activityRepo.activities, 1)
	u1, _ := userRepo.GetByID(context.Background(), "u1")
	assert.Equal(t, 10, u1.Points)
}

func TestRecordActivityDisabledTypeMovesNoPoints(t *testing.T) {
	_, userRepo, svc := engagementFixture()

	activity := &models.Activity{CourseID: "c1", Type: models.ActivityTypeAddAsset, UserID: "u1"}
	require.NoError(t, svc.RecordActivity(context.Background(), activity))

	u1, _ := userRepo.GetByID(context.Background(), "u1")
	assert.Equal(t, 10, u1.Points)
}

func TestRecordActivityRejectsUnknownType(t *testing.T) {
	activityRepo, _, svc := engagementFixture()

	err := svc.RecordActivity(context.Background(), &models.Activity{CourseID: "c1", Type: "course_login", UserID: "u1"})
	assert.Error(t, err)
	assert.Empty(t, activityRepo.activities)
}

func TestGetLeaderboardRanksAndRedacts(t *testing.T) {
	_, _, svc := engagementFixture()

	board, err := svc.GetLeaderboard(context.Background(), "c1", 50)
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)

	// u2 leads but opted out of sharing, so only the numbers show
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, 30, board.Entries[0].Points)
	assert.Empty(t, board.Entries[0].UserID)
	assert.Empty(t, board.Entries[0].FullName)

	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.Equal(t, "u1", board.Entries[1].UserID)
	assert.Equal(t, "Uma", board.Entries[1].FullName)
	assert.False(t, board.Cached)
}

func TestGetLeaderboardLimitClamp(t *testing.T) {
	_, _, svc := engagementFixture()

	board, err := svc.GetLeaderboard(context.Background(), "c1", 1)
	require.NoError(t, err)
	assert.Len(t, board.Entries, 1)
}

func TestUpdateTypeConfigurationAdminOnly(t *testing.T) {
	activityRepo, _, svc := engagementFixture()

	req := &models.UpdateActivityTypeRequest{Type: models.ActivityTypeLike, Points: 4, Enabled: true}
	student := &models.User{ID: "s1", Role: models.UserRoleStudent}
	assert.ErrorIs(t, svc.UpdateTypeConfiguration(context.Background(), student, "c1", req), models.ErrUnauthorized)

	admin := &models.User{ID: "adm", Role: models.UserRoleAdmin}
	require.NoError(t, svc.UpdateTypeConfiguration(context.Background(), admin, "c1", req))

	configs, _ := activityRepo.GetTypeConfiguration(context.Background(), "c1")
	assert.Equal(t, 4, ConfigByType(configs)[models.ActivityTypeLike].Points)
}

func TestRecalculatePointsRebuildsTotals(t *testing.T) {
	activityRepo, userRepo, svc := engagementFixture()
	activityRepo.pointSums = map[string]int{"u1": 7}

	admin := &models.User{ID: "adm", Role: models.UserRoleAdmin}
	require.NoError(t, svc.RecalculatePoints(context.Background(), admin, "c1"))

	u1, _ := userRepo.GetByID(context.Background(), "u1")
	assert.Equal(t, 7, u1.Points)
	// No recorded activity for u2: total resets to zero
	u2, _ := userRepo.GetByID(context.Background(), "u2")
	assert.Equal(t, 0, u2.Points)

	student := &models.User{ID: "s1", Role: models.UserRoleStudent}
	assert.ErrorIs(t, svc.RecalculatePoints(context.Background(), student, "c1"), models.ErrUnauthorized)
}
