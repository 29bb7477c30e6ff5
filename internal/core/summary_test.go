package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitec/pkg/models"
)

func strPtr(s string) *string { return &s }

func defaultConfig() map[string]*models.ActivityTypeConfiguration {
	return ConfigByType([]*models.ActivityTypeConfiguration{
		{Type: models.ActivityTypeAddAsset, Points: 5, Enabled: true},
		{Type: models.ActivityTypeAssetComment, Points: 3, Enabled: true},
		{Type: models.ActivityTypeLike, Points: 2, Enabled: true},
		{Type: models.ActivityTypeViewAsset, Points: 0, Enabled: true},
		{Type: models.ActivityTypeExportWhiteboard, Points: 10, Enabled: false},
		{Type: models.ActivityTypeWhiteboardAddAsset, Points: 8, Enabled: true},
	})
}

func studentUser(id, name string) *models.User {
	return &models.User{ID: id, FullName: name, Role: models.UserRoleStudent, SharePoints: true, Active: true}
}

func TestSummarizeActivitiesPointFlow(t *testing.T) {
	u1 := studentUser("u1", "Uma")
	u2 := studentUser("u2", "Vik")
	u3 := studentUser("u3", "Wen")
	roster := []*models.User{u1, u2, u3}

	assets := map[string]*models.Asset{
		"a1": {ID: "a1", Title: "Syllabus", Visible: true, Users: []models.AssetUser{{ID: "u1", Role: models.UserRoleStudent}}},
	}

	activities := []*models.Activity{
		// u1 uploads their own asset
		{Type: models.ActivityTypeAddAsset, UserID: "u1", AssetID: strPtr("a1")},
		// u2 comments on u1's asset
		{Type: models.ActivityTypeAssetComment, UserID: "u1", ActorID: strPtr("u2"), AssetID: strPtr("a1")},
		// u3 likes u1's asset
		{Type: models.ActivityTypeLike, UserID: "u1", ActorID: strPtr("u3"), AssetID: strPtr("a1")},
		// u2 views u1's asset (zero points, still counted)
		{Type: models.ActivityTypeViewAsset, UserID: "u1", ActorID: strPtr("u2"), AssetID: strPtr("a1")},
		// disabled type, skipped entirely
		{Type: models.ActivityTypeExportWhiteboard, UserID: "u3"},
		// unknown type, skipped entirely
		{Type: "course_login", UserID: "u2"},
	}

	summary := NewSummarizer(rand.New(rand.NewSource(1))).
		SummarizeActivities(activities, defaultConfig(), assets, roster)

	course := summary.Course.Totals
	assert.Equal(t, 5, course.PointsFromAssetsUploaded)
	assert.Equal(t, 3, course.PointsFromComments)
	assert.Equal(t, 2, course.PointsFromLikes)
	assert.Equal(t, 0, course.PointsFromWhiteboards)
	assert.Equal(t, 10, course.PointsGenerated)
	assert.Equal(t, 5, course.PointsReceived)

	owner := summary.Users["u1"]
	require.NotNil(t, owner)
	assert.Equal(t, 5, owner.PointsGenerated)
	assert.Equal(t, 5, owner.PointsReceived)
	assert.Equal(t, 1, owner.CommentsReceived)
	assert.Equal(t, 1, owner.LikesReceived)
	assert.Equal(t, 5, owner.PointsFromAssetsUploaded)
	assert.Equal(t, 3, owner.PointsFromComments)
	assert.Equal(t, 2, owner.PointsFromLikes)

	commenter := summary.Users["u2"]
	require.NotNil(t, commenter)
	assert.Equal(t, 3, commenter.PointsGenerated)
	assert.Equal(t, 0, commenter.PointsReceived)

	liker := summary.Users["u3"]
	require.NotNil(t, liker)
	assert.Equal(t, 2, liker.PointsGenerated)

	// Per-asset weekly counters
	asset := summary.Assets["a1"]
	require.NotNil(t, asset)
	assert.Equal(t, 1, asset.Comments)
	assert.Equal(t, 1, asset.Likes)
	assert.Equal(t, 1, asset.Views)

	// Averages round to nearest over the active roster
	avg := summary.Course.Averages
	assert.Equal(t, 2, avg.PointsFromAssetsUploaded) // 5/3
	assert.Equal(t, 1, avg.PointsFromComments)       // 3/3
	assert.Equal(t, 1, avg.PointsFromLikes)          // 2/3
	assert.Equal(t, 3, avg.PointsGenerated)          // 10/3
	assert.Equal(t, 2, avg.PointsReceived)           // 5/3

	// The asset snapshot flows into the owner's popularity pool
	assert.Contains(t, owner.Assets, "a1")
}

func TestSummarizeActivitiesTopWinners(t *testing.T) {
	u1 := studentUser("u1", "Uma")
	u2 := studentUser("u2", "Vik")
	roster := []*models.User{u1, u2}

	assets := map[string]*models.Asset{
		"a1": {ID: "a1", Title: "Notes", Visible: true, Users: []models.AssetUser{{ID: "u1"}}},
	}
	activities := []*models.Activity{
		{Type: models.ActivityTypeAssetComment, UserID: "u1", ActorID: strPtr("u2"), AssetID: strPtr("a1")},
		{Type: models.ActivityTypeLike, UserID: "u1", ActorID: strPtr("u2"), AssetID: strPtr("a1")},
	}

	summary := NewSummarizer(rand.New(rand.NewSource(1))).
		SummarizeActivities(activities, defaultConfig(), assets, roster)

	topComments := summary.Course.TopAssets[CategoryComments]
	require.NotNil(t, topComments)
	assert.Equal(t, "a1", topComments.Asset.ID)
	assert.Equal(t, 1, topComments.Value)

	// Nobody viewed anything, so the views category has no winner
	assert.NotContains(t, summary.Course.TopAssets, CategoryViews)

	generated := summary.Course.TopUsers[CategoryPointsGenerated]
	require.NotNil(t, generated)
	assert.Equal(t, "u2", generated.UserID)
	assert.Equal(t, "Vik", generated.FullName)
	assert.Equal(t, 5, generated.Value)

	received := summary.Course.TopUsers[CategoryPointsReceived]
	require.NotNil(t, received)
	assert.Equal(t, "u1", received.UserID)
	assert.Equal(t, 5, received.Value)
}

func TestSummarizeActivitiesDeletedAssetNeverWins(t *testing.T) {
	roster := []*models.User{studentUser("u1", "Uma"), studentUser("u2", "Vik")}

	assets := map[string]*models.Asset{
		"gone":   {ID: "gone", Deleted: true, Visible: true, Users: []models.AssetUser{{ID: "u1"}}},
		"hidden": {ID: "hidden", Visible: false, Users: []models.AssetUser{{ID: "u1"}}},
		"staff": {ID: "staff", Visible: true, Users: []models.AssetUser{
			{ID: "adm", Role: models.UserRoleAdmin},
		}},
	}
	activities := []*models.Activity{
		{Type: models.ActivityTypeAssetComment, UserID: "u1", ActorID: strPtr("u2"), AssetID: strPtr("gone")},
		{Type: models.ActivityTypeAssetComment, UserID: "u1", ActorID: strPtr("u2"), AssetID: strPtr("hidden")},
		{Type: models.ActivityTypeAssetComment, UserID: "u1", ActorID: strPtr("u2"), AssetID: strPtr("staff")},
	}

	summary := NewSummarizer(rand.New(rand.NewSource(1))).
		SummarizeActivities(activities, defaultConfig(), assets, roster)

	// All three assets scored zero after filtering, so no comments winner;
	// the points still flowed.
	assert.NotContains(t, summary.Course.TopAssets, CategoryComments)
	assert.Equal(t, 9, summary.Course.Totals.PointsFromComments)
}

func TestSummarizeActivitiesRedactsOptedOutWinner(t *testing.T) {
	private := studentUser("u9", "Quiet Quinn")
	private.SharePoints = false
	roster := []*models.User{studentUser("u1", "Uma"), private}

	activities := []*models.Activity{
		{Type: models.ActivityTypeLike, UserID: "u1", ActorID: strPtr("u9")},
	}

	summary := NewSummarizer(rand.New(rand.NewSource(1))).
		SummarizeActivities(activities, defaultConfig(), map[string]*models.Asset{}, roster)

	winner := summary.Course.TopUsers[CategoryPointsGenerated]
	require.NotNil(t, winner)
	assert.Equal(t, 2, winner.Value)
	assert.Empty(t, winner.UserID)
	assert.Empty(t, winner.FullName)
}

func TestSummarizeActivitiesRedactsOffRosterWinner(t *testing.T) {
	roster := []*models.User{studentUser("u1", "Uma")}

	// The actor left the course; their totals survive, their identity does not
	activities := []*models.Activity{
		{Type: models.ActivityTypeLike, UserID: "u1", ActorID: strPtr("departed")},
	}

	summary := NewSummarizer(rand.New(rand.NewSource(1))).
		SummarizeActivities(activities, defaultConfig(), map[string]*models.Asset{}, roster)

	winner := summary.Course.TopUsers[CategoryPointsGenerated]
	require.NotNil(t, winner)
	assert.Equal(t, 2, winner.Value)
	assert.Empty(t, winner.UserID)
}

func TestSummarizeActivitiesEmptyRoster(t *testing.T) {
	activities := []*models.Activity{
		{Type: models.ActivityTypeAddAsset, UserID: "ghost"},
	}

	summary := NewSummarizer(rand.New(rand.NewSource(1))).
		SummarizeActivities(activities, defaultConfig(), map[string]*models.Asset{}, nil)

	// Totals accumulate, averages stay defined at zero
	assert.Equal(t, 5, summary.Course.Totals.PointsFromAssetsUploaded)
	assert.Equal(t, models.CourseTotals{}, summary.Course.Averages)
}

func TestRankUsersSharedRanks(t *testing.T) {
	roster := []*models.User{
		{ID: "a", Points: 200},
		{ID: "b", Points: 100},
		{ID: "c", Points: 50},
		{ID: "d", Points: 50},
		{ID: "e", Points: 25},
	}

	ranks := rankUsers(roster)
	assert.Equal(t, 1, ranks["a"])
	assert.Equal(t, 2, ranks["b"])
	assert.Equal(t, 3, ranks["c"])
	assert.Equal(t, 3, ranks["d"])
	assert.Equal(t, 5, ranks["e"])
}
