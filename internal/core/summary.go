package core

import (
	"math"
	"math/rand"

	"suitec/pkg/models"
)

// Category keys used in CourseSummary.TopAssets / TopUsers
const (
	CategoryComments        = "comments"
	CategoryLikes           = "likes"
	CategoryViews           = "views"
	CategoryPointsGenerated = "points_generated"
	CategoryPointsReceived  = "points_received"
)

// assetCounter maps an activity type to the AssetTotals counter it feeds.
// An unrecognized type is a detectable no-op (ok == false), never a silent
// write to a missing field.
func assetCounter(activityType string) (func(*models.AssetTotals), bool) {
	switch activityType {
	case models.ActivityTypeAssetComment:
		return func(t *models.AssetTotals) { t.Comments++ }, true
	case models.ActivityTypeLike:
		return func(t *models.AssetTotals) { t.Likes++ }, true
	case models.ActivityTypeViewAsset:
		return func(t *models.AssetTotals) { t.Views++ }, true
	default:
		return nil, false
	}
}

// pointsBucket maps an activity type to the named point bucket it feeds on
// both CourseTotals and UserTotals
func pointsBucket(activityType string) (func(*models.CourseTotals, int), bool) {
	switch activityType {
	case models.ActivityTypeAddAsset:
		return func(t *models.CourseTotals, pts int) { t.PointsFromAssetsUploaded += pts }, true
	case models.ActivityTypeAssetComment:
		return func(t *models.CourseTotals, pts int) { t.PointsFromComments += pts }, true
	case models.ActivityTypeLike:
		return func(t *models.CourseTotals, pts int) { t.PointsFromLikes += pts }, true
	case models.ActivityTypeExportWhiteboard, models.ActivityTypeWhiteboardAddAsset:
		return func(t *models.CourseTotals, pts int) { t.PointsFromWhiteboards += pts }, true
	default:
		return nil, false
	}
}

// Summarizer folds a week of activities into a WeeklySummary
type Summarizer struct {
	rng *rand.Rand
}

// NewSummarizer creates a weekly summarizer. rng may be nil (global source).
func NewSummarizer(rng *rand.Rand) *Summarizer {
	return &Summarizer{rng: rng}
}

// SummarizeActivities folds a flat activity list into per-asset, per-user
// and course-wide totals, then derives averages and per-category winners.
//
// assets holds snapshots for every asset id the activities reference;
// activeUsers is the current roster (used for averages and for resolving
// winner identities). Activities whose type is missing from config, or
// disabled there, are skipped.
func (s *Summarizer) SummarizeActivities(
	activities []*models.Activity,
	config map[string]*models.ActivityTypeConfiguration,
	assets map[string]*models.Asset,
	activeUsers []*models.User,
) *models.WeeklySummary {
	summary := &models.WeeklySummary{
		Course: models.CourseSummary{
			TopAssets: make(map[string]*models.TopAsset),
			TopUsers:  make(map[string]*models.TopUser),
		},
		Assets: make(map[string]*models.AssetTotals),
		Users:  make(map[string]*models.UserTotals),
	}

	roster := make(map[string]*models.User, len(activeUsers))
	for _, u := range activeUsers {
		roster[u.ID] = u
	}

	for _, activity := range activities {
		cfg, ok := config[activity.Type]
		if !ok || !cfg.Enabled {
			continue
		}

		// Per-asset weekly counters
		if activity.AssetID != nil {
			totals := s.assetTotals(summary, *activity.AssetID, assets)
			if bump, ok := assetCounter(activity.Type); ok {
				bump(totals)
			}
		}

		user := s.userTotals(summary, activity.UserID, roster)
		points := cfg.Points

		// Named point buckets, user and course
		if bump, ok := pointsBucket(activity.Type); ok {
			bump(&user.CourseTotals, points)
			bump(&summary.Course.Totals, points)
		}

		// Received-engagement counters
		if activity.Reciprocal() {
			switch activity.Type {
			case models.ActivityTypeAssetComment:
				user.CommentsReceived++
			case models.ActivityTypeLike:
				user.LikesReceived++
			}
		}

		// Generated/received split. A reciprocal activity credits the
		// performer with generated points and the recipient (plus the
		// course) with received points; a self-performed activity credits
		// generated points to the user alone.
		if activity.Reciprocal() {
			actor := s.userTotals(summary, *activity.ActorID, roster)
			actor.PointsGenerated += points
			user.PointsReceived += points
			summary.Course.Totals.PointsReceived += points
		} else {
			user.PointsGenerated += points
		}
		summary.Course.Totals.PointsGenerated += points

		// Asset snapshot for the "most popular asset" pick
		if activity.AssetID != nil {
			if asset, ok := assets[*activity.AssetID]; ok {
				user.Assets[asset.ID] = asset
			}
		}
	}

	s.computeAverages(summary, len(activeUsers))
	s.selectTopAssets(summary)
	s.selectTopUsers(summary, roster)

	return summary
}

// assetTotals returns the totals record for an asset, creating it at most
// once per run
func (s *Summarizer) assetTotals(summary *models.WeeklySummary, assetID string, assets map[string]*models.Asset) *models.AssetTotals {
	if totals, ok := summary.Assets[assetID]; ok {
		return totals
	}
	totals := &models.AssetTotals{Asset: assets[assetID]}
	summary.Assets[assetID] = totals
	return totals
}

// userTotals returns the totals record for a user, creating it at most once
// per run
func (s *Summarizer) userTotals(summary *models.WeeklySummary, userID string, roster map[string]*models.User) *models.UserTotals {
	if totals, ok := summary.Users[userID]; ok {
		return totals
	}
	totals := &models.UserTotals{
		UserID: userID,
		User:   roster[userID],
		Assets: make(map[string]*models.Asset),
	}
	summary.Users[userID] = totals
	return totals
}

// computeAverages divides every course bucket by the active roster size,
// rounding to nearest. A roster of zero yields zeroed averages: such a
// course cannot email anyone, and a defined zero beats a NaN leaking into
// templates.
func (s *Summarizer) computeAverages(summary *models.WeeklySummary, activeUserCount int) {
	if activeUserCount == 0 {
		return
	}
	avg := func(total int) int {
		return int(math.Round(float64(total) / float64(activeUserCount)))
	}
	t := summary.Course.Totals
	summary.Course.Averages = models.CourseTotals{
		PointsFromAssetsUploaded: avg(t.PointsFromAssetsUploaded),
		PointsFromComments:       avg(t.PointsFromComments),
		PointsFromLikes:          avg(t.PointsFromLikes),
		PointsFromWhiteboards:    avg(t.PointsFromWhiteboards),
		PointsGenerated:          avg(t.PointsGenerated),
		PointsReceived:           avg(t.PointsReceived),
	}
}

// selectTopAssets picks the per-category asset winners. Deleted or hidden
// assets, and assets whose only associated users are administrators, are
// forced to score zero so they can never win.
func (s *Summarizer) selectTopAssets(summary *models.WeeklySummary) {
	categories := map[string]func(*models.AssetTotals) int{
		CategoryComments: func(t *models.AssetTotals) int { return t.Comments },
		CategoryLikes:    func(t *models.AssetTotals) int { return t.Likes },
		CategoryViews:    func(t *models.AssetTotals) int { return t.Views },
	}

	for category, score := range categories {
		scores := make(map[string]int, len(summary.Assets))
		for id, totals := range summary.Assets {
			if totals.Asset == nil || totals.Asset.Deleted || !totals.Asset.Visible || totals.Asset.AdminOnly() {
				scores[id] = 0
				continue
			}
			scores[id] = score(totals)
		}

		if winner := SelectMaximum(scores, s.rng); winner != nil {
			summary.Course.TopAssets[category] = &models.TopAsset{
				Asset: summary.Assets[winner.ID].Asset,
				Value: winner.Value,
			}
		}
	}
}

// selectTopUsers picks the per-category user winners. A winner who opted
// out of sharing points, or who is no longer on the active roster, keeps
// only the numeric total; identifying fields are redacted.
func (s *Summarizer) selectTopUsers(summary *models.WeeklySummary, roster map[string]*models.User) {
	categories := map[string]func(*models.UserTotals) int{
		CategoryPointsGenerated: func(t *models.UserTotals) int { return t.PointsGenerated },
		CategoryPointsReceived:  func(t *models.UserTotals) int { return t.PointsReceived },
	}

	for category, score := range categories {
		scores := make(map[string]int, len(summary.Users))
		for id, totals := range summary.Users {
			scores[id] = score(totals)
		}

		winner := SelectMaximum(scores, s.rng)
		if winner == nil {
			continue
		}

		top := &models.TopUser{Value: winner.Value}
		if user, ok := roster[winner.ID]; ok && user.SharePoints {
			top.UserID = user.ID
			top.FullName = user.FullName
		}
		summary.Course.TopUsers[category] = top
	}
}

// ConfigByType indexes an activity type configuration list by type
func ConfigByType(configs []*models.ActivityTypeConfiguration) map[string]*models.ActivityTypeConfiguration {
	indexed := make(map[string]*models.ActivityTypeConfiguration, len(configs))
	for _, cfg := range configs {
		indexed[cfg.Type] = cfg
	}
	return indexed
}
