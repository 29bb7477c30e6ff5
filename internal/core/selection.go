// Package core - Digest Business Logic
// Pure in-memory aggregation services behind the daily and weekly digests
package core

import (
	"math/rand"
	"sort"

	"suitec/pkg/models"
)

// Winner identifies the entity that achieved a category's maximum score
type Winner struct {
	ID    string
	Value int
}

// SelectMaximum returns the id and value of the highest-scoring entry,
// provided that maximum is strictly greater than zero; otherwise nil.
//
// Ties are broken uniformly at random among the tied ids. The randomness is
// a documented policy: no entity should win a category by insertion order or
// id when scores are equal. Callers (and tests) must treat the returned id
// as "one of the tied set". rng may be nil, in which case the global source
// is used.
func SelectMaximum(scores map[string]int, rng *rand.Rand) *Winner {
	max := 0
	var tied []string

	// Iterate ids in sorted order so the tied set is assembled identically
	// across runs; the random draw below is the only nondeterminism.
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		score := scores[id]
		switch {
		case score > max:
			max = score
			tied = tied[:0]
			tied = append(tied, id)
		case score == max && max > 0:
			tied = append(tied, id)
		}
	}

	if max <= 0 || len(tied) == 0 {
		return nil
	}

	var idx int
	if rng != nil {
		idx = rng.Intn(len(tied))
	} else {
		idx = rand.Intn(len(tied))
	}
	return &Winner{ID: tied[idx], Value: max}
}

// MostPopularAssetWeights are the fixed weights used to pick one user's most
// popular asset for the weekly digest.
const (
	PopularityViewWeight    = 1
	PopularityLikeWeight    = 2
	PopularityCommentWeight = 5
)

// MostPopularAsset picks the single most popular asset among the given
// snapshots, scored views + 2*likes + 5*comments over lifetime counters.
// Returns nil when the user touched no asset or every score is zero.
func MostPopularAsset(assets map[string]*models.Asset, rng *rand.Rand) *models.Asset {
	if len(assets) == 0 {
		return nil
	}

	scores := make(map[string]int, len(assets))
	for id, asset := range assets {
		if asset == nil || asset.Deleted || !asset.Visible {
			continue
		}
		scores[id] = asset.Views*PopularityViewWeight +
			asset.Likes*PopularityLikeWeight +
			asset.CommentCount*PopularityCommentWeight
	}

	winner := SelectMaximum(scores, rng)
	if winner == nil {
		return nil
	}
	return assets[winner.ID]
}
