package core

import (
	"sort"
	"time"

	"suitec/pkg/models"
)

// ActivitiesForUser classifies one course's daily activity relative to a
// single recipient.
//
// An asset with new comments becomes an asset_comment activity when the
// recipient owns the asset (listing other users' new comments), or an
// asset_comment_reply activity when someone replied to one of the
// recipient's comments. The owner branch wins when both apply, so a
// recipient never sees the same asset twice in one digest. Whiteboards the
// recipient belongs to contribute a whiteboard_chat activity when other
// members wrote new messages. The result is sorted newest-first by each
// activity's last activity timestamp.
func ActivitiesForUser(data *models.DailyCourseData, user *models.User) []*models.DigestActivity {
	users := indexUsers(data.Users)
	var activities []*models.DigestActivity

	for _, commented := range data.Assets {
		if activity := classifyAsset(commented, user, users); activity != nil {
			activities = append(activities, activity)
		}
	}

	for _, chatted := range data.Whiteboards {
		if activity := classifyWhiteboard(chatted, user, users); activity != nil {
			activities = append(activities, activity)
		}
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].LastActivity.After(activities[j].LastActivity)
	})
	return activities
}

func indexUsers(users []*models.User) map[string]*models.User {
	indexed := make(map[string]*models.User, len(users))
	for _, u := range users {
		indexed[u.ID] = u
	}
	return indexed
}

func classifyAsset(commented *models.CommentedAsset, user *models.User, users map[string]*models.User) *models.DigestActivity {
	if commented.Asset == nil || len(commented.NewComments) == 0 {
		return nil
	}

	// Owner branch: other users commented on the recipient's asset
	if commented.Asset.OwnedBy(user.ID) {
		var relevant []*models.Comment
		for _, c := range commented.NewComments {
			if c.UserID != user.ID {
				relevant = append(relevant, c)
			}
		}
		if len(relevant) == 0 {
			return nil
		}
		return assetActivity(models.DigestActivityAssetComment, commented, relevant, users)
	}

	// Reply branch: someone replied to a comment the recipient authored
	var replies []*models.Comment
	for _, c := range commented.NewComments {
		if !c.Reply() || c.UserID == user.ID {
			continue
		}
		parent, ok := commented.Parents[*c.ParentID]
		if ok && parent.UserID == user.ID {
			replies = append(replies, c)
		}
	}
	if len(replies) == 0 {
		return nil
	}
	return assetActivity(models.DigestActivityAssetCommentReply, commented, replies, users)
}

// assetActivity builds one asset-centric digest entry from the comments
// relevant to the recipient. Comments are reshaped into a two-level tree
// over fresh copies, so the shared CommentedAsset stays untouched for the
// next recipient.
func assetActivity(activityType string, commented *models.CommentedAsset, comments []*models.Comment, users map[string]*models.User) *models.DigestActivity {
	return &models.DigestActivity{
		Type:         activityType,
		Actors:       resolveActors(commentAuthors(comments), users),
		LastActivity: newestComment(comments),
		Asset:        commented.Asset,
		Comments:     reshapeComments(comments, commented.Parents),
	}
}

// reshapeComments orders comments as a two-level tree: top-level comments
// newest-first, each followed immediately by its direct replies in the order
// they were written. A reply whose parent falls outside the relevant set
// pulls the parent in for context.
func reshapeComments(comments []*models.Comment, parents map[string]*models.Comment) []*models.Comment {
	byParent := make(map[string][]*models.Comment)
	var topLevel []*models.Comment
	seen := make(map[string]bool, len(comments))

	for _, c := range comments {
		copied := *c
		seen[c.ID] = true
		if copied.ParentID == nil {
			topLevel = append(topLevel, &copied)
		} else {
			byParent[*copied.ParentID] = append(byParent[*copied.ParentID], &copied)
		}
	}

	// Parents referenced only by their replies still anchor the tree
	for parentID := range byParent {
		if seen[parentID] {
			continue
		}
		if parent, ok := parents[parentID]; ok {
			copied := *parent
			topLevel = append(topLevel, &copied)
		}
	}

	sort.SliceStable(topLevel, func(i, j int) bool {
		return topLevel[i].CreatedAt.After(topLevel[j].CreatedAt)
	})
	for _, replies := range byParent {
		sort.SliceStable(replies, func(i, j int) bool {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		})
	}

	tree := make([]*models.Comment, 0, len(comments))
	for _, parent := range topLevel {
		tree = append(tree, parent)
		tree = append(tree, byParent[parent.ID]...)
	}
	return tree
}

func classifyWhiteboard(chatted *models.ChattedWhiteboard, user *models.User, users map[string]*models.User) *models.DigestActivity {
	if chatted.Whiteboard == nil || !chatted.Whiteboard.HasMember(user.ID) {
		return nil
	}

	var relevant []*models.ChatMessage
	for _, m := range chatted.NewMessages {
		if m.UserID != user.ID {
			relevant = append(relevant, m)
		}
	}
	if len(relevant) == 0 {
		return nil
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].CreatedAt.Before(relevant[j].CreatedAt)
	})

	return &models.DigestActivity{
		Type:         models.DigestActivityWhiteboardChat,
		Actors:       resolveActors(messageAuthors(relevant), users),
		LastActivity: relevant[len(relevant)-1].CreatedAt,
		Whiteboard:   chatted.Whiteboard,
		Messages:     relevant,
	}
}

// commentAuthors returns distinct author ids in first-appearance order
func commentAuthors(comments []*models.Comment) []string {
	seen := make(map[string]bool, len(comments))
	var ids []string
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}
	return ids
}

func messageAuthors(messages []*models.ChatMessage) []string {
	seen := make(map[string]bool, len(messages))
	var ids []string
	for _, m := range messages {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// resolveActors maps author ids onto the course user list. Inactive users
// are present there on purpose: a parent-comment author who left the course
// can still be named.
func resolveActors(ids []string, users map[string]*models.User) []*models.User {
	actors := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			actors = append(actors, u)
		}
	}
	return actors
}

func newestComment(comments []*models.Comment) time.Time {
	var newest time.Time
	for _, c := range comments {
		if c.CreatedAt.After(newest) {
			newest = c.CreatedAt
		}
	}
	return newest
}
