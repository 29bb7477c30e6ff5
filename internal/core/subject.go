package core

import (
	"fmt"

	"suitec/pkg/models"
)

// Subject composes the subject line for one recipient's daily digest.
// Callers must not invoke it with an empty activity list; a recipient with
// no activities is never notified.
func Subject(course *models.Course, activities []*models.DigestActivity, recipient *models.User) string {
	if len(activities) == 1 {
		return singleActivitySubject(activities[0], recipient)
	}

	hasAssets := false
	hasWhiteboards := false
	for _, activity := range activities {
		switch activity.Type {
		case models.DigestActivityAssetComment, models.DigestActivityAssetCommentReply:
			hasAssets = true
		case models.DigestActivityWhiteboardChat:
			hasWhiteboards = true
		}
	}

	switch {
	case hasAssets && hasWhiteboards:
		return fmt.Sprintf("New activity on your assets and whiteboards in %s", course.Name)
	case hasWhiteboards:
		return fmt.Sprintf("New activity on your whiteboards in %s", course.Name)
	default:
		return fmt.Sprintf("New activity on your assets in %s", course.Name)
	}
}

func singleActivitySubject(activity *models.DigestActivity, recipient *models.User) string {
	actors := JoinActorNames(activity.Actors, recipient)
	switch activity.Type {
	case models.DigestActivityAssetComment:
		return fmt.Sprintf("%s commented on your asset %q", actors, activity.Asset.Title)
	case models.DigestActivityAssetCommentReply:
		return fmt.Sprintf("%s replied to your comment", actors)
	case models.DigestActivityWhiteboardChat:
		return fmt.Sprintf("%s commented on your whiteboard %q", actors, activity.Whiteboard.Title)
	default:
		return fmt.Sprintf("%s was active", actors)
	}
}

// JoinActorNames renders a list of actors as prose. The recipient is
// excluded and duplicate ids collapse to one mention. One actor yields the
// bare name, two yields "A and B", and three or more yields the first two
// names plus an "N other(s)" remainder.
func JoinActorNames(actors []*models.User, recipient *models.User) string {
	seen := make(map[string]bool, len(actors))
	var names []string
	for _, actor := range actors {
		if actor == nil || seen[actor.ID] {
			continue
		}
		if recipient != nil && actor.ID == recipient.ID {
			continue
		}
		seen[actor.ID] = true
		names = append(names, actor.FullName)
	}

	switch len(names) {
	case 0:
		return "Someone"
	case 1:
		return names[0]
	case 2:
		return fmt.Sprintf("%s and %s", names[0], names[1])
	case 3:
		return fmt.Sprintf("%s, %s and 1 other", names[0], names[1])
	default:
		return fmt.Sprintf("%s, %s and %d others", names[0], names[1], len(names)-2)
	}
}
