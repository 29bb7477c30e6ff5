package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"suitec/pkg/models"
)

func TestJoinActorNames(t *testing.T) {
	recipient := studentUser("me", "Mel")
	ana := studentUser("u1", "Ana")
	bo := studentUser("u2", "Bo")
	cy := studentUser("u3", "Cy")
	dee := studentUser("u4", "Dee")

	tests := []struct {
		name   string
		actors []*models.User
		want   string
	}{
		{"empty", nil, "Someone"},
		{"only recipient", []*models.User{recipient}, "Someone"},
		{"one", []*models.User{ana}, "Ana"},
		{"two", []*models.User{ana, bo}, "Ana and Bo"},
		{"three", []*models.User{ana, bo, cy}, "Ana, Bo and 1 other"},
		{"four", []*models.User{ana, bo, cy, dee}, "Ana, Bo and 2 others"},
		{"recipient excluded", []*models.User{recipient, ana, bo}, "Ana and Bo"},
		{"duplicates collapse", []*models.User{ana, ana, bo}, "Ana and Bo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinActorNames(tt.actors, recipient))
		})
	}
}

func TestSubjectSingleActivity(t *testing.T) {
	course := &models.Course{Name: "Art 101"}
	recipient := studentUser("me", "Mel")
	ana := studentUser("u1", "Ana")

	commented := &models.DigestActivity{
		Type:   models.DigestActivityAssetComment,
		Actors: []*models.User{ana},
		Asset:  &models.Asset{Title: "Sketchbook"},
	}
	assert.Equal(t,
		`Ana commented on your asset "Sketchbook"`,
		Subject(course, []*models.DigestActivity{commented}, recipient))

	replied := &models.DigestActivity{
		Type:   models.DigestActivityAssetCommentReply,
		Actors: []*models.User{ana},
		Asset:  &models.Asset{Title: "Sketchbook"},
	}
	assert.Equal(t,
		"Ana replied to your comment",
		Subject(course, []*models.DigestActivity{replied}, recipient))

	chatted := &models.DigestActivity{
		Type:       models.DigestActivityWhiteboardChat,
		Actors:     []*models.User{ana},
		Whiteboard: &models.Whiteboard{Title: "Mural"},
	}
	assert.Equal(t,
		`Ana commented on your whiteboard "Mural"`,
		Subject(course, []*models.DigestActivity{chatted}, recipient))
}

func TestSubjectMultipleActivities(t *testing.T) {
	course := &models.Course{Name: "Art 101"}
	recipient := studentUser("me", "Mel")

	asset := &models.DigestActivity{Type: models.DigestActivityAssetComment}
	reply := &models.DigestActivity{Type: models.DigestActivityAssetCommentReply}
	chat := &models.DigestActivity{Type: models.DigestActivityWhiteboardChat}

	assert.Equal(t,
		"New activity on your assets and whiteboards in Art 101",
		Subject(course, []*models.DigestActivity{asset, chat}, recipient))

	assert.Equal(t,
		"New activity on your whiteboards in Art 101",
		Subject(course, []*models.DigestActivity{chat, chat}, recipient))

	assert.Equal(t,
		"New activity on your assets in Art 101",
		Subject(course, []*models.DigestActivity{asset, reply}, recipient))
}
