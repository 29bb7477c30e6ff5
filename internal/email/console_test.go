package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitec/pkg/models"
)

func testDigest() *Digest {
	return &Digest{
		Subject:   "Your weekly activity summary for Art 101",
		Recipient: &models.User{ID: "u1", FullName: "Uma", Email: "uma@example.edu"},
		Course:    &models.Course{ID: "c1", Name: "Art 101"},
		Template:  TemplateWeeklyDigest,
		Data: &models.WeeklyDigest{
			Course: &models.Course{ID: "c1", Name: "Art 101"},
			User:   &models.User{ID: "u1", FullName: "Uma"},
			Rank:   3,
		},
	}
}

func TestConsoleSenderCapturesDigests(t *testing.T) {
	sender := NewSilentConsoleSender()

	require.NoError(t, sender.SendDigest(context.Background(), testDigest()))
	require.NoError(t, sender.SendDigest(context.Background(), testDigest()))

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "uma@example.edu", sent[0].Recipient.Email)

	sender.Reset()
	assert.Empty(t, sender.Sent())
}

func TestConsoleSenderRejectsInvalidDigest(t *testing.T) {
	sender := NewSilentConsoleSender()

	noRecipient := testDigest()
	noRecipient.Recipient = &models.User{ID: "u1", FullName: "Uma"}
	assert.ErrorIs(t, sender.SendDigest(context.Background(), noRecipient), models.ErrNoRecipients)

	noSubject := testDigest()
	noSubject.Subject = ""
	assert.ErrorIs(t, sender.SendDigest(context.Background(), noSubject), models.ErrInvalidInput)

	assert.Empty(t, sender.Sent())
}

func TestConsoleSenderUnknownTemplate(t *testing.T) {
	sender := NewSilentConsoleSender()

	digest := testDigest()
	digest.Template = "monthly_digest"
	assert.Error(t, sender.SendDigest(context.Background(), digest))
}

func TestRenderWeeklyDigest(t *testing.T) {
	payload := &models.WeeklyDigest{
		Course: &models.Course{Name: "Art 101"},
		User:   &models.User{FullName: "Uma"},
		Rank:   1,
		Totals: &models.UserTotals{
			UserID:           "u1",
			CommentsReceived: 2,
			LikesReceived:    1,
			CourseTotals:     models.CourseTotals{PointsGenerated: 12, PointsReceived: 5},
		},
		Summary: models.CourseSummary{
			TopAssets: map[string]*models.TopAsset{
				"comments": {Asset: &models.Asset{Title: "Syllabus"}, Value: 4},
			},
		},
		MostPopularAsset: &models.Asset{Title: "Syllabus", Views: 9, Likes: 2, CommentCount: 4},
	}

	body, err := Render(&Digest{Template: TemplateWeeklyDigest, Data: payload})
	require.NoError(t, err)
	assert.Contains(t, body, "Hi Uma,")
	assert.Contains(t, body, "Points earned:   12")
	assert.Contains(t, body, "Your rank this week: #1")
	assert.Contains(t, body, `comments: "Syllabus" (4)`)
	assert.Contains(t, body, `Your most popular asset: "Syllabus"`)
}

func TestRenderWeeklyDigestQuietWeek(t *testing.T) {
	payload := &models.WeeklyDigest{
		Course: &models.Course{Name: "Art 101"},
		User:   &models.User{FullName: "Wen"},
		Rank:   8,
	}

	body, err := Render(&Digest{Template: TemplateWeeklyDigest, Data: payload})
	require.NoError(t, err)
	assert.Contains(t, body, "You had a quiet week")
	assert.NotContains(t, body, "Points earned")
}

func TestRenderDailyDigest(t *testing.T) {
	lastWeek := time.Now().Add(-8 * 24 * time.Hour)
	payload := &models.DailyDigest{
		Course: &models.Course{Name: "Art 101"},
		User:   &models.User{FullName: "Olga"},
		Activities: []*models.DigestActivity{
			{
				Type:         models.DigestActivityAssetComment,
				Asset:        &models.Asset{Title: "Sketchbook"},
				LastActivity: lastWeek,
				Comments: []*models.Comment{
					{ID: "c1", Body: "Nice linework", User: &models.UserProfile{FullName: "Carl"}, CreatedAt: lastWeek},
					{ID: "c2", Body: "Agreed", ParentID: strPtr("c1"), User: &models.UserProfile{FullName: "Dana"}, CreatedAt: lastWeek},
				},
			},
			{
				Type:         models.DigestActivityWhiteboardChat,
				Whiteboard:   &models.Whiteboard{Title: "Mural"},
				LastActivity: lastWeek,
				Messages: []*models.ChatMessage{
					{ID: "m1", Body: "Moved the blue layer", User: &models.UserProfile{FullName: "Carl"}, CreatedAt: lastWeek},
				},
			},
		},
	}

	body, err := Render(&Digest{Template: TemplateDailyDigest, Data: payload})
	require.NoError(t, err)
	assert.Contains(t, body, "Hi Olga,")
	assert.Contains(t, body, `* "Sketchbook"`)
	assert.Contains(t, body, "- Carl: Nice linework")
	assert.Contains(t, body, "> Dana: Agreed")
	assert.Contains(t, body, `* Whiteboard "Mural"`)
	assert.Contains(t, body, "- Carl: Moved the blue layer")
}

func strPtr(s string) *string { return &s }
