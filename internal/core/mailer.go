package core

import (
	"context"
	"time"

	"suitec/internal/email"
	"suitec/internal/repository"
	"suitec/pkg/logger"
	"suitec/pkg/models"
	"suitec/pkg/utils"
)

// digestMailer delivers one digest email and records the send. Shared by
// the daily and weekly services so both log and record the same way.
type digestMailer struct {
	sender     email.Sender
	digestRepo repository.DigestRepository
	now        func() time.Time
}

// send delivers one digest and records it. Send failures are logged and
// returned so the caller can skip the user; there are no retries, the next
// scheduled run starts from scratch.
func (m *digestMailer) send(ctx context.Context, course *models.Course, user *models.User, subject, template, frequency string, data interface{}) error {
	err := m.sender.SendDigest(ctx, &email.Digest{
		Subject:   subject,
		Recipient: user,
		Course:    course,
		Template:  template,
		Data:      data,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"course_id": course.ID,
			"user_id":   user.ID,
			"error":     err.Error(),
		}).Error("digest send failed, user skipped")
		return err
	}

	record := &models.DigestRecord{
		ID:        utils.GenerateDigestID(),
		CourseID:  course.ID,
		UserID:    user.ID,
		Frequency: frequency,
		Subject:   subject,
		SentAt:    m.now(),
	}
	if err := m.digestRepo.Record(ctx, record); err != nil {
		logger.WithFields(map[string]interface{}{
			"course_id": course.ID,
			"user_id":   user.ID,
			"error":     err.Error(),
		}).Warn("digest sent but not recorded")
	}
	return nil
}
