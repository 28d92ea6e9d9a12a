package sendgrid

import (
	"net/http"
	"testing"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithroofing/lead-service/pkg/models"
)

func TestSendNotification(t *testing.T) {
	var sent *mail.SGMailV3
	client := &clientImpl{
		from: "noreply@zenithroofingca.com",
		to:   "leads@zenithroofingca.com",
		send: func(m *mail.SGMailV3) (int, error) {
			sent = m
			return http.StatusAccepted, nil
		},
	}

	status, err := client.SendNotification(&Notification{
		Subject:   "New Website Lead: Jane Doe",
		PlainText: "New website lead",
		HTML:      "<h2>New Website Lead</h2>",
		ReplyTo:   "jane@example.com",
		Attachments: []models.Attachment{
			{Filename: "roof.jpg", Type: "image/jpeg", Data: "aGVsbG8="},
			{Filename: "", Data: "ignored"}, // unnamed attachments are skipped
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)

	require.NotNil(t, sent)
	assert.Equal(t, "noreply@zenithroofingca.com", sent.From.Address)
	require.Len(t, sent.Personalizations, 1)
	assert.Equal(t, "New Website Lead: Jane Doe", sent.Personalizations[0].Subject)
	assert.Equal(t, "jane@example.com", sent.ReplyTo.Address)
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, "roof.jpg", sent.Attachments[0].Filename)
	assert.Equal(t, "image/jpeg", sent.Attachments[0].Type)
}

func TestSendNotificationDefaultsAttachmentType(t *testing.T) {
	var sent *mail.SGMailV3
	client := &clientImpl{
		from: "noreply@zenithroofingca.com",
		to:   "leads@zenithroofingca.com",
		send: func(m *mail.SGMailV3) (int, error) {
			sent = m
			return http.StatusAccepted, nil
		},
	}

	_, err := client.SendNotification(&Notification{
		Subject:     "New Website Lead",
		PlainText:   "lead",
		HTML:        "<p>lead</p>",
		Attachments: []models.Attachment{{Filename: "notes.bin", Data: "aGVsbG8="}},
	})
	require.NoError(t, err)
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, "application/octet-stream", sent.Attachments[0].Type)
	assert.Nil(t, sent.ReplyTo)
}
