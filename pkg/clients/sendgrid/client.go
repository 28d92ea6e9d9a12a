package sendgrid

import (
	"github.com/pkg/errors"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/zenithroofing/lead-service/pkg/models"
)

const senderName = "Zenith Roofing Website"

// Notification is one lead-summary email.
type Notification struct {
	Subject     string
	PlainText   string
	HTML        string
	ReplyTo     string
	Attachments []models.Attachment
}

// Client defines the interface for sending lead notification emails
type Client interface {
	SendNotification(n *Notification) (int, error)
}

type sendFunc func(*mail.SGMailV3) (int, error)

type clientImpl struct {
	from string
	to   string
	send sendFunc
}

// NewClient creates a new SendGrid client
func NewClient(apiKey, from, to string) Client {
	sc := sg.NewSendClient(apiKey)
	return &clientImpl{
		from: from,
		to:   to,
		send: func(m *mail.SGMailV3) (int, error) {
			resp, err := sc.Send(m)
			if err != nil {
				return 0, err
			}
			return resp.StatusCode, nil
		},
	}
}

// SendNotification delivers the lead summary and returns the provider's
// status code.
func (c *clientImpl) SendNotification(n *Notification) (int, error) {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(senderName, c.from))

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", c.to))
	p.Subject = n.Subject
	m.AddPersonalizations(p)

	m.AddContent(
		mail.NewContent("text/plain", n.PlainText),
		mail.NewContent("text/html", n.HTML),
	)

	if n.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", n.ReplyTo))
	}

	for _, a := range n.Attachments {
		if a.Filename == "" || a.Data == "" {
			continue
		}
		att := mail.NewAttachment()
		att.SetFilename(a.Filename)
		att.SetContent(a.Data)
		contentType := a.Type
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		att.SetType(contentType)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}

	status, err := c.send(m)
	if err != nil {
		return 0, errors.Wrap(err, "sending lead notification")
	}
	return status, nil
}
