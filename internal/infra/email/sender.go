// Package email delivers account mail through SendGrid.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const fromName = "Study Platform"

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SendgridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// New returns a SendGrid sender, or a sender that only logs when apiKey is empty.
func New(apiKey, from string) Sender {
	if apiKey == "" || from == "" {
		log.Println("[email] Missing SendGrid config, mail will be logged instead of sent")
		return LogSender{}
	}
	return newSendgrid(sendgrid.NewSendClient(apiKey), from)
}

func newSendgrid(client *sendgrid.Client, from string) *SendgridSender {
	return &SendgridSender{client: client, from: mail.NewEmail(fromName, from)}
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail("", msg.To)
	html := msg.HTML
	if html == "" {
		html = msg.Text
	}
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, html)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes mail to the process log. Used when no provider is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("[email] to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Text)
	return nil
}
