package notify

import (
	"context"
	"fmt"
	"html"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailChannel sends notifications through SendGrid.
type EmailChannel struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewEmailChannel(apiKey, fromEmail, fromName string) *EmailChannel {
	return newEmailChannel(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newEmailChannel(client mailSender, fromEmail, fromName string) *EmailChannel {
	return &EmailChannel{client: client, fromEmail: fromEmail, fromName: fromName}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, to Recipient, n domain.Notification) error {
	if to.Email == "" {
		return nil
	}
	subject := Subject(n.Type)
	logger.ExternalServiceCall("SendGrid", "Send", "to", to.Email, "type", n.Type)

	from := mail.NewEmail(c.fromName, c.fromEmail)
	recipient := mail.NewEmail(to.Name, to.Email)
	body := fmt.Sprintf("<html><body><p>Hello %s,</p><p>%s</p><p>The RentNest Team</p></body></html>",
		html.EscapeString(to.Name), html.EscapeString(n.Message))
	message := mail.NewSingleEmail(from, subject, recipient, n.Message, body)

	response, err := c.client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("SendGrid", "Send", nil, "status", response.StatusCode)
	return nil
}
