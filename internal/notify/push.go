package notify

import (
	"context"
	"fmt"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel sends notifications to a user's registered device through FCM.
type PushChannel struct {
	client messageSender
}

func NewPushChannel(ctx context.Context, credentialsFile string) (*PushChannel, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return &PushChannel{client: client}, nil
}

func (c *PushChannel) Name() string { return "push" }

func (c *PushChannel) Deliver(ctx context.Context, to Recipient, n domain.Notification) error {
	if to.PushToken == "" {
		return nil
	}
	data := map[string]string{
		"type":       string(n.Type),
		"related_id": n.RelatedID,
	}
	for k, v := range n.Attributes {
		data[k] = v
	}
	msg := &messaging.Message{
		Token: to.PushToken,
		Notification: &messaging.Notification{
			Title: Subject(n.Type),
			Body:  n.Message,
		},
		Data: data,
	}

	logger.ExternalServiceCall("FCM", "Send", "userID", to.UserID, "type", n.Type)
	id, err := c.client.Send(ctx, msg)
	logger.ExternalServiceResult("FCM", "Send", err, "messageID", id)
	if err != nil {
		return fmt.Errorf("failed to send push message: %w", err)
	}
	return nil
}
