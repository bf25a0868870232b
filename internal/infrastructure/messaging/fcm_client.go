package messaging

import (
	"context"

	fbapp "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"

	"hiichat/pkg/logger"
)

// FCMClient wraps the Firebase Cloud Messaging push gateway. Push delivery
// is best-effort everywhere: a failed send is logged and the application
// stays fully usable without it.
type FCMClient struct {
	client *messaging.Client
}

func NewFCMClient(ctx context.Context, app *fbapp.App) (*FCMClient, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	return &FCMClient{
		client: client,
	}, nil
}

// SendToToken pushes one notification to a device registration token.
func (c *FCMClient) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	_, err := c.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		logger.Warn("FCM send failed: %v", err)
		return err
	}

	return nil
}
