package push

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type FCMSender struct {
	client   *messaging.Client
	iconURL  string
	imageURL string
}

type FCMConfig struct {
	ProjectID       string
	CredentialsFile string
	IconURL         string
	ImageURL        string
}

func NewFCMSender(ctx context.Context, cfg FCMConfig) (*FCMSender, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMSender{
		client:   client,
		iconURL:  cfg.IconURL,
		imageURL: cfg.ImageURL,
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, n *Notification) (string, error) {
	msg := &messaging.Message{
		Token: n.Token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
	}

	if s.iconURL != "" || s.imageURL != "" {
		msg.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Icon:  s.iconURL,
				Image: s.imageURL,
			},
		}
	}

	messageID, err := s.client.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("failed to send push message: %w", err)
	}

	slog.Debug("push message sent",
		slog.String("message_id", messageID),
		slog.String("title", n.Title),
	)
	return messageID, nil
}
