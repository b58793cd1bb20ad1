package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-lms/internal/domain/notification"
)

// NotificationService renders and delivers progress notifications
// through the configured channels.
type NotificationService struct {
	channels []notification.Channel
	logger   *slog.Logger
}

// NewNotificationService creates a service delivering through the
// given channels.
func NewNotificationService(logger *slog.Logger, channels ...notification.Channel) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		channels: channels,
		logger:   logger,
	}
}

// Notify renders the template for the given type and delivers it to
// the user on every channel. Delivery failures on one channel do not
// stop the others.
func (s *NotificationService) Notify(ctx context.Context, userID int64, t notification.Type, args ...interface{}) error {
	subject, body := notification.ForType(t, args...)

	n, err := notification.New(uuid.NewString(), userID, t, subject, body)
	if err != nil {
		return err
	}

	if len(s.channels) == 0 {
		s.logger.Debug("no notification channels configured",
			"user_id", userID,
			"type", t,
		)
		return nil
	}

	var delivery error
	for _, ch := range s.channels {
		if err := ch.Send(ctx, n); err != nil {
			s.logger.Error("notification delivery failed",
				"channel", ch.Type(),
				"user_id", userID,
				"type", t,
				"error", err,
			)
			delivery = errors.Join(delivery, err)
		}
	}

	if delivery != nil {
		n.MarkFailed()
		return delivery
	}

	n.MarkSent()
	return nil
}

// LogChannel is an in-app delivery stand-in that writes
// notifications to the structured log. Used until a real
// email provider is wired into the worker.
type LogChannel struct {
	logger *slog.Logger
}

// NewLogChannel creates a LogChannel.
func NewLogChannel(logger *slog.Logger) *LogChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogChannel{logger: logger}
}

// Type returns the channel type.
func (c *LogChannel) Type() notification.ChannelType {
	return notification.ChannelTypeInApp
}

// Send writes the notification to the log.
func (c *LogChannel) Send(_ context.Context, n *notification.Notification) error {
	c.logger.Info("notification",
		"user_id", n.UserID,
		"type", n.Type,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}
