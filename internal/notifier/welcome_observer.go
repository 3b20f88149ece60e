package notifier

import (
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/ports"
	"context"
	"time"
)

// WelcomeObserver : приветственное письмо после регистрации
type WelcomeObserver struct {
	notifier ports.Notifier
	now      func() time.Time
}

func NewWelcomeObserver(notifier ports.Notifier) *WelcomeObserver {
	return &WelcomeObserver{
		notifier: notifier,
		now:      time.Now,
	}
}

func (o *WelcomeObserver) AfterAuthentication(ctx context.Context, event *model.AuthEvent) error {
	if event == nil || event.Kind != model.AuthEventSignUp || event.User == nil {
		return nil
	}

	message := NewEmailMessage(
		event.User.Email,
		model.NotificationWelcome,
		map[string]string{"name": event.User.Name},
		event.Locale,
		o.now(),
	)

	return o.notifier.SendNotification(ctx, message)
}
