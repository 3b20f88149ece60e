package notifier

import (
	"bearer-auth-server/internal/model"
	"time"
)

const defaultLocale = "en"

var emailSubjects = map[string]map[model.NotificationKind]string{
	"en": {
		model.NotificationEmailVerification: "Verify Your Email",
		model.NotificationPasswordReset:     "Reset Your Password",
		model.NotificationAccountDeleted:    "Account Deleted",
		model.NotificationWelcome:           "Welcome!",
	},
	"ja": {
		model.NotificationEmailVerification: "メールアドレスの確認",
		model.NotificationPasswordReset:     "パスワードのリセット",
		model.NotificationAccountDeleted:    "アカウントが削除されました",
		model.NotificationWelcome:           "ようこそ！",
	},
}

// Subject : тема письма для локали, неизвестная локаль берется как en
func Subject(kind model.NotificationKind, locale string) string {
	if subjects, ok := emailSubjects[locale]; ok {
		if subject, ok := subjects[kind]; ok {
			return subject
		}
	}
	return emailSubjects[defaultLocale][kind]
}

// NewEmailMessage : сообщение для очереди писем
func NewEmailMessage(to string, kind model.NotificationKind, props map[string]string, locale string, now time.Time) *model.EmailQueueMessage {
	if locale == "" {
		locale = defaultLocale
	}
	if props == nil {
		props = map[string]string{}
	}

	return &model.EmailQueueMessage{
		To:      to,
		Subject: Subject(kind, locale),
		Template: model.EmailTemplate{
			Type:  kind,
			Props: props,
		},
		Locale:   locale,
		QueuedAt: now.UTC(),
	}
}
