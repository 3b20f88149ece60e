package model

import "time"

type NotificationKind string

const (
	NotificationWelcome           NotificationKind = "welcome"
	NotificationEmailVerification NotificationKind = "email-verification"
	NotificationPasswordReset     NotificationKind = "password-reset"
	NotificationAccountDeleted    NotificationKind = "account-deleted"
)

// EmailTemplate : шаблон письма, рендерится потребителем очереди
type EmailTemplate struct {
	Type  NotificationKind  `json:"type"`
	Props map[string]string `json:"props"`
}

// EmailQueueMessage : сообщение, публикуемое в очередь писем
type EmailQueueMessage struct {
	To       string        `json:"to"`
	Subject  string        `json:"subject"`
	Template EmailTemplate `json:"template"`
	Locale   string        `json:"locale"`
	QueuedAt time.Time     `json:"queuedAt"`
}
