package notifier

import (
	"bearer-auth-server/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier : публикует письма в durable очередь RabbitMQ.
// Соединение открывается на каждую публикацию, письма отправляются редко.
type AMQPNotifier struct {
	url   string
	queue string
}

func NewAMQPNotifier(url, queue string) *AMQPNotifier {
	return &AMQPNotifier{
		url:   url,
		queue: queue,
	}
}

func (n *AMQPNotifier) SendNotification(ctx context.Context, message *model.EmailQueueMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("[AMQPNotifier] ошибка сериализации письма: %w", err)
	}

	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("[AMQPNotifier] не удалось подключиться к брокеру: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("[AMQPNotifier] не удалось открыть канал: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		n.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("[AMQPNotifier] ошибка объявления очереди: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, publishing); err != nil {
		return fmt.Errorf("[AMQPNotifier] ошибка публикации: %w", err)
	}

	slog.InfoContext(ctx, "письмо поставлено в очередь", "queue", n.queue, "template", message.Template.Type, "locale", message.Locale)
	return nil
}

// LogNotifier : для локального запуска без брокера, письмо только логируется
type LogNotifier struct{}

func (LogNotifier) SendNotification(ctx context.Context, message *model.EmailQueueMessage) error {
	slog.InfoContext(ctx, "письмо не отправлено, брокер не настроен",
		"template", message.Template.Type,
		"locale", message.Locale,
		"subject", message.Subject,
	)
	return nil
}
