package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a rendered transactional email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message or fails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands messages to the email worker through a queue.
type QueueSender struct {
	Pub Publisher
}

func NewQueueSender(pub Publisher) *QueueSender {
	return &QueueSender{Pub: pub}
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	return q.Pub.PublishJSON(ctx, NewEmailJob(msg))
}

// LogSender is used when sending is disabled. Bodies carry one-time links
// and are never logged.
type LogSender struct {
	Logger *logrus.Logger
}

func (l LogSender) Send(_ context.Context, msg Message) error {
	if l.Logger != nil {
		l.Logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("mail sending disabled; message dropped")
	}
	return nil
}
