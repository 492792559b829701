package mailer

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Outcome tells the queue consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Requeue
)

// Worker delivers queued EmailJobs through a Sender.
type Worker struct {
	Sender Sender
	Logger *logrus.Logger
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	return &Worker{Sender: sender, Logger: logger}
}

// Handle sends one queued job. Malformed jobs are dropped; a failed send is
// requeued once and dropped when it fails again on redelivery.
func (w *Worker) Handle(ctx context.Context, body []byte, redelivered bool) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("dropping malformed email job")
		return Drop
	}
	if !job.Valid() {
		w.Logger.WithField("to", job.To).Warn("dropping incomplete email job")
		return Drop
	}
	log := w.Logger.WithFields(logrus.Fields{"to": job.To, "subject": job.Subject})
	if err := w.Sender.Send(ctx, job.Message()); err != nil {
		if redelivered {
			log.WithError(err).Error("email send failed after retry, dropping")
			return Drop
		}
		log.WithError(err).Warn("email send failed, requeueing")
		return Requeue
	}
	log.Info("email sent")
	return Ack
}
