package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	bodies []any
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.bodies = append(p.bodies, body)
	return p.err
}

func TestQueueSenderPublishesJob(t *testing.T) {
	pub := &recordingPublisher{}
	msg := Message{To: "a@x.com", Subject: "Verify your email", HTML: "<p>hi</p>"}

	require.NoError(t, NewQueueSender(pub).Send(context.Background(), msg))
	require.Len(t, pub.bodies, 1)

	job, ok := pub.bodies[0].(EmailJob)
	require.True(t, ok)
	assert.True(t, job.Valid())
	assert.Equal(t, msg, job.Message())
}

func TestQueueSenderPropagatesError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	err := NewQueueSender(pub).Send(context.Background(), Message{To: "a@x.com"})
	assert.EqualError(t, err, "channel closed")
}

func TestLogSenderOmitsBody(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	err := LogSender{Logger: logger}.Send(context.Background(), Message{To: "a@x.com", Subject: "s", HTML: "secret-link"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "a@x.com")
	assert.NotContains(t, buf.String(), "secret-link")
}

func TestEmailJobValid(t *testing.T) {
	assert.False(t, EmailJob{To: "a@x.com", Subject: "s"}.Valid())
	assert.True(t, EmailJob{To: "a@x.com", Subject: "s", Text: "t"}.Valid())
}
