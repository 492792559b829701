package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	got []Message
	err error
}

func (s *stubSender) Send(_ context.Context, msg Message) error {
	s.got = append(s.got, msg)
	return s.err
}

func jobBody(t *testing.T, j EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(j)
	require.NoError(t, err)
	return b
}

func TestWorkerSendsValidJob(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &stubSender{}
	w := NewWorker(s, logger)

	out := w.Handle(context.Background(), jobBody(t, EmailJob{To: "a@x.com", Subject: "Hi", Text: "body"}), false)
	assert.Equal(t, Ack, out)
	require.Len(t, s.got, 1)
	assert.Equal(t, "a@x.com", s.got[0].To)
}

func TestWorkerDropsBadJobs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &stubSender{}
	w := NewWorker(s, logger)

	assert.Equal(t, Drop, w.Handle(context.Background(), []byte("{"), false))
	assert.Equal(t, Drop, w.Handle(context.Background(), jobBody(t, EmailJob{To: "a@x.com"}), false))
	assert.Empty(t, s.got)
}

func TestWorkerRequeuesOnce(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := &stubSender{err: errors.New("mailgun 503")}
	w := NewWorker(s, logger)
	body := jobBody(t, EmailJob{To: "a@x.com", Subject: "Hi", HTML: "<p>x</p>"})

	assert.Equal(t, Requeue, w.Handle(context.Background(), body, false))
	assert.Equal(t, Drop, w.Handle(context.Background(), body, true))
	for _, e := range hook.AllEntries() {
		assert.NotContains(t, e.Message, "<p>x</p>")
	}
}
