package application

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/oksasatya/go-auth-service/pkg/mailer"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

// tokenFrom pulls the raw secret out of the link in a rendered message.
func tokenFrom(msg mailer.Message) string {
	_, after, _ := strings.Cut(msg.Text, "?token=")
	return strings.Fields(after)[0]
}

type fakeAvatars struct {
	err  error
	body string
}

func (f *fakeAvatars) Upload(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.body = string(b)
	return "https://storage.example/avatars/" + filename, nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *fakeAudit) Record(_ context.Context, e AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}
