package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-auth-service/internal/application"
)

type fakeES struct {
	mu     sync.Mutex
	paths  []string
	bodies []string
	status int
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.bodies = append(f.bodies, string(b))
	f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(`{"result":"created"}`))
}

func newAudit(t *testing.T, status int) (*AuditLog, *fakeES, *test.Hook) {
	t.Helper()
	es := &fakeES{status: status}
	srv := httptest.NewServer(es)
	t.Cleanup(srv.Close)

	client, err := NewClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()
	return NewAuditLog(client, "auth-audit", logger), es, hook
}

func TestRecordIndexesEvent(t *testing.T) {
	a, es, hook := newAudit(t, http.StatusCreated)

	a.Record(context.Background(), application.AuditEvent{Action: "login", UserID: "u-1", Success: true, IP: "10.0.0.1"})

	require.Len(t, es.paths, 1)
	assert.True(t, strings.HasPrefix(es.paths[0], "/auth-audit/_doc"))
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(es.bodies[0]), &doc))
	assert.Equal(t, "login", doc["action"])
	assert.Equal(t, "u-1", doc["user_id"])
	assert.Empty(t, hook.AllEntries())
}

func TestRecordLogsRejectedWrite(t *testing.T) {
	a, _, hook := newAudit(t, http.StatusBadRequest)

	a.Record(context.Background(), application.AuditEvent{Action: "refresh"})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "refresh", hook.LastEntry().Data["action"])
}

func TestRecordSurvivesCancelledRequest(t *testing.T) {
	a, es, _ := newAudit(t, http.StatusCreated)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a.Record(ctx, application.AuditEvent{Action: "logout"})
	assert.Len(t, es.paths, 1)
}
