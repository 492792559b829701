package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/application"
)

// NewClient creates an Elasticsearch client with optional basic auth.
func NewClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
}

// AuditLog indexes auth events as documents. Failures are logged and dropped.
type AuditLog struct {
	Client  *elasticsearch.Client
	Index   string
	Logger  *logrus.Logger
	Timeout time.Duration
}

func NewAuditLog(client *elasticsearch.Client, index string, logger *logrus.Logger) *AuditLog {
	return &AuditLog{Client: client, Index: index, Logger: logger, Timeout: 2 * time.Second}
}

func (a *AuditLog) Record(ctx context.Context, e application.AuditEvent) {
	body, err := json.Marshal(e)
	if err != nil {
		a.warn(err, e)
		return
	}
	// the audit write outlives a cancelled request
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Timeout)
	defer cancel()

	res, err := esapi.IndexRequest{
		Index: a.Index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, a.Client)
	if err != nil {
		a.warn(err, e)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		a.Logger.WithFields(logrus.Fields{"action": e.Action, "status": res.StatusCode}).Warn("audit index rejected")
	}
}

func (a *AuditLog) warn(err error, e application.AuditEvent) {
	a.Logger.WithError(err).WithField("action", e.Action).Warn("audit write failed")
}

// NopAudit is used when Elasticsearch is not configured.
type NopAudit struct{}

func (NopAudit) Record(context.Context, application.AuditEvent) {}
