package application

import (
	"context"
	"expvar"
	"io"
	"time"
)

// AvatarStore uploads an avatar image and returns its public URL.
type AvatarStore interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// AuditEvent describes one auth outcome. It never carries secrets.
type AuditEvent struct {
	Action     string    `json:"action"`
	UserID     string    `json:"user_id,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	Success    bool      `json:"success"`
	Reason     string    `json:"reason,omitempty"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	At         time.Time `json:"at"`
}

// AuditLogger records audit events. Implementations must not block the
// request on failure.
type AuditLogger interface {
	Record(ctx context.Context, e AuditEvent)
}

type clientKey struct{}

type clientInfo struct {
	IP        string
	UserAgent string
}

// WithClient attaches the caller's address and user agent for audit events.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientInfo{IP: ip, UserAgent: userAgent})
}

func record(ctx context.Context, a AuditLogger, e AuditEvent) {
	stats.Add(e.Action+outcome(e.Success), 1)
	if a == nil {
		return
	}
	if ci, ok := ctx.Value(clientKey{}).(clientInfo); ok {
		e.IP, e.UserAgent = ci.IP, ci.UserAgent
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	a.Record(ctx, e)
}

func outcome(ok bool) string {
	if ok {
		return ".success"
	}
	return ".failure"
}

// stats is published at /debug/vars.
var stats = expvar.NewMap("auth")
