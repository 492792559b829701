package templates

import (
	"strconv"
	"strings"
	"time"
)

// Branding carries the static fields shared by every email.
type Branding struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithName(name string) Option {
	return func(d *EmailData) {
		if s := strings.TrimSpace(name); s != "" {
			d.Name = s
		}
	}
}

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// WithTTL sets the human readable validity window, e.g. "1 hour".
func WithTTL(ttl time.Duration) Option {
	return func(d *EmailData) { d.ExpiresIn = humanDuration(ttl) }
}

// NewActionEmailData fills the fields common to link-carrying emails.
func NewActionEmailData(b Branding, typ, email, actionURL string, opts ...Option) EmailData {
	d := EmailData{
		Email:       email,
		Type:        typ,
		AppName:     b.AppName,
		CompanyName: b.CompanyName,
		SupportURL:  b.SupportURL,
		ActionURL:   actionURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
