package helpers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "svc", "production", "")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.WithField("user_id", "u1").Info("hello")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "u1", line["user_id"])
}

func TestLoggerLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, logrus.WarnLevel, newLogger(&buf, "svc", "development", "warn").GetLevel())
	assert.Equal(t, logrus.DebugLevel, newLogger(&buf, "svc", "development", "bogus").GetLevel())
}
