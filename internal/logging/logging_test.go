package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutputWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("debug", "json", &buf)
	logger.WithField("component", "test").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "test", line["component"])
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNewWithOutputFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("loud", "text", &buf)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}
