package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Production(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.WithField("component", "test").Info("hello")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "test", line["component"])
}

func TestNew_Development(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
