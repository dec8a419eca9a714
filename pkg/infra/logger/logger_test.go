package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, logrus.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, logger.ParseLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, logger.ParseLevel("nonsense"))
	assert.Equal(t, logrus.InfoLevel, logger.ParseLevel(""))

	t.Setenv("LOG_LEVEL", "error")
	assert.Equal(t, logrus.ErrorLevel, logger.ParseLevel(""))
}

func TestNewLogger_JSONFields(t *testing.T) {
	log, closer, err := logger.NewLogger(logger.Config{Level: "info"})
	require.NoError(t, err)
	defer closer()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.WithField("session_id", "s1").Info("routed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "routed", line["msg"])
	assert.Equal(t, "s1", line["session_id"])
	assert.Contains(t, line, "time")
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "promptguard.log")
	log, closer, err := logger.NewLogger(logger.Config{Level: "info", File: path})
	require.NoError(t, err)

	log.Info("hello")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
