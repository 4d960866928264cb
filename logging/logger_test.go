package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-maintenance/microservices/statistics-service/config"
)

func TestCustomFormatter_Format(t *testing.T) {
	formatter := &CustomFormatter{SystemName: SystemName, Location: time.UTC}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, time.March, 5, 14, 30, 15, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: CACHE_READ_FAILED, Description: timeout",
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.Contains(t, line, "Date: 2024-03-05, Time: 14:30:15, ")
	assert.Contains(t, line, "Event Source: statistics-service, ")
	assert.Contains(t, line, "Event Type: WARNING, ")
	assert.Contains(t, line, "Message: Event ID: CACHE_READ_FAILED, Description: timeout, ")
	assert.Regexp(t, `Event ID: [0-9a-f-]{36}, `, line)
	assert.NotContains(t, line, "Location:")
	assert.True(t, bytes.HasSuffix(out, []byte("\n")))
}

func TestCustomFormatter_DefaultsToCEST(t *testing.T) {
	formatter := &CustomFormatter{SystemName: SystemName}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, time.March, 5, 23, 0, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "late",
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Date: 2024-03-06, Time: 01:00:00, ")
}

func TestConfigure(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig().Logging
	cfg.File = filepath.Join(dir, "nested", "statistics.log")
	cfg.Level = "debug"

	logger := logrus.New()
	require.NoError(t, configure(logger, cfg))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.Info("Event ID: TEST, Description: hello")

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Event Source: statistics-service")
	assert.Contains(t, string(data), "Location: ")
}

func TestConfigure_InvalidLevel(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.File = filepath.Join(t.TempDir(), "statistics.log")
	cfg.Level = "loud"

	err := configure(logrus.New(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
