package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	SetLogLevel("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Equal(t, gin.DebugMode, gin.Mode())

	SetLogLevel("warn")
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	SetLogLevel("not-a-level")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestSetLogFormat(t *testing.T) {
	defer SetLogFormat("text")

	SetLogFormat("json")
	_, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "expected json formatter")

	SetLogFormat("yaml")
	_, ok = logrus.StandardLogger().Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "unknown formats should fall back to text")
}

func TestSetLogDestFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	dir, err := os.MkdirTemp("", "form-log")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "server.log")
	SetLogDest("file://"+path, "")
	logrus.Warn("written to file")

	dat, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(dat), "written to file")
}

func TestSetLogDestUnknownScheme(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	SetLogDest("gopher://example.com", "")
	assert.Equal(t, os.Stderr, logrus.StandardLogger().Out)
}
