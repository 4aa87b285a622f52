package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgatehq/floodgate/pkg/infra/logger"
)

func TestAsyncFileWriter_FlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := logger.NewAsyncFileWriter(path, 4*1024)
	require.NoError(t, err)

	n, err := w.Write([]byte("first entry\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	_, err = w.Write([]byte("second entry\n"))
	require.NoError(t, err)

	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "first entry")
	assert.Contains(t, string(content), "second entry")
}

func TestConsoleHook_MirrorsFormattedEntry(t *testing.T) {
	var out bytes.Buffer

	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(&bytes.Buffer{})
	l.AddHook(logger.NewConsoleHook(&out))

	l.WithField("rule", "tight").Info("request rejected")

	assert.Contains(t, out.String(), `"request rejected"`)
	assert.Contains(t, out.String(), `"tight"`)
}
