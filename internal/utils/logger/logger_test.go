package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "bot.log")

	l, err := New(cfg)
	require.NoError(t, err)
	l.WithComponent("test").Info("hello")
	_ = l.Sync()

	raw, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"component":"test"`)
	assert.Contains(t, string(raw), `"msg":"hello"`)
}

func TestNewDefaultsConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	l, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LogFile, l.config.LogFile)
}
