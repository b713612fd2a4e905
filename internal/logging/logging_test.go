package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToStderrOnlyWhenDirUnset(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestNewCreatesLogFileUnderDir(t *testing.T) {
	dir := t.TempDir()

	l, err := New(Config{Dir: dir})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "reasonkernel.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestSugaredSatisfiesDebugfInterface(t *testing.T) {
	sl, err := Sugared(Config{})
	require.NoError(t, err)

	var iface interface{ Debugf(string, ...interface{}) } = sl
	assert.NotNil(t, iface)
}
