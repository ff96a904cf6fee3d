package logging

import (
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, FileName, "info", false))
	t.Cleanup(func() { _ = Close() })

	assert.Equal(t, filepath.Join(dir, FileName), Path())

	log.WithField("stage", "fetch").Info("connecting to update server")
	log.Debug("hidden at info level")

	content := ReadAll()
	assert.Contains(t, content, "connecting to update server")
	assert.Contains(t, content, "stage=fetch")
	assert.NotContains(t, content, "hidden at info level")
}

func TestInit_BadLevel(t *testing.T) {
	err := Init(t.TempDir(), FileName, "loud", false)
	assert.Error(t, err)
}

func TestInit_HelperFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, HelperFileName, "info", false))

	log.Info("swapping executable")
	assert.Equal(t, filepath.Join(dir, HelperFileName), Path())
	assert.Contains(t, ReadAll(), "swapping executable")

	require.NoError(t, Close())
	assert.NoError(t, Close(), "closing twice is fine")
	assert.Contains(t, ReadAll(), "swapping executable", "the file stays readable after Close")
}
