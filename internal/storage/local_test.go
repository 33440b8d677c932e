package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := s.UploadFromBytes([]byte("%PDF-1.4"), "contrato.pdf", "contracts")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "contracts/"))
	assert.Equal(t, ".pdf", filepath.Ext(rel))
	assert.True(t, s.Exists(rel))

	f, err := s.Download(rel)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(rel))
	assert.False(t, s.Exists(rel))
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Download("../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.GetFullPath("contracts/../../x")
	assert.ErrorIs(t, err, ErrInvalidPath)

	assert.False(t, s.Exists("../outside"))
}
