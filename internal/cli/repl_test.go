package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line string
		want replCommand
	}{
		{"/help", cmdHelp},
		{"/h", cmdHelp},
		{"/HELP", cmdHelp},
		{"/history", cmdHistory},
		{"/history 5", cmdHistory},
		{"/clear", cmdClear},
		{"/exit", cmdExit},
		{"/quit", cmdExit},
		{"/q", cmdExit},
		{"/", cmdUnknown},
		{"/teleport", cmdUnknown},
		{"draw the payment flow", cmdRequest},
		{"no /slash here", cmdRequest},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, parseCommand(tc.line), "line %q", tc.line)
	}
}

func TestTimestampName(t *testing.T) {
	at := time.Date(2024, 1, 31, 15, 45, 2, 0, time.UTC)
	assert.Equal(t, "diagram_20240131_154502", timestampName(at))
}

func TestFileChecksumTracksContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.dot")
	require.NoError(t, os.WriteFile(path, []byte("digraph G {}"), 0o644))

	first, err := fileChecksum(path)
	require.NoError(t, err)

	again, err := fileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, os.WriteFile(path, []byte("digraph G { a -> b; }"), 0o644))
	changed, err := fileChecksum(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	_, err = fileChecksum(filepath.Join(t.TempDir(), "missing.dot"))
	assert.Error(t, err)
}
