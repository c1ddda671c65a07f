package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RecordsLogfmtLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "journal.log")
	j, err := New(Config{Enabled: true, Level: log.InfoLevel, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	require.NoError(t, err)

	j.Record(ActionDragStart, "main", "widget", "a", "x", 10)
	j.Record(ActionPointerMove, "main", "x", 12) // below info, dropped
	j.Record(ActionRejected, "main", "err", "widget \"z\" not in layout")
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "msg=DRAG-START")
	assert.Contains(t, lines[0], "board=main")
	assert.Contains(t, lines[0], "widget=a")
	assert.Contains(t, lines[0], "x=10")
	assert.Contains(t, lines[1], "level=warn")
	assert.Contains(t, lines[1], "msg=REJECTED")
}

func TestJournal_DisabledAndNilAreNoops(t *testing.T) {
	j, err := New(Config{Enabled: false})
	require.NoError(t, err)
	j.Record(ActionKey, "main")
	assert.NoError(t, j.Close())

	var nilJournal *Journal
	nilJournal.Record(ActionKey, "main")
	assert.NoError(t, nilJournal.Close())
}

func TestRotatingFile_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	r, err := openRotating(path, 10, 2)
	require.NoError(t, err)

	for _, chunk := range []string{"0123456789\n", "abcdefghij\n", "ABCDEFGHIJ\n", "last\n"} {
		_, err := r.Write([]byte(chunk))
		require.NoError(t, err)
	}
	require.NoError(t, r.Close())

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "last\n", string(current))

	one, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJ\n", string(one))

	two, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij\n", string(two))

	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err), "only two rotated files are kept")

	_, err = r.Write([]byte("after close"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, log.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, log.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, log.InfoLevel, ParseLevel("nonsense"))
}
