package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommitLog(t *testing.T) {
	output := `abc123|1700000100|Alice Smith
def456|1700000000|Bob
`

	commits, err := parseCommitLog(output)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "abc123", commits[0].SHA)
	assert.Equal(t, "Alice Smith", commits[0].Author)
	assert.Equal(t, int64(1700000100), commits[0].Time)

	assert.Equal(t, "def456", commits[1].SHA)
	assert.Equal(t, "Bob", commits[1].Author)
}

func TestParseCommitLogAuthorWithPipe(t *testing.T) {
	// The author name is the last field, so embedded pipes survive.
	commits, err := parseCommitLog("abc|1700000000|Weird|Name\n")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "Weird|Name", commits[0].Author)
}

func TestParseCommitLogEmptyAuthor(t *testing.T) {
	commits, err := parseCommitLog("abc|1700000000|\n")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "Unknown", commits[0].Author)
}

func TestParseCommitLogMalformed(t *testing.T) {
	_, err := parseCommitLog("not a commit line\n")
	assert.Error(t, err)

	_, err = parseCommitLog("abc|notatime|Alice\n")
	assert.Error(t, err)
}

func TestParseCommitLogEmpty(t *testing.T) {
	commits, err := parseCommitLog("")
	require.NoError(t, err)
	assert.Empty(t, commits)
}
