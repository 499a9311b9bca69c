package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "multi line text", truncate("multi\nline   text", 20))
	assert.Equal(t, "cerita...", truncate("cerita panjang sekali", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestParseLocation(t *testing.T) {
	lat, lon, err := parseLocation(" -6.2 , 106.8 ")
	require.NoError(t, err)
	assert.InDelta(t, -6.2, lat, 1e-9)
	assert.InDelta(t, 106.8, lon, 1e-9)

	for _, bad := range []string{"-6.2", "x,1", "1,y", "91,0", "0,181"} {
		_, _, err := parseLocation(bad)
		assert.Error(t, err, bad)
	}
}
