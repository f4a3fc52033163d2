package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashCheckRoundTrip(t *testing.T) {
	h, err := Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, Check(h, "s3cret"))
	assert.False(t, Check(h, "wrong"))
}

func TestHashIsSaltedPerCall(t *testing.T) {
	h1, err := Hash("s3cret")
	require.NoError(t, err)
	h2, err := Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
