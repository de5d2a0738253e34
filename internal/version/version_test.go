package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings checks that Full embeds the semantic version and the
// binary name operators grep release logs for.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), "krypton-release")
}
