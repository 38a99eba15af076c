package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueName(t *testing.T) {
	assert.Equal(t, "Dry Chalk", UniqueName("Dry Chalk"))
	assert.Equal(t, "a_b", UniqueName("a/b"))

	// empty or degenerate names get a uuid
	for _, s := range []string{"", "   ", "///"} {
		got := UniqueName(s)
		_, err := uuid.Parse(got)
		require.NoError(t, err, "input %q", s)
	}
}
