package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHumanID(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "IA-001"},
		{42, "IA-042"},
		{999, "IA-999"},
		{1000, "IA-1000"},
	}

	for _, tt := range tests {
		if got := FormatHumanID(tt.n); got != tt.want {
			t.Errorf("FormatHumanID(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestParseHumanID(t *testing.T) {
	n, err := ParseHumanID("IA-042")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = ParseHumanID("IA-1000")
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	for _, bad := range []string{"IA-", "IA-xyz", "ia-042", "IA042", "42", ""} {
		_, err := ParseHumanID(bad)
		assert.Error(t, err, "ParseHumanID(%q) should fail", bad)
	}
}

func TestIsHumanID(t *testing.T) {
	assert.True(t, IsHumanID("IA-001"))
	assert.True(t, IsHumanID("IA-12345"))
	assert.False(t, IsHumanID("IA-"))
	assert.False(t, IsHumanID("7b46f2a0-1c3e-4f7a-9d1e-2a5b8c9d0e1f"))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, n := range []int{1, 99, 100, 4242} {
		parsed, err := ParseHumanID(FormatHumanID(n))
		require.NoError(t, err)
		assert.Equal(t, n, parsed)
	}
}
