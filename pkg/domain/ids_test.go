package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tickethub/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-numeric", func(t *testing.T) {
		_, err := ParseUserID("abc")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		for _, in := range []string{"0", "-4"} {
			_, err := ParseUserID(in)
			assert.Error(t, err, in)
		}
	})

	t.Run("accepts padded positive ids", func(t *testing.T) {
		id, err := ParseUserID(" 42 ")
		require.NoError(t, err)
		assert.Equal(t, UserID(42), id)
		assert.Equal(t, "42", id.String())
	})
}

func TestModeForRole(t *testing.T) {
	cases := []struct {
		role string
		mode Mode
		ok   bool
	}{
		{"BUS", ModeBus, true},
		{" air ", ModeAir, true},
		{"Train", ModeTrain, true},
		{"ADMIN", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		mode, ok := ModeForRole(tc.role)
		assert.Equal(t, tc.ok, ok, tc.role)
		assert.Equal(t, tc.mode, mode, tc.role)
	}
	assert.False(t, Mode("ship").IsValid())
	assert.True(t, ModeTrain.IsValid())
}
