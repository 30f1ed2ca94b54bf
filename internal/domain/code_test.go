package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomCode(t *testing.T) {
	seen := make(map[RoomCode]bool)
	for i := 0; i < 1000; i++ {
		code := NewRoomCode()
		require.Len(t, code, RoomCodeLength)
		for _, c := range string(code) {
			ok := (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			require.True(t, ok, "unexpected character %q in code %s", c, code)
		}
		seen[code] = true
	}
	// 1000 draws from a 36^6 keyspace should essentially never collide.
	assert.Greater(t, len(seen), 990)
}

func TestParseRoomCode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    RoomCode
		wantErr error
	}{
		{name: "upper passthrough", raw: "AB12CD", want: "AB12CD"},
		{name: "lower is normalized", raw: "ab12cd", want: "AB12CD"},
		{name: "surrounding space trimmed", raw: "  ab12cd \n", want: "AB12CD"},
		{name: "empty", raw: "", wantErr: ErrEmptyCode},
		{name: "whitespace only", raw: "   ", wantErr: ErrEmptyCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := ParseRoomCode(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}
