package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lofiflow/lounge/internal/domain"
)

func TestDeepLinkRoundTrip(t *testing.T) {
	link, err := NewDeepLink("http://localhost:8080/")
	require.NoError(t, err)

	invite := link.WithRoom("AB12CD")
	assert.Equal(t, "http://localhost:8080/?room=AB12CD", invite)

	code, ok := ExtractCode(invite)
	require.True(t, ok)
	assert.Equal(t, domain.RoomCode("AB12CD"), code)

	assert.Equal(t, "http://localhost:8080/", link.Bare())
}

func TestDeepLinkPreservesOtherParams(t *testing.T) {
	link, err := NewDeepLink("https://lounge.example/app?theme=night")
	require.NoError(t, err)

	invite := link.WithRoom("AB12CD")
	assert.Contains(t, invite, "theme=night")
	assert.Contains(t, invite, "room=AB12CD")

	bare := link.Bare()
	assert.Contains(t, bare, "theme=night")
	assert.NotContains(t, bare, "room=")
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   domain.RoomCode
		ok     bool
	}{
		{name: "lowercase normalized", rawURL: "http://x/?room=ab12cd", want: "AB12CD", ok: true},
		{name: "absent", rawURL: "http://x/", ok: false},
		{name: "blank", rawURL: "http://x/?room=++", ok: false},
		{name: "unparseable", rawURL: "http://x/%zz?room=AB12CD", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ExtractCode(tt.rawURL)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, code)
			}
		})
	}
}
