package core

import (
	"net/url"

	"github.com/lofiflow/lounge/internal/domain"
)

// roomParam is the single query parameter carrying the room code.
const roomParam = "room"

// DeepLink builds and rewrites the shareable page URL. The page reads the
// parameter at load time; the session controller owns writing it back on
// join, create and leave.
type DeepLink struct {
	base *url.URL
}

func NewDeepLink(base string) (*DeepLink, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	return &DeepLink{base: u}, nil
}

// WithRoom returns the invite URL for the code.
func (d *DeepLink) WithRoom(code domain.RoomCode) string {
	u := *d.base
	q := u.Query()
	q.Set(roomParam, string(code))
	u.RawQuery = q.Encode()
	return u.String()
}

// Bare returns the URL with no room parameter.
func (d *DeepLink) Bare() string {
	u := *d.base
	q := u.Query()
	q.Del(roomParam)
	u.RawQuery = q.Encode()
	return u.String()
}

// ExtractCode pulls a normalized room code out of a page URL. Returns
// false when the parameter is absent or blank.
func ExtractCode(rawURL string) (domain.RoomCode, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	code, err := domain.ParseRoomCode(u.Query().Get(roomParam))
	if err != nil {
		return "", false
	}
	return code, true
}
