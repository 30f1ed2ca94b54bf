package domain

import "math/rand/v2"

// NewRoomCode samples a fixed-length code from the lowercase alphanumeric
// alphabet and upper-cases it. No uniqueness guarantee by itself; the
// directory's retry loop owns that.
func NewRoomCode() RoomCode {
	buf := make([]byte, RoomCodeLength)
	for i := range buf {
		c := codeAlphabet[rand.IntN(len(codeAlphabet))]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		buf[i] = c
	}
	return RoomCode(buf)
}
