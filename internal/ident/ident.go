// Package ident generates sortable identifiers for matches and players:
// UUIDv7 encoded as a 26-character Crockford base32 string, so ids created
// later sort later lexically.
package ident

import (
	"fmt"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet, as used by TypeID.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// New returns a fresh identifier. Panics only if the OS entropy source is
// unreadable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("ident: " + err.Error())
	}
	return encode(id)
}

// WithPrefix returns "<prefix>_<id>", the conventional form for typed ids
// ("bot_...", "game_...").
func WithPrefix(prefix string) string {
	return prefix + "_" + New()
}

// encode packs the 128-bit UUID into 26 base32 characters, 5 bits each,
// top bits first. The two trailing pad bits are zero.
func encode(id uuid.UUID) string {
	var out [26]byte
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (id[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (id[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= id[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		out[i] = alphabet[value]
	}
	return string(out[:])
}

// Validate checks the shape of an identifier: 26 characters of the base32
// alphabet, first character 0-7 so the value fits in 128 bits.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("id must be exactly 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if !validChar(id[i]) {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}

func validChar(c byte) bool {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return true
		}
	}
	return false
}
