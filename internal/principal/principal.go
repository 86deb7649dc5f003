// Package principal encodes and validates Internet Computer principal text,
// the identity weavers sign in with and the owner id embedded in share links.
//
// The text form is the lowercase, unpadded base32 encoding of a big-endian
// CRC-32 of the raw bytes followed by the bytes themselves, split into
// dash-separated groups of five characters.
package principal

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
)

// MaxLength is the largest raw principal in bytes.
const MaxLength = 29

const groupSize = 5

var (
	ErrEmpty     = errors.New("principal: empty text")
	ErrMalformed = errors.New("principal: malformed text")
	ErrTooLong   = errors.New("principal: too long")
	ErrChecksum  = errors.New("principal: checksum mismatch")
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode renders raw principal bytes in their canonical text form.
func Encode(raw []byte) string {
	buf := make([]byte, 4+len(raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(raw))
	copy(buf[4:], raw)

	s := strings.ToLower(encoding.EncodeToString(buf))

	var b strings.Builder
	b.Grow(len(s) + len(s)/groupSize)
	for i := 0; i < len(s); i += groupSize {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(s[i:min(i+groupSize, len(s))])
	}
	return b.String()
}

// Decode parses principal text and returns the raw bytes. The text must be
// exactly the canonical encoding of the result.
func Decode(text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmpty
	}

	compact := strings.ToUpper(strings.ReplaceAll(text, "-", ""))
	buf, err := encoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(buf) < 4 {
		return nil, ErrMalformed
	}

	raw := buf[4:]
	if len(raw) > MaxLength {
		return nil, ErrTooLong
	}
	if binary.BigEndian.Uint32(buf[:4]) != crc32.ChecksumIEEE(raw) {
		return nil, ErrChecksum
	}
	if Encode(raw) != text {
		return nil, ErrMalformed
	}
	return raw, nil
}

// Validate reports whether text is a well-formed principal.
func Validate(text string) error {
	_, err := Decode(text)
	return err
}

// IsValid is Validate as a predicate.
func IsValid(text string) bool {
	return Validate(text) == nil
}
