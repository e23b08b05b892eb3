package bird

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	idLength      = 12
	crockfordBase = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
)

// NewID returns a 12-character Crockford base32 ID derived from a UUIDv7:
// the millisecond timestamp followed by the 12-bit sub-millisecond sequence.
// IDs from one process are unique and sort by creation time.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuidv7: %w", err)
	}

	return shortIDFromUUID(id), nil
}

// NormalizeID upper-cases user input so IDs can be typed in either case.
func NormalizeID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidID reports whether s looks like an ID produced by NewID.
func ValidID(s string) bool {
	if len(s) != idLength {
		return false
	}

	for i := range len(s) {
		if !isCrockford(s[i]) {
			return false
		}
	}

	return true
}

func isCrockford(c byte) bool {
	for i := range len(crockfordBase) {
		if crockfordBase[i] == c {
			return true
		}
	}

	return false
}

// IDTime returns the creation time embedded in an ID from NewID.
func IDTime(id string) (time.Time, error) {
	if !ValidID(id) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var value uint64
	for i := range len(id) {
		for digit := range len(crockfordBase) {
			if crockfordBase[digit] == id[i] {
				value = value<<5 | uint64(digit)

				break
			}
		}
	}

	// Drop the 12 sequence bits; what is left is the 48-bit unix millisecond.
	return time.UnixMilli(int64(value >> 12)).UTC(), nil
}

func shortIDFromUUID(id uuid.UUID) string {
	// UUIDv7 layout (RFC 9562): 48-bit unix ms, 4-bit version, 12-bit rand_a
	// (a sub-millisecond sequence in google/uuid). 60 bits, 12 chars.
	var millis uint64
	for i := range 6 {
		millis = millis<<8 | uint64(id[i])
	}

	randA := uint64(id[6]&0x0f)<<8 | uint64(id[7])

	return encodeCrockfordBase32(millis<<12 | randA)
}

func encodeCrockfordBase32(value uint64) string {
	var buf [idLength]byte
	for i := idLength - 1; i >= 0; i-- {
		buf[i] = crockfordBase[value&0x1f]
		value >>= 5
	}

	return string(buf[:])
}
