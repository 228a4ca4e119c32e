// Package hexcode implements the hex text codec shared by the interactive
// driver and the batch assembler: strip whitespace, decode hex byte pairs,
// reject anything that isn't a clean even-length run of hex digits.
package hexcode

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultAddr and DefaultByte are what an empty or invalid input field
// resets to, per the driver's documented boundary behavior.
const (
	DefaultAddr = "0000"
	DefaultByte = "00"
)

// MalformedHexInput is returned when input contains a non-hex nibble or an
// odd number of hex digits after whitespace is stripped.
type MalformedHexInput struct {
	Input string
}

// Error implements the error interface.
func (e MalformedHexInput) Error() string {
	return fmt.Sprintf("hexcode: malformed hex input %q", e.Input)
}

// DecodeBytes strips whitespace from s and decodes the remainder as hex byte
// pairs. An odd-length or non-hex remainder is MalformedHexInput.
func DecodeBytes(s string) ([]uint8, error) {
	stripped := stripWhitespace(s)
	if stripped == "" {
		return nil, nil
	}
	if len(stripped)%2 != 0 {
		return nil, MalformedHexInput{Input: s}
	}
	out := make([]uint8, len(stripped)/2)
	for i := range out {
		pair := stripped[i*2 : i*2+2]
		v, err := strconv.ParseUint(pair, 16, 8)
		if err != nil {
			return nil, MalformedHexInput{Input: s}
		}
		out[i] = uint8(v)
	}
	return out, nil
}

// DecodeAddr parses a 4-hex-digit address field, falling back to
// DefaultAddr ("0000") on an empty or invalid input.
func DecodeAddr(s string) uint16 {
	stripped := stripWhitespace(s)
	if stripped == "" {
		stripped = DefaultAddr
	}
	v, err := strconv.ParseUint(stripped, 16, 16)
	if err != nil || !isHex(stripped) {
		v, _ = strconv.ParseUint(DefaultAddr, 16, 16)
	}
	return uint16(v)
}

// DecodeByte parses a 2-hex-digit byte field, falling back to DefaultByte
// ("00") on an empty or invalid input.
func DecodeByte(s string) uint8 {
	stripped := stripWhitespace(s)
	if stripped == "" {
		stripped = DefaultByte
	}
	v, err := strconv.ParseUint(stripped, 16, 8)
	if err != nil || !isHex(stripped) {
		v, _ = strconv.ParseUint(DefaultByte, 16, 8)
	}
	return uint8(v)
}

// EncodeBytes renders buf as a contiguous run of upper-case hex byte pairs.
func EncodeBytes(buf []uint8) string {
	var b strings.Builder
	for _, v := range buf {
		fmt.Fprintf(&b, "%.2X", v)
	}
	return b.String()
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
