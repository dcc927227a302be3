package bist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrLeadingZero is returned for decimal numbers written with a leading zero.
var ErrLeadingZero = errors.New("decimal number with a leading zero")

// ParseUint reads a register value written in decimal or with a 0x, 0o or 0b
// prefix. Underscores may separate digits. Surrounding spaces are ignored. A
// leading zero without a prefix, as in 010, is rejected instead of being
// guessed as octal or decimal.
func ParseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	if len(s) > 1 && s[0] == '0' && unprefixed(s[1]) &&
		strings.Trim(s, "0_") != "" {
		return 0, fmt.Errorf("%q: %w", s, ErrLeadingZero)
	}

	return strconv.ParseUint(s, 0, 64)
}

func unprefixed(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9')
}
