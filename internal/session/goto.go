package session

import (
	"strconv"
	"strings"
)

// ResolveGoto turns typed goto text into an offset. A leading '+' or '-' makes
// it relative to cursor. Numbers may be decimal or 0x-prefixed hex; trailing
// junk is ignored and text without digits counts as 0. The result is valid
// only inside [0, length).
func ResolveGoto(text string, cursor, length int) (int, bool) {
	text = strings.TrimSpace(text)

	var target int
	switch {
	case strings.HasPrefix(text, "+"):
		target = cursor + parseLoose(text[1:])
	case strings.HasPrefix(text, "-"):
		target = cursor - parseLoose(text[1:])
	default:
		target = parseLoose(text)
	}

	if target < 0 || target >= length {
		return target, false
	}
	return target, true
}

// parseLoose reads the leading digits of s the way atoi does: "12abc" is 12
// and "0x1fz" is 0x1f. No digits at all yields 0.
func parseLoose(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))

	base, isDigit := 10, isDecimal
	if strings.HasPrefix(s, "0x") {
		s = s[2:]
		base, isDigit = 16, isHex
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}

	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		return 0
	}
	return int(n)
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool { return isDecimal(c) || (c >= 'a' && c <= 'f') }
