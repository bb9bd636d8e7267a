package eval

import (
	"math"
	"strconv"
)

const (
	posNaN = 0x7fc00000
	negNaN = 0xffc00000
)

// ParseFloat converts the longest numeric prefix of tok to float32 the way
// strtof(3) does in the C locale: leading C whitespace is skipped, decimal,
// hexadecimal, inf/infinity and nan forms are recognised, trailing garbage is
// ignored and text without a numeric prefix yields 0.
func ParseFloat(tok []byte) float32 {
	i := 0
	for i < len(tok) && isCSpace(tok[i]) {
		i++
	}
	start := i
	neg := false
	if i < len(tok) && (tok[i] == '+' || tok[i] == '-') {
		neg = tok[i] == '-'
		i++
	}

	if matchFold(tok[i:], "infinity") >= len("inf") {
		if neg {
			return float32(math.Inf(-1))
		}
		return float32(math.Inf(1))
	}
	if matchFold(tok[i:], "nan") == len("nan") {
		if neg {
			return math.Float32frombits(negNaN)
		}
		return math.Float32frombits(posNaN)
	}

	if i+1 < len(tok) && tok[i] == '0' && (tok[i+1] == 'x' || tok[i+1] == 'X') {
		if end, ok := scanHex(tok, i+2); ok {
			lit := string(tok[start:end])
			if !hasHexExponent(tok[i+2 : end]) {
				lit += "p0"
			}
			return parse32(lit)
		}
		// "0x" without hex digits converts just the zero.
		return parse32(string(tok[start : i+1]))
	}

	end, ok := scanDecimal(tok, i)
	if !ok {
		return 0
	}
	return parse32(string(tok[start:end]))
}

func parse32(lit string) float32 {
	f, err := strconv.ParseFloat(lit, 32)
	if err != nil {
		// ErrRange still carries the correctly signed inf or zero.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return 0
		}
	}
	return float32(f)
}

// scanDecimal returns the end of digits[.digits][(e|E)[sign]digits] at i.
func scanDecimal(tok []byte, i int) (int, bool) {
	digits := 0
	for i < len(tok) && isDigit(tok[i]) {
		i++
		digits++
	}
	if i < len(tok) && tok[i] == '.' {
		i++
		for i < len(tok) && isDigit(tok[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	return scanExponent(tok, i, 'e', 'E', isDigit), true
}

// scanHex returns the end of hexdigits[.hexdigits][(p|P)[sign]digits] at i.
func scanHex(tok []byte, i int) (int, bool) {
	digits := 0
	for i < len(tok) && isHexDigit(tok[i]) {
		i++
		digits++
	}
	if i < len(tok) && tok[i] == '.' {
		i++
		for i < len(tok) && isHexDigit(tok[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	return scanExponent(tok, i, 'p', 'P', isDigit), true
}

// scanExponent consumes an exponent only when at least one digit follows it.
func scanExponent(tok []byte, i int, lower, upper byte, digit func(byte) bool) int {
	if i >= len(tok) || (tok[i] != lower && tok[i] != upper) {
		return i
	}
	j := i + 1
	if j < len(tok) && (tok[j] == '+' || tok[j] == '-') {
		j++
	}
	k := j
	for k < len(tok) && digit(tok[k]) {
		k++
	}
	if k == j {
		return i
	}
	return k
}

func hasHexExponent(b []byte) bool {
	for _, c := range b {
		if c == 'p' || c == 'P' {
			return true
		}
	}
	return false
}

// matchFold returns how many leading bytes of b match word case-insensitively.
func matchFold(b []byte, word string) int {
	n := 0
	for n < len(b) && n < len(word) && lower(b[n]) == word[n] {
		n++
	}
	return n
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// isCSpace matches isspace(3) in the C locale.
func isCSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
