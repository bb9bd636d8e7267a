// Package eval reduces newline-delimited lines of space-separated numbers to
// one quotient per line.
//
// Each line evaluates to t0 / t1 / ... / tn in float32 arithmetic, where every
// token is parsed with ParseFloat. Lines are formatted as "%.2f\n" and
// concatenated in input order.
package eval

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
)

// ErrDivisionByZero is returned when a divisor token parses to zero.
var ErrDivisionByZero = errors.New("division by zero")

// DivisionByZeroError locates the offending divisor.
type DivisionByZeroError struct {
	Line  int // 1-based
	Token int // 0-based; always >= 1
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero on line %d, token %d", e.Line, e.Token)
}

func (e *DivisionByZeroError) Is(target error) bool { return target == ErrDivisionByZero }

// AppendResults evaluates every line of input and appends the formatted
// results to dst. On error dst is returned at its original length, so no
// partial result stream is ever observable.
//
// A line ends after '\n' or at the end of input. Tokens are separated by runs
// of ' ' only; the line's '\n' stays attached to its last token.
func AppendResults(dst, input []byte) ([]byte, error) {
	mark := len(dst)
	line := 0
	for len(input) > 0 {
		line++
		var cur []byte
		if i := bytes.IndexByte(input, '\n'); i >= 0 {
			cur, input = input[:i+1], input[i+1:]
		} else {
			cur, input = input, nil
		}
		v, err := Line(cur)
		if err != nil {
			if dz, ok := err.(*DivisionByZeroError); ok {
				dz.Line = line
			}
			return dst[:mark], err
		}
		dst = AppendFormatted(dst, v)
	}
	return dst, nil
}

// Line evaluates a single line. A line without tokens is 0.
func Line(line []byte) (float32, error) {
	var (
		acc   float32
		index int
	)
	for tok := range Tokens(line) {
		v := ParseFloat(tok)
		if index == 0 {
			acc = v
		} else {
			if v == 0 {
				return 0, &DivisionByZeroError{Token: index}
			}
			acc /= v
		}
		index++
	}
	return acc, nil
}

// Tokens yields the non-empty ' '-separated fields of line, like strtok(3)
// with a single-space delimiter set.
func Tokens(line []byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		rest := line
		for len(rest) > 0 {
			for len(rest) > 0 && rest[0] == ' ' {
				rest = rest[1:]
			}
			if len(rest) == 0 {
				return
			}
			end := bytes.IndexByte(rest, ' ')
			if end < 0 {
				end = len(rest)
			}
			if !yield(rest[:end]) {
				return
			}
			rest = rest[end:]
		}
	}
}

// AppendFormatted appends v as C's printf("%.2f\n") would print it.
func AppendFormatted(dst []byte, v float32) []byte {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		if math.Signbit(f) {
			dst = append(dst, '-')
		}
		dst = append(dst, "nan"...)
	case math.IsInf(f, 1):
		dst = append(dst, "inf"...)
	case math.IsInf(f, -1):
		dst = append(dst, "-inf"...)
	default:
		dst = strconv.AppendFloat(dst, f, 'f', 2, 64)
	}
	return append(dst, '\n')
}
