package codec

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// formatNumber renders f the way String(n) does in JavaScript: plain digits
// for 1e-6 <= |f| < 1e21, exponent form (1e+21, 1.5e-7) outside that range.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0" // also -0
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

var decimalRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

var errNotNumber = errors.New("not a number")

// parseNumber follows Number(s): whitespace is trimmed, the empty string is 0,
// Infinity and 0x/0o/0b literals are accepted. Anything that would produce
// NaN is an error.
func parseNumber(s string) (float64, error) {
	s = strings.TrimFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '\ufeff' })
	switch s {
	case "":
		return 0, nil
	case "Infinity", "+Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return 0, fmt.Errorf("%w: %q", errNotNumber, s)
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f, nil
		}
	}

	if !decimalRe.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", errNotNumber, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", errNotNumber, s)
	}
	// out of range saturates to ±Inf or 0, as in JS
	return f, nil
}
