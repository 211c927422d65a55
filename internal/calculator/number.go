package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ParseEntry converts a display entry to a float64 using the longest numeric
// prefix of s. "5." is 5, "-" is NaN, "Infinity" is +Inf. Values beyond the
// float64 range saturate to ±Inf.
func ParseEntry(s string) float64 {
	s = strings.TrimLeft(s, " \t\r\n")

	end := numericPrefix(s)
	if end == 0 {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return i + len("Infinity")
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatNumber renders f for the display. It uses the shortest digit string
// that round-trips, plain notation while the decimal exponent is in [-7, 21)
// and exponent notation ("1e+21", "1.5e-7") outside it. Negative zero prints
// as "0".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	mant, expPart, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	exp, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mant, ".", "", 1)
	k := len(digits)
	// f == 0.digits × 10^n
	n := exp + 1

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte(digits[0])
	if k > 1 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	e := n - 1
	if e >= 0 {
		b.WriteString("e+")
	} else {
		b.WriteString("e-")
		e = -e
	}
	b.WriteString(strconv.Itoa(e))
	return b.String()
}
