package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	sessiondomain "pokerlog/internal/modules/session/domain"
)

var errNotNumeric = errors.New("not numeric")

// Tried in order; the first layout that parses wins.
var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"2006/01/02",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	time.RFC3339,
}

func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseDecimal strips currency symbols, thousands separators and whitespace;
// a value wrapped in parentheses is negative.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)
	if strings.HasPrefix(s, "-") && negative {
		s = strings.TrimPrefix(s, "-")
	}
	if s == "" {
		return decimal.Zero, errNotNumeric
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errNotNumeric
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// RoundMoney rounds half away from zero to whole units. A nonzero amount smaller
// than one unit becomes one unit of the same sign. exact is false when the
// result differs from d.
func RoundMoney(d decimal.Decimal) (v int64, exact bool) {
	v = d.Round(0).IntPart()
	if v == 0 && !d.IsZero() {
		v = int64(d.Sign())
	}
	return v, d.Equal(decimal.NewFromInt(v))
}

// ParseHours returns the duration for a decimal hour count.
func ParseHours(raw string) (time.Duration, bool) {
	d, err := ParseDecimal(raw)
	if err != nil || d.IsNegative() {
		return 0, false
	}
	return time.Duration(d.Mul(decimal.NewFromInt(int64(time.Hour))).IntPart()), true
}

func ClassifyFormat(raw string) sessiondomain.Kind {
	if strings.Contains(strings.ToLower(raw), "cash") {
		return sessiondomain.KindCash
	}
	return sessiondomain.KindTournament
}

func ClassifyVariant(raw string) sessiondomain.GameType {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "plo"), strings.Contains(lower, "omaha"):
		return sessiondomain.Builtin(sessiondomain.GamePLO)
	case strings.Contains(lower, "mixed"):
		return sessiondomain.Builtin(sessiondomain.GameMixed)
	default:
		return sessiondomain.Builtin(sessiondomain.GameNLH)
	}
}
