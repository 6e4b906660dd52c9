package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var stackToken = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(k|m|mil|million)?\b`)

// ParseStackMessage pulls a chip count out of free text such as "down to 45k"
// or "sitting on 12,500". The last number in the message wins.
func ParseStackMessage(text string) (int64, bool) {
	matches := stackToken.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	last := matches[len(matches)-1]
	value, err := decimal.NewFromString(strings.ReplaceAll(last[1], ",", ""))
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(last[2]) {
	case "k":
		value = value.Mul(decimal.NewFromInt(1_000))
	case "m", "mil", "million":
		value = value.Mul(decimal.NewFromInt(1_000_000))
	}
	return value.Round(0).IntPart(), true
}
