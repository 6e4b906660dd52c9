package domain

import (
	"fmt"
	"strings"

	apperrors "pokerlog/internal/platform/errors"
)

type BuiltinGame string

const (
	GameNLH   BuiltinGame = "NLH"
	GamePLO   BuiltinGame = "PLO"
	GameMixed BuiltinGame = "Mixed"
)

var builtinLabels = map[BuiltinGame]string{
	GameNLH:   "No-Limit Hold'em",
	GamePLO:   "Pot-Limit Omaha",
	GameMixed: "Mixed Games",
}

// CustomGame is a user-defined game label outside the builtin set.
type CustomGame struct {
	RawValue string
	Label    string
}

// GameType is either a builtin game or a custom one, never both.
// The zero value is NLH.
type GameType struct {
	builtin BuiltinGame
	custom  *CustomGame
}

func Builtin(g BuiltinGame) GameType {
	return GameType{builtin: g}
}

func Custom(rawValue, label string) GameType {
	if strings.TrimSpace(label) == "" {
		label = rawValue
	}
	return GameType{custom: &CustomGame{RawValue: rawValue, Label: label}}
}

func (g GameType) Builtin() (BuiltinGame, bool) {
	if g.custom != nil {
		return "", false
	}
	if g.builtin == "" {
		return GameNLH, true
	}
	return g.builtin, true
}

func (g GameType) Custom() (CustomGame, bool) {
	if g.custom == nil {
		return CustomGame{}, false
	}
	return *g.custom, true
}

// RawValue is the stable storage key.
func (g GameType) RawValue() string {
	if c, ok := g.Custom(); ok {
		return c.RawValue
	}
	b, _ := g.Builtin()
	return string(b)
}

func (g GameType) Label() string {
	if c, ok := g.Custom(); ok {
		return c.Label
	}
	b, _ := g.Builtin()
	return builtinLabels[b]
}

func (g GameType) String() string { return g.RawValue() }

func (g GameType) Equal(other GameType) bool {
	return g.IsCustom() == other.IsCustom() && g.RawValue() == other.RawValue()
}

func (g GameType) IsCustom() bool { return g.custom != nil }

// GameTypeRegistry resolves stored raw values against the builtin set and the
// configured custom entries.
type GameTypeRegistry struct {
	custom map[string]string
}

func NewGameTypeRegistry(custom map[string]string) GameTypeRegistry {
	entries := make(map[string]string, len(custom))
	for raw, label := range custom {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		entries[raw] = label
	}
	return GameTypeRegistry{custom: entries}
}

func (r GameTypeRegistry) Resolve(raw string) (GameType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Builtin(GameNLH), nil
	}
	for b := range builtinLabels {
		if strings.EqualFold(raw, string(b)) {
			return Builtin(b), nil
		}
	}
	if label, ok := r.custom[raw]; ok {
		return Custom(raw, label), nil
	}
	for key, label := range r.custom {
		if strings.EqualFold(raw, key) {
			return Custom(key, label), nil
		}
	}
	return GameType{}, fmt.Errorf("%w: unknown game type %q", apperrors.ErrInvalidInput, raw)
}

// Restore never fails: unknown raw values loaded from storage become ad-hoc custom games.
func (r GameTypeRegistry) Restore(raw string) GameType {
	if g, err := r.Resolve(raw); err == nil {
		return g
	}
	return Custom(raw, raw)
}
