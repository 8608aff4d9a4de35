package domain

import "fmt"

// Level is a CEFR proficiency level.
type Level string

// The closed set of valid CEFR levels.
const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// Levels lists all valid CEFR levels in ascending order of proficiency.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// IsValid reports whether the level is one of the defined CEFR levels.
func (l Level) IsValid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}

// String returns the level as a string.
func (l Level) String() string {
	return string(l)
}

// ParseLevel converts a string into a Level.
// Returns ErrInvalidLevel if the string is not a valid CEFR level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}
