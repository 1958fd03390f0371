package effect

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownBrightness = errors.New("unknown brightness level")

// Level is a user-facing brightness step.
type Level int32

const (
	Off Level = iota
	Low
	Medium
	High
	Max
)

var levelNames = [...]string{"off", "low", "medium", "high", "max"}

// Scalar is the dimming factor applied to every dispatched frame.
func (l Level) Scalar() float64 {
	switch l {
	case Low:
		return 0.25
	case Medium:
		return 0.5
	case High:
		return 0.75
	case Max:
		return 1
	}
	return 0
}

func (l Level) Valid() bool { return l >= Off && l <= Max }

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int32(l))
	}
	return levelNames[l]
}

// Step moves delta levels up or down, saturating at Off and Max.
func (l Level) Step(delta int) Level {
	n := Level(int(l) + delta)
	if n < Off {
		return Off
	}
	if n > Max {
		return Max
	}
	return n
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return Off, fmt.Errorf("%w: %q", ErrUnknownBrightness, s)
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
