// Package game implements the SideStacker board: a connect-four
// variant where pieces slide in from the left or right edge of a row
// instead of dropping from the top.
package game

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrFullRow           = errors.New("row is full, pick a different one")
	ErrNonexistentRow    = errors.New("that row doesn't exist, pick a different one")
	ErrInvalidMoveFormat = errors.New("specify a move as a row number followed by a side letter ('l' or 'r'), with no spaces")
	ErrInvalidSide       = errors.New("specify a side with a letter, 'l' or 'r'")
)

// Slot is a single cell of the board.
type Slot int

const (
	Blank Slot = iota
	X
	O
)

func (s Slot) String() string {
	switch s {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "_"
	}
}

// Player identifies one of the two players. First plays X, Second
// plays O.
type Player int

const (
	NoPlayer Player = iota
	First
	Second
)

func (p Player) String() string {
	switch p {
	case First:
		return "First"
	case Second:
		return "Second"
	default:
		return "Nobody"
	}
}

// Next returns the other player.
func (p Player) Next() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	default:
		return NoPlayer
	}
}

// Slot returns the piece the player stacks with.
func (p Player) Slot() Slot {
	switch p {
	case First:
		return X
	case Second:
		return O
	default:
		return Blank
	}
}

// Side is the edge a piece enters the board from.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "R"
	}
	return "L"
}

func (s Side) MarshalJSON() ([]byte, error) {
	if s == Right {
		return []byte(`"right"`), nil
	}
	return []byte(`"left"`), nil
}

func (s *Side) UnmarshalJSON(bs []byte) error {
	switch string(bs) {
	case `"left"`:
		*s = Left
	case `"right"`:
		*s = Right
	default:
		return fmt.Errorf("%w: %s", ErrInvalidSide, bs)
	}
	return nil
}

// Move is a row index plus the side the piece enters from.
type Move struct {
	Row  int  `json:"row"`
	Side Side `json:"side"`
}

func (m Move) String() string {
	return fmt.Sprintf("(%d%s)", m.Row, m.Side)
}

// ParseMove parses the textual move form: a single digit row index
// followed by a side letter, e.g. "2R" or "5l".
func ParseMove(command string) (Move, error) {
	runes := []rune(strings.TrimSpace(command))

	if len(runes) != 2 {
		return Move{}, ErrInvalidMoveFormat
	}

	if !unicode.IsDigit(runes[0]) {
		return Move{}, ErrNonexistentRow
	}
	row := int(runes[0] - '0')

	var side Side
	switch runes[1] {
	case 'l', 'L':
		side = Left
	case 'r', 'R':
		side = Right
	default:
		return Move{}, ErrInvalidSide
	}

	return Move{Row: row, Side: side}, nil
}
