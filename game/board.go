package game

import (
	"fmt"
	"strings"
)

// winLength is the run of equal slots that wins the game.
const winLength = 4

// Board holds the grid of slots. Rows are indexed from zero, top to
// bottom, matching the rendered view.
type Board struct {
	Height, Width int
	rows          [][]Slot
}

func NewBoard(height, width int) *Board {
	rows := make([][]Slot, height)
	for i := range rows {
		rows[i] = make([]Slot, width)
	}
	return &Board{Height: height, Width: width, rows: rows}
}

// At returns the slot at the given coordinates.
func (b *Board) At(row, col int) Slot {
	return b.rows[row][col]
}

// Insert applies a move for the given slot and returns the
// coordinates the piece came to rest at.
func (b *Board) Insert(m Move, s Slot) (int, int, error) {
	if m.Side == Right {
		return b.InsertFromRight(m.Row, s)
	}
	return b.InsertFromLeft(m.Row, s)
}

// CanInsert reports whether the move has anywhere to land.
func (b *Board) CanInsert(m Move) error {
	if m.Row < 0 || m.Row >= b.Height {
		return ErrNonexistentRow
	}
	for _, slot := range b.rows[m.Row] {
		if slot == Blank {
			return nil
		}
	}
	return ErrFullRow
}

// InsertFromLeft slides a piece in from the left edge of the row. It
// lands in the rightmost open slot.
func (b *Board) InsertFromLeft(row int, s Slot) (int, int, error) {
	if row < 0 || row >= b.Height {
		return 0, 0, ErrNonexistentRow
	}
	for col := b.Width - 1; col >= 0; col-- {
		if b.rows[row][col] == Blank {
			b.rows[row][col] = s
			return row, col, nil
		}
	}
	return 0, 0, ErrFullRow
}

// InsertFromRight slides a piece in from the right edge of the row.
// It lands in the leftmost open slot.
func (b *Board) InsertFromRight(row int, s Slot) (int, int, error) {
	if row < 0 || row >= b.Height {
		return 0, 0, ErrNonexistentRow
	}
	for col := 0; col < b.Width; col++ {
		if b.rows[row][col] == Blank {
			b.rows[row][col] = s
			return row, col, nil
		}
	}
	return 0, 0, ErrFullRow
}

// Wins reports whether the piece just placed at (row, col) completes
// a run of four or more along any of the four axes.
func (b *Board) Wins(row, col int, s Slot) bool {
	if s == Blank {
		return false
	}

	axes := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // down-right diagonal
		{1, -1}, // down-left diagonal
	}

	for _, axis := range axes {
		run := 1 + b.runLength(row, col, axis[0], axis[1], s) + b.runLength(row, col, -axis[0], -axis[1], s)
		if run >= winLength {
			return true
		}
	}
	return false
}

// runLength counts consecutive slots equal to s walking from
// (row, col) in the given direction, exclusive of the start.
func (b *Board) runLength(row, col, dr, dc int, s Slot) int {
	n := 0
	for {
		row += dr
		col += dc
		if row < 0 || row >= b.Height || col < 0 || col >= b.Width {
			return n
		}
		if b.rows[row][col] != s {
			return n
		}
		n++
	}
}

// Full reports whether no blank slots remain.
func (b *Board) Full() bool {
	for _, row := range b.rows {
		for _, slot := range row {
			if slot == Blank {
				return false
			}
		}
	}
	return true
}

func (b *Board) String() string {
	var sb strings.Builder
	for i, row := range b.rows {
		fmt.Fprintf(&sb, "%d [ ", i)
		for _, slot := range row {
			fmt.Fprintf(&sb, "%s ", slot)
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}
