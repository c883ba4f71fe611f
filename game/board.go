// Package game holds the pure board rules: gravity drops and the
// win/draw evaluator. Nothing in here touches storage or the network.
package game

import "errors"

const (
	Rows = 6
	Cols = 7
)

// Cell marks: 0 empty, 1 player one, 2 player two.
const (
	Empty = 0
	Mark1 = 1
	Mark2 = 2
)

var (
	ErrBadColumn  = errors.New("bad column")
	ErrColumnFull = errors.New("column is full")
)

// Board is row-major with row 0 at the top and row Rows-1 at the bottom.
type Board [Rows][Cols]int

// NewBoard returns an all-empty board.
func NewBoard() Board {
	return Board{}
}

// Drop places mark in the lowest empty cell of col and returns the row it
// landed on. The board is unchanged on error.
func (b *Board) Drop(col, mark int) (int, error) {
	if col < 0 || col >= Cols {
		return 0, ErrBadColumn
	}
	for row := Rows - 1; row >= 0; row-- {
		if b[row][col] == Empty {
			b[row][col] = mark
			return row, nil
		}
	}
	return 0, ErrColumnFull
}

// Full reports whether every cell is occupied.
func (b *Board) Full() bool {
	for col := 0; col < Cols; col++ {
		if b[0][col] == Empty {
			return false
		}
	}
	return true
}

// Outcome is the result of evaluating a board position.
type Outcome int

const (
	// InProgress means no four-line exists and the board has empty cells.
	InProgress Outcome = iota
	// Win means WinnerMark holds at least one four-line.
	Win
	// Draw means the board is full with no four-line.
	Draw
)

// Result pairs an Outcome with the winning mark, if any.
type Result struct {
	Outcome    Outcome
	WinnerMark int
}

// Evaluate scans rows, columns and both diagonals for a line of four equal
// marks, falling back to a full-board draw check. It never mutates the board;
// applying it is a caller decision, moves alone do not end a game.
func (b *Board) Evaluate() Result {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			mark := b[row][col]
			if mark == Empty {
				continue
			}
			for _, d := range dirs {
				if b.lineOfFour(row, col, d[0], d[1], mark) {
					return Result{Outcome: Win, WinnerMark: mark}
				}
			}
		}
	}
	if b.Full() {
		return Result{Outcome: Draw}
	}
	return Result{Outcome: InProgress}
}

func (b *Board) lineOfFour(row, col, dr, dc, mark int) bool {
	endRow := row + 3*dr
	endCol := col + 3*dc
	if endRow < 0 || endRow >= Rows || endCol < 0 || endCol >= Cols {
		return false
	}
	for i := 1; i < 4; i++ {
		if b[row+i*dr][col+i*dc] != mark {
			return false
		}
	}
	return true
}
