package game

import "encoding/json"

const othelloBoardSize = 8

type othelloCell string

const (
	cellEmpty othelloCell = "empty"
	cellBlack othelloCell = "black"
	cellWhite othelloCell = "white"
)

var othelloDirections = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// OthelloState is the full board state. Player index 0 plays black.
type OthelloState struct {
	Board              [][]othelloCell `json:"board"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	PlayerIDs          []string        `json:"playerIds"`
	PassCount          int             `json:"passCount"`
	Finished           bool            `json:"finished"`
}

// OthelloMove is either a cell placement or an explicit pass.
type OthelloMove struct {
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Pass bool `json:"pass,omitempty"`
}

type Othello struct{}

func (o *Othello) ID() string      { return "othello" }
func (o *Othello) Name() string    { return "Othello" }
func (o *Othello) MinPlayers() int { return 2 }
func (o *Othello) MaxPlayers() int { return 2 }

func (o *Othello) NewState(playerIDs []string, hostID string) any {
	board := make([][]othelloCell, othelloBoardSize)
	for r := range board {
		board[r] = make([]othelloCell, othelloBoardSize)
		for c := range board[r] {
			board[r][c] = cellEmpty
		}
	}
	mid := othelloBoardSize / 2
	board[mid-1][mid-1] = cellWhite
	board[mid-1][mid] = cellBlack
	board[mid][mid-1] = cellBlack
	board[mid][mid] = cellWhite

	return &OthelloState{
		Board:              board,
		CurrentPlayerIndex: 0,
		PlayerIDs:          append([]string(nil), playerIDs...),
		PassCount:          0,
		Finished:           false,
	}
}

func (o *Othello) ValidateMove(state any, raw json.RawMessage, playerID string) bool {
	s, ok := state.(*OthelloState)
	if !ok || s.Finished {
		return false
	}

	idx := playerIndex(s.PlayerIDs, playerID)
	if idx == -1 || idx != s.CurrentPlayerIndex {
		return false
	}

	var move OthelloMove
	if err := json.Unmarshal(raw, &move); err != nil {
		return false
	}

	if move.Pass {
		return len(validOthelloMoves(s.Board, idx)) == 0
	}
	if !inBoard(move.Row, move.Col) {
		return false
	}
	return len(flippedDiscs(s.Board, move.Row, move.Col, idx)) > 0
}

func (o *Othello) ApplyMove(state any, raw json.RawMessage, playerID string) any {
	s := state.(*OthelloState)
	idx := playerIndex(s.PlayerIDs, playerID)

	var move OthelloMove
	if err := json.Unmarshal(raw, &move); err != nil {
		panic("othello: apply of unvalidated move: " + err.Error())
	}

	next := &OthelloState{
		Board:              copyBoard(s.Board),
		PlayerIDs:          s.PlayerIDs,
		CurrentPlayerIndex: 1 - idx,
	}

	if move.Pass {
		next.PassCount = s.PassCount + 1
		next.Finished = next.PassCount >= 2
		return next
	}

	color := discColor(idx)
	next.Board[move.Row][move.Col] = color
	for _, p := range flippedDiscs(s.Board, move.Row, move.Col, idx) {
		next.Board[p[0]][p[1]] = color
	}
	next.PassCount = 0

	black, white := countDiscs(next.Board)
	full := black+white == othelloBoardSize*othelloBoardSize
	neitherCanMove := len(validOthelloMoves(next.Board, 1-idx)) == 0 &&
		len(validOthelloMoves(next.Board, idx)) == 0
	next.Finished = full || neitherCanMove

	return next
}

func (o *Othello) Status(state any) Status {
	if state.(*OthelloState).Finished {
		return StatusFinished
	}
	return StatusPlaying
}

func (o *Othello) Winner(state any) *string {
	s := state.(*OthelloState)
	if !s.Finished {
		return nil
	}
	black, white := countDiscs(s.Board)
	if black > white {
		return &s.PlayerIDs[0]
	}
	if white > black {
		return &s.PlayerIDs[1]
	}
	return nil
}

func (o *Othello) CurrentPlayerID(state any) string {
	s := state.(*OthelloState)
	return s.PlayerIDs[s.CurrentPlayerIndex]
}

func discColor(idx int) othelloCell {
	if idx == 0 {
		return cellBlack
	}
	return cellWhite
}

func inBoard(row, col int) bool {
	return row >= 0 && row < othelloBoardSize && col >= 0 && col < othelloBoardSize
}

// flippedDiscs scans all 8 directions from (row,col) and collects every
// opponent disc that would flip if idx placed there. Empty result means the
// placement is illegal.
func flippedDiscs(board [][]othelloCell, row, col, idx int) [][2]int {
	if board[row][col] != cellEmpty {
		return nil
	}
	mine := discColor(idx)
	theirs := discColor(1 - idx)

	var all [][2]int
	for _, d := range othelloDirections {
		var run [][2]int
		r, c := row+d[0], col+d[1]
		for inBoard(r, c) && board[r][c] == theirs {
			run = append(run, [2]int{r, c})
			r += d[0]
			c += d[1]
		}
		if len(run) > 0 && inBoard(r, c) && board[r][c] == mine {
			all = append(all, run...)
		}
	}
	return all
}

func validOthelloMoves(board [][]othelloCell, idx int) [][2]int {
	var moves [][2]int
	for r := 0; r < othelloBoardSize; r++ {
		for c := 0; c < othelloBoardSize; c++ {
			if len(flippedDiscs(board, r, c, idx)) > 0 {
				moves = append(moves, [2]int{r, c})
			}
		}
	}
	return moves
}

func countDiscs(board [][]othelloCell) (black, white int) {
	for _, row := range board {
		for _, cell := range row {
			switch cell {
			case cellBlack:
				black++
			case cellWhite:
				white++
			}
		}
	}
	return black, white
}

func copyBoard(board [][]othelloCell) [][]othelloCell {
	out := make([][]othelloCell, len(board))
	for i, row := range board {
		out[i] = append([]othelloCell(nil), row...)
	}
	return out
}

func playerIndex(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
