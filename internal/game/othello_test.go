package game

import (
	"encoding/json"
	"testing"
)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestOthelloNewState(t *testing.T) {
	o := &Othello{}
	s := o.NewState([]string{"p1", "p2"}, "p1").(*OthelloState)

	black, white := countDiscs(s.Board)
	if black != 2 || white != 2 {
		t.Fatalf("initial discs = %d black, %d white, want 2/2", black, white)
	}
	if s.CurrentPlayerIndex != 0 {
		t.Fatalf("CurrentPlayerIndex = %d, want 0", s.CurrentPlayerIndex)
	}
	if o.CurrentPlayerID(s) != "p1" {
		t.Fatalf("CurrentPlayerID = %s, want p1", o.CurrentPlayerID(s))
	}
	if o.Status(s) != StatusPlaying {
		t.Fatalf("Status = %s, want playing", o.Status(s))
	}
}

func TestOthelloValidateMove(t *testing.T) {
	o := &Othello{}
	s := o.NewState([]string{"p1", "p2"}, "p1")

	tests := []struct {
		name     string
		playerID string
		move     OthelloMove
		want     bool
	}{
		{"opening up", "p1", OthelloMove{Row: 2, Col: 3}, true},
		{"opening left", "p1", OthelloMove{Row: 3, Col: 2}, true},
		{"opening right", "p1", OthelloMove{Row: 4, Col: 5}, true},
		{"opening down", "p1", OthelloMove{Row: 5, Col: 4}, true},
		{"no flips", "p1", OthelloMove{Row: 0, Col: 0}, false},
		{"occupied cell", "p1", OthelloMove{Row: 3, Col: 3}, false},
		{"out of bounds", "p1", OthelloMove{Row: 8, Col: 0}, false},
		{"negative coords", "p1", OthelloMove{Row: -1, Col: 3}, false},
		{"wrong turn", "p2", OthelloMove{Row: 2, Col: 3}, false},
		{"unknown player", "p3", OthelloMove{Row: 2, Col: 3}, false},
		{"pass with moves available", "p1", OthelloMove{Pass: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.ValidateMove(s, mustJSON(t, tt.move), tt.playerID)
			if got != tt.want {
				t.Errorf("ValidateMove(%+v) = %v, want %v", tt.move, got, tt.want)
			}
		})
	}
}

func TestOthelloApplyOpeningMove(t *testing.T) {
	o := &Othello{}
	s := o.NewState([]string{"p1", "p2"}, "p1")

	next := o.ApplyMove(s, mustJSON(t, OthelloMove{Row: 2, Col: 3}), "p1").(*OthelloState)

	black, white := countDiscs(next.Board)
	if black != 4 || white != 1 {
		t.Fatalf("after opening move discs = %d black, %d white, want 4/1", black, white)
	}
	if next.Board[2][3] != cellBlack || next.Board[3][3] != cellBlack {
		t.Fatal("placed or flipped disc is not black")
	}
	if next.CurrentPlayerIndex != 1 {
		t.Fatalf("turn did not pass, CurrentPlayerIndex = %d", next.CurrentPlayerIndex)
	}
	if next.Finished {
		t.Fatal("game finished after one move")
	}

	// Prior state untouched.
	oldBlack, oldWhite := countDiscs(s.(*OthelloState).Board)
	if oldBlack != 2 || oldWhite != 2 {
		t.Fatalf("prior state mutated: %d/%d", oldBlack, oldWhite)
	}
}

func TestOthelloPlacementGrowsByOne(t *testing.T) {
	o := &Othello{}
	state := o.NewState([]string{"p1", "p2"}, "p1")

	players := []string{"p1", "p2"}
	for turn := 0; turn < 6; turn++ {
		s := state.(*OthelloState)
		idx := s.CurrentPlayerIndex
		moves := validOthelloMoves(s.Board, idx)
		if len(moves) == 0 {
			break
		}
		b, w := countDiscs(s.Board)
		total := b + w

		move := OthelloMove{Row: moves[0][0], Col: moves[0][1]}
		raw := mustJSON(t, move)
		if !o.ValidateMove(state, raw, players[idx]) {
			t.Fatalf("turn %d: enumerated move %+v rejected", turn, move)
		}
		state = o.ApplyMove(state, raw, players[idx])

		b2, w2 := countDiscs(state.(*OthelloState).Board)
		if b2+w2 != total+1 {
			t.Fatalf("turn %d: disc total %d -> %d, want +1", turn, total, b2+w2)
		}
	}
}

func TestOthelloDoublePassEnds(t *testing.T) {
	o := &Othello{}
	s := o.NewState([]string{"p1", "p2"}, "p1").(*OthelloState)

	// A lone black disc leaves neither side with a legal placement, so both
	// must pass.
	for r := range s.Board {
		for c := range s.Board[r] {
			s.Board[r][c] = cellEmpty
		}
	}
	s.Board[0][0] = cellBlack

	pass := mustJSON(t, OthelloMove{Pass: true})
	if !o.ValidateMove(s, pass, "p1") {
		t.Fatal("pass rejected with no legal moves")
	}

	mid := o.ApplyMove(s, pass, "p1").(*OthelloState)
	if mid.Finished {
		t.Fatal("finished after a single pass")
	}
	if !o.ValidateMove(mid, pass, "p2") {
		t.Fatal("second pass rejected")
	}

	end := o.ApplyMove(mid, pass, "p2").(*OthelloState)
	if !end.Finished {
		t.Fatal("not finished after consecutive passes")
	}
	winner := o.Winner(end)
	if winner == nil || *winner != "p1" {
		t.Fatalf("winner = %v, want p1 (sole black disc)", winner)
	}
}

func TestOthelloDrawHasNoWinner(t *testing.T) {
	o := &Othello{}
	s := o.NewState([]string{"p1", "p2"}, "p1").(*OthelloState)
	for r := range s.Board {
		for c := range s.Board[r] {
			s.Board[r][c] = cellEmpty
		}
	}
	s.Board[0][0] = cellBlack
	s.Board[7][7] = cellWhite
	s.Finished = true

	if w := o.Winner(s); w != nil {
		t.Fatalf("winner = %v on an even board, want nil", *w)
	}
}

func TestOthelloMoveAfterFinish(t *testing.T) {
	o := &Othello{}
	s := o.NewState([]string{"p1", "p2"}, "p1").(*OthelloState)
	s.Finished = true

	if o.ValidateMove(s, mustJSON(t, OthelloMove{Row: 2, Col: 3}), "p1") {
		t.Fatal("move accepted on a finished game")
	}
}
