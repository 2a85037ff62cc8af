package game

import (
	"strings"
	"testing"
)

func TestRegistryCatalog(t *testing.T) {
	for _, id := range []string{"othello", "aiuebattle", "citychase"} {
		e, ok := Get(id)
		if !ok {
			t.Fatalf("engine %s not registered", id)
		}
		if e.ID() != id {
			t.Fatalf("engine registered under %s reports id %s", id, e.ID())
		}
		if e.MinPlayers() < 2 || e.MaxPlayers() < e.MinPlayers() {
			t.Fatalf("%s: bad player limits %d-%d", id, e.MinPlayers(), e.MaxPlayers())
		}
	}
	if _, ok := Get("poker"); ok {
		t.Fatal("unregistered id resolved")
	}
}

func TestStart(t *testing.T) {
	tests := []struct {
		name    string
		gameID  string
		players []string
		wantErr string
	}{
		{"othello two players", "othello", []string{"a", "b"}, ""},
		{"othello three players", "othello", []string{"a", "b", "c"}, "requires 2-2 players"},
		{"othello one player", "othello", []string{"a"}, "requires 2-2 players"},
		{"aiuebattle five players", "aiuebattle", []string{"a", "b", "c", "d", "e"}, ""},
		{"aiuebattle six players", "aiuebattle", []string{"a", "b", "c", "d", "e", "f"}, "requires 2-5 players"},
		{"citychase four players", "citychase", []string{"a", "b", "c", "d"}, ""},
		{"unknown game", "chess", []string{"a", "b"}, "unknown game: chess"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := Start(tt.gameID, tt.players, tt.players[0])
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Start() error = %v", err)
				}
				if state == nil {
					t.Fatal("Start() returned nil state")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Start() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestProcessMoveRejection(t *testing.T) {
	state, err := Start("othello", []string{"a", "b"}, "a")
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = ProcessMove("othello", state, mustJSON(t, OthelloMove{Row: 0, Col: 0}), "a")
	if err == nil || err.Error() != "invalid move" {
		t.Fatalf("error = %v, want invalid move", err)
	}

	// State is untouched by a rejection; the same legal move still works.
	next, result, err := ProcessMove("othello", state, mustJSON(t, OthelloMove{Row: 2, Col: 3}), "a")
	if err != nil {
		t.Fatalf("legal move rejected: %v", err)
	}
	if result != nil {
		t.Fatal("result produced mid-game")
	}
	if next == state {
		t.Fatal("ProcessMove returned the input state")
	}
}

func TestProcessMoveResult(t *testing.T) {
	o := &Othello{}
	s := o.NewState([]string{"a", "b"}, "a").(*OthelloState)
	for r := range s.Board {
		for c := range s.Board[r] {
			s.Board[r][c] = cellEmpty
		}
	}
	s.Board[0][0] = cellBlack
	s.PassCount = 1

	next, result, err := ProcessMove("othello", s, mustJSON(t, OthelloMove{Pass: true}), "a")
	if err != nil {
		t.Fatalf("pass rejected: %v", err)
	}
	if result == nil {
		t.Fatal("no result for the closing pass")
	}
	if result.Reason != "win" || result.WinnerID == nil || *result.WinnerID != "a" {
		t.Fatalf("result = %+v", result)
	}
	if !next.(*OthelloState).Finished {
		t.Fatal("state not finished")
	}
}

func TestPlayerView(t *testing.T) {
	// Engines without a view pass state through unchanged.
	state, _ := Start("othello", []string{"a", "b"}, "a")
	if got := PlayerView("othello", state, "a"); got != state {
		t.Fatal("othello view is not the raw state")
	}
	if HasPlayerView("othello") {
		t.Fatal("othello reports a player view")
	}
	if !HasPlayerView("citychase") {
		t.Fatal("citychase does not report a player view")
	}

	if _, ok := MaxPlayers("citychase"); !ok {
		t.Fatal("MaxPlayers miss for citychase")
	}
	if _, ok := MaxPlayers("chess"); ok {
		t.Fatal("MaxPlayers hit for unknown game")
	}
}
