package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

const (
	chaseBoardSize        = 5 // 5×5 buildings
	chaseIntersectionSize = 4 // 4×4 intersections between them
	chaseHelicopterCount  = 3
	chaseMaxRounds        = 11
)

const (
	chasePhaseRoleSelect    = "role-select"
	chasePhasePoliceSetup   = "police-setup"
	chasePhaseCriminalSetup = "criminal-setup"
	chasePhasePoliceTurn    = "police-turn"
	chasePhaseCriminalTurn  = "criminal-turn"
)

const (
	sidePolice   = "police"
	sideCriminal = "criminal"
)

// Pos addresses a building (0-4) or an intersection (0-3) cell.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Pos) key() string { return fmt.Sprintf("%d,%d", p.Row, p.Col) }

// RevealedTrace is public knowledge produced by a search: a trace exists at
// Pos; Round carries the round number only when it was publicly revealed.
type RevealedTrace struct {
	Pos   Pos  `json:"pos"`
	Round *int `json:"round"`
}

// SearchResult is the outcome of the most recent building search.
type SearchResult struct {
	Pos        Pos  `json:"pos"`
	Found      bool `json:"found"`
	TraceFound bool `json:"traceFound"`
	TraceRound *int `json:"traceRound"`
}

type CityChaseState struct {
	PlayerIDs []string `json:"playerIds"`
	Phase     string   `json:"phase"`
	Round     int      `json:"round"`

	CriminalID *string  `json:"criminalId"`
	PoliceIDs  []string `json:"policeIds"`
	HostID     string   `json:"hostId"`

	Helicopters           []*Pos   `json:"helicopters"`
	HelicopterAssignments []string `json:"helicopterAssignments"`

	// Hidden from police until the game finishes.
	CriminalPos *Pos           `json:"criminalPos"`
	Traces      map[string]int `json:"traces"`

	RevealedTraces   []RevealedTrace `json:"revealedTraces"`
	SearchedEmpty    []Pos           `json:"searchedEmpty"`
	LastSearchResult *SearchResult   `json:"lastSearchResult"`

	CurrentPoliceIndex     int `json:"currentPoliceIndex"`
	CurrentHelicopterIndex int `json:"currentHelicopterIndex"`

	Finished    bool   `json:"finished"`
	WinningSide string `json:"winningSide,omitempty"`
}

// CityChaseView is the per-player projection of CityChaseState.
type CityChaseView struct {
	*CityChaseState
	IsCriminal bool `json:"isCriminal"`
}

type CityChaseMove struct {
	Type            string `json:"type"`
	TargetID        string `json:"targetId,omitempty"`
	HelicopterIndex int    `json:"helicopterIndex"`
	Pos             *Pos   `json:"pos,omitempty"`
}

type CityChase struct{}

func (cc *CityChase) ID() string      { return "citychase" }
func (cc *CityChase) Name() string    { return "CityChase" }
func (cc *CityChase) MinPlayers() int { return 2 }
func (cc *CityChase) MaxPlayers() int { return 4 }

func (cc *CityChase) NewState(playerIDs []string, hostID string) any {
	if hostID == "" {
		hostID = playerIDs[0]
	}
	return &CityChaseState{
		PlayerIDs:   append([]string(nil), playerIDs...),
		Phase:       chasePhaseRoleSelect,
		Round:       1,
		PoliceIDs:   []string{},
		HostID:      hostID,
		Helicopters: make([]*Pos, chaseHelicopterCount),
		Traces:      map[string]int{},
	}
}

func (cc *CityChase) ValidateMove(state any, raw json.RawMessage, playerID string) bool {
	s, ok := state.(*CityChaseState)
	if !ok || s.Finished {
		return false
	}

	var move CityChaseMove
	if err := json.Unmarshal(raw, &move); err != nil {
		return false
	}

	switch s.Phase {
	case chasePhaseRoleSelect:
		return move.Type == "assign-criminal" &&
			playerID == s.HostID &&
			contains(s.PlayerIDs, move.TargetID)

	case chasePhasePoliceSetup:
		if move.Type != "place-helicopter" || playerID != cc.CurrentPlayerID(s) {
			return false
		}
		if move.Pos == nil || !validIntersection(*move.Pos) {
			return false
		}
		return !intersectionOccupied(s.Helicopters, *move.Pos, -1)

	case chasePhaseCriminalSetup:
		if move.Type != "place-criminal" || s.CriminalID == nil || playerID != *s.CriminalID {
			return false
		}
		return move.Pos != nil && validBuilding(*move.Pos)

	case chasePhasePoliceTurn:
		if playerID != cc.CurrentPlayerID(s) {
			return false
		}
		switch move.Type {
		case "move-helicopter":
			if move.HelicopterIndex != s.CurrentHelicopterIndex {
				return false
			}
			heli := s.Helicopters[move.HelicopterIndex]
			if heli == nil || move.Pos == nil || !validIntersection(*move.Pos) {
				return false
			}
			if !adjacent(*heli, *move.Pos) {
				return false
			}
			return !intersectionOccupied(s.Helicopters, *move.Pos, move.HelicopterIndex)
		case "search-building":
			if move.HelicopterIndex != s.CurrentHelicopterIndex {
				return false
			}
			heli := s.Helicopters[move.HelicopterIndex]
			if heli == nil || move.Pos == nil || !validBuilding(*move.Pos) {
				return false
			}
			return surroundsIntersection(*move.Pos, *heli)
		}
		return false

	case chasePhaseCriminalTurn:
		if move.Type != "move-criminal" || s.CriminalID == nil || playerID != *s.CriminalID {
			return false
		}
		if s.CriminalPos == nil || move.Pos == nil || !validBuilding(*move.Pos) {
			return false
		}
		if !adjacent(*s.CriminalPos, *move.Pos) {
			return false
		}
		_, traced := s.Traces[move.Pos.key()]
		return !traced
	}
	return false
}

func (cc *CityChase) ApplyMove(state any, raw json.RawMessage, playerID string) any {
	s := state.(*CityChaseState)

	var move CityChaseMove
	if err := json.Unmarshal(raw, &move); err != nil {
		panic("citychase: apply of unvalidated move: " + err.Error())
	}

	next := s.clone()

	switch s.Phase {
	case chasePhaseRoleSelect:
		criminalID := move.TargetID
		next.CriminalID = &criminalID
		next.PoliceIDs = nil
		for _, id := range s.PlayerIDs {
			if id != criminalID {
				next.PoliceIDs = append(next.PoliceIDs, id)
			}
		}
		next.HelicopterAssignments = assignHelicopters(next.PoliceIDs)
		next.Phase = chasePhasePoliceSetup
		next.CurrentPoliceIndex = 0
		next.CurrentHelicopterIndex = helicoptersFor(next.HelicopterAssignments, next.PoliceIDs[0])[0]
		return next

	case chasePhasePoliceSetup:
		pos := *move.Pos
		next.Helicopters[s.CurrentHelicopterIndex] = &pos
		if pi, hi, ok := advancePolice(next); ok {
			next.CurrentPoliceIndex = pi
			next.CurrentHelicopterIndex = hi
			return next
		}
		next.Phase = chasePhaseCriminalSetup
		next.CurrentPoliceIndex = 0
		next.CurrentHelicopterIndex = 0
		return next

	case chasePhaseCriminalSetup:
		pos := *move.Pos
		next.CriminalPos = &pos
		next.Traces[pos.key()] = 1
		next.Phase = chasePhasePoliceTurn
		next.CurrentPoliceIndex = 0
		next.CurrentHelicopterIndex = helicoptersFor(next.HelicopterAssignments, next.PoliceIDs[0])[0]
		next.LastSearchResult = nil
		return next

	case chasePhasePoliceTurn:
		switch move.Type {
		case "move-helicopter":
			pos := *move.Pos
			next.Helicopters[move.HelicopterIndex] = &pos
			next.LastSearchResult = nil
		case "search-building":
			pos := *move.Pos
			if s.CriminalPos != nil && *s.CriminalPos == pos {
				next.Finished = true
				next.WinningSide = sidePolice
				next.LastSearchResult = &SearchResult{Pos: pos, Found: true}
				return next
			}
			if round, traced := s.Traces[pos.key()]; traced {
				next.RevealedTraces = append(next.RevealedTraces, RevealedTrace{
					Pos:   pos,
					Round: publicRound(round),
				})
				next.LastSearchResult = &SearchResult{Pos: pos, TraceFound: true, TraceRound: publicRound(round)}
			} else {
				next.SearchedEmpty = append(next.SearchedEmpty, pos)
				next.LastSearchResult = &SearchResult{Pos: pos}
			}
		}
		if pi, hi, ok := advancePolice(next); ok {
			next.CurrentPoliceIndex = pi
			next.CurrentHelicopterIndex = hi
			return next
		}
		next.Phase = chasePhaseCriminalTurn
		finalizeCriminalTurn(next)
		return next

	case chasePhaseCriminalTurn:
		pos := *move.Pos
		next.CriminalPos = &pos
		next.Round = s.Round + 1
		next.Traces[pos.key()] = next.Round
		next.Phase = chasePhasePoliceTurn
		next.CurrentPoliceIndex = 0
		next.CurrentHelicopterIndex = helicoptersFor(next.HelicopterAssignments, next.PoliceIDs[0])[0]
		next.LastSearchResult = nil
		next.SearchedEmpty = nil
		return next
	}
	return next
}

func (cc *CityChase) Status(state any) Status {
	s := state.(*CityChaseState)
	if s.Finished {
		return StatusFinished
	}
	if s.Phase == chasePhaseCriminalTurn {
		if s.Round >= chaseMaxRounds || !criminalCanMove(s) {
			return StatusFinished
		}
	}
	return StatusPlaying
}

func (cc *CityChase) Winner(state any) *string {
	s := state.(*CityChaseState)
	switch s.WinningSide {
	case sidePolice:
		return policeRepresentative(s)
	case sideCriminal:
		return s.CriminalID
	}
	// Status said finished but the winning side was never stamped.
	if s.Phase == chasePhaseCriminalTurn {
		if s.Round >= chaseMaxRounds {
			return s.CriminalID
		}
		if !criminalCanMove(s) {
			return policeRepresentative(s)
		}
	}
	return nil
}

func (cc *CityChase) CurrentPlayerID(state any) string {
	s := state.(*CityChaseState)
	switch s.Phase {
	case chasePhaseRoleSelect:
		return s.HostID
	case chasePhasePoliceSetup, chasePhasePoliceTurn:
		if s.CurrentPoliceIndex < len(s.PoliceIDs) {
			return s.PoliceIDs[s.CurrentPoliceIndex]
		}
		return s.PoliceIDs[0]
	case chasePhaseCriminalSetup, chasePhaseCriminalTurn:
		if s.CriminalID != nil {
			return *s.CriminalID
		}
	}
	return s.PlayerIDs[0]
}

// PlayerView hides the criminal's position and the trace map from police
// while the game is live. The criminal always sees everything, and a
// finished game is fully revealed to everyone for post-game review.
func (cc *CityChase) PlayerView(state any, viewerID string) any {
	s := state.(*CityChaseState)
	isCriminal := s.CriminalID != nil && viewerID == *s.CriminalID

	if isCriminal || s.Finished {
		return &CityChaseView{CityChaseState: s, IsCriminal: isCriminal}
	}

	redacted := s.clone()
	redacted.CriminalPos = nil
	redacted.Traces = map[string]int{}
	return &CityChaseView{CityChaseState: redacted, IsCriminal: false}
}

// finalizeCriminalTurn stamps the result when entering criminal-turn already
// decides the game: round limit reached, or the criminal is boxed in.
func finalizeCriminalTurn(s *CityChaseState) {
	if s.Round >= chaseMaxRounds {
		s.Finished = true
		s.WinningSide = sideCriminal
		return
	}
	if !criminalCanMove(s) {
		s.Finished = true
		s.WinningSide = sidePolice
	}
}

func policeRepresentative(s *CityChaseState) *string {
	if len(s.PoliceIDs) == 0 {
		return nil
	}
	return &s.PoliceIDs[0]
}

func validBuilding(p Pos) bool {
	return p.Row >= 0 && p.Row < chaseBoardSize && p.Col >= 0 && p.Col < chaseBoardSize
}

func validIntersection(p Pos) bool {
	return p.Row >= 0 && p.Row < chaseIntersectionSize && p.Col >= 0 && p.Col < chaseIntersectionSize
}

func adjacent(a, b Pos) bool {
	dr := abs(a.Row - b.Row)
	dc := abs(a.Col - b.Col)
	return (dr == 1 && dc == 0) || (dr == 0 && dc == 1)
}

func intersectionOccupied(helis []*Pos, p Pos, exclude int) bool {
	for i, h := range helis {
		if h != nil && i != exclude && *h == p {
			return true
		}
	}
	return false
}

// surroundsIntersection reports whether building b is one of the four
// buildings around intersection (r,c): (r,c), (r,c+1), (r+1,c), (r+1,c+1).
func surroundsIntersection(b Pos, inter Pos) bool {
	return (b.Row == inter.Row || b.Row == inter.Row+1) &&
		(b.Col == inter.Col || b.Col == inter.Col+1)
}

func criminalMoves(s *CityChaseState) []Pos {
	if s.CriminalPos == nil {
		return nil
	}
	var moves []Pos
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		p := Pos{Row: s.CriminalPos.Row + d[0], Col: s.CriminalPos.Col + d[1]}
		if !validBuilding(p) {
			continue
		}
		if _, traced := s.Traces[p.key()]; !traced {
			moves = append(moves, p)
		}
	}
	return moves
}

func criminalCanMove(s *CityChaseState) bool {
	return len(criminalMoves(s)) > 0
}

// assignHelicopters splits the three helicopters among police players:
// one player takes all three, two players split 2/1 at random, three
// players take one each in shuffled order.
func assignHelicopters(policeIDs []string) []string {
	switch len(policeIDs) {
	case 1:
		return []string{policeIDs[0], policeIDs[0], policeIDs[0]}
	case 2:
		two := policeIDs[rand.Intn(2)]
		one := policeIDs[0]
		if one == two {
			one = policeIDs[1]
		}
		return []string{two, two, one}
	default:
		shuffled := append([]string(nil), policeIDs...)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled
	}
}

func helicoptersFor(assignments []string, playerID string) []int {
	var idxs []int
	for i, id := range assignments {
		if id == playerID {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// advancePolice steps to the current player's next helicopter, or the next
// police player's first one. ok=false means every helicopter has acted.
func advancePolice(s *CityChaseState) (policeIndex, heliIndex int, ok bool) {
	current := s.PoliceIDs[s.CurrentPoliceIndex]
	mine := helicoptersFor(s.HelicopterAssignments, current)

	at := -1
	for i, h := range mine {
		if h == s.CurrentHelicopterIndex {
			at = i
			break
		}
	}
	if at+1 < len(mine) {
		return s.CurrentPoliceIndex, mine[at+1], true
	}

	for i := s.CurrentPoliceIndex + 1; i < len(s.PoliceIDs); i++ {
		next := helicoptersFor(s.HelicopterAssignments, s.PoliceIDs[i])
		if len(next) > 0 {
			return i, next[0], true
		}
	}
	return 0, 0, false
}

func publicRound(round int) *int {
	if round == 1 || round == 6 {
		return &round
	}
	return nil
}

func (s *CityChaseState) clone() *CityChaseState {
	next := *s
	next.PoliceIDs = append([]string(nil), s.PoliceIDs...)
	next.Helicopters = make([]*Pos, len(s.Helicopters))
	for i, h := range s.Helicopters {
		if h != nil {
			p := *h
			next.Helicopters[i] = &p
		}
	}
	next.HelicopterAssignments = append([]string(nil), s.HelicopterAssignments...)
	if s.CriminalPos != nil {
		p := *s.CriminalPos
		next.CriminalPos = &p
	}
	next.Traces = make(map[string]int, len(s.Traces))
	for k, v := range s.Traces {
		next.Traces[k] = v
	}
	next.RevealedTraces = append([]RevealedTrace(nil), s.RevealedTraces...)
	next.SearchedEmpty = append([]Pos(nil), s.SearchedEmpty...)
	return &next
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
