package game

import (
	"encoding/json"
	"math/rand"
	"strings"
)

// aiueWordLength is the fixed width every word is padded to.
const aiueWordLength = 7

// aiueFiller marks unused trailing positions; they count as already revealed.
const aiueFiller = "×"

// aiueBoardChars is the selectable character board, in display order.
var aiueBoardChars = []string{
	"あ", "い", "う", "え", "お",
	"か", "き", "く", "け", "こ",
	"さ", "し", "す", "せ", "そ",
	"た", "ち", "つ", "て", "と",
	"な", "に", "ぬ", "ね", "の",
	"は", "ひ", "ふ", "へ", "ほ",
	"ま", "み", "む", "め", "も",
	"や", "ゆ", "よ",
	"ら", "り", "る", "れ", "ろ",
	"わ", "を", "ん",
	"ー",
}

var aiueBoardSet = func() map[string]bool {
	set := make(map[string]bool, len(aiueBoardChars))
	for _, c := range aiueBoardChars {
		set[c] = true
	}
	return set
}()

var aiueDakutenMap = map[string]string{
	"が": "か", "ぎ": "き", "ぐ": "く", "げ": "け", "ご": "こ",
	"ざ": "さ", "じ": "し", "ず": "す", "ぜ": "せ", "ぞ": "そ",
	"だ": "た", "ぢ": "ち", "づ": "つ", "で": "て", "ど": "と",
	"ば": "は", "び": "ひ", "ぶ": "ふ", "べ": "へ", "ぼ": "ほ",
	"ぱ": "は", "ぴ": "ひ", "ぷ": "ふ", "ぺ": "へ", "ぽ": "ほ",
}

var aiueSmallMap = map[string]string{
	"っ": "つ", "ゃ": "や", "ゅ": "ゆ", "ょ": "よ",
	"ぁ": "あ", "ぃ": "い", "ぅ": "う", "ぇ": "え", "ぉ": "お",
}

// NormalizeChar maps dakuten/handakuten and small kana to their base
// character. Word validation does not call it; see DESIGN.md.
func NormalizeChar(c string) string {
	if base, ok := aiueDakutenMap[c]; ok {
		return base
	}
	if base, ok := aiueSmallMap[c]; ok {
		return base
	}
	return c
}

const (
	aiuePhaseTopicSelect = "topic-select"
	aiuePhaseWordInput   = "word-input"
	aiuePhaseBattle      = "battle"
)

type AiueBattleState struct {
	PlayerIDs          []string            `json:"playerIds"`
	Phase              string              `json:"phase"`
	Topic              string              `json:"topic"`
	TopicSelectorID    string              `json:"topicSelectorId"`
	Words              map[string][]string `json:"words"`
	SubmittedPlayers   []string            `json:"submittedPlayers"`
	UsedChars          []bool              `json:"usedChars"`
	CurrentPlayerIndex int                 `json:"currentPlayerIndex"`
	AttackCount        int                 `json:"attackCount"`
	LastAttackHit      bool                `json:"lastAttackHit"`
	LastAttackChar     string              `json:"lastAttackChar"`
	LastAttackPlayerID string              `json:"lastAttackPlayerId"`
	Revealed           map[string][]bool   `json:"revealed"`
	EliminatedPlayers  []string            `json:"eliminatedPlayers"`
	EliminationOrder   []string            `json:"eliminationOrder"`
	Finished           bool                `json:"finished"`
	WinnerID           *string             `json:"winnerId"`
}

type AiueBattleMove struct {
	Type      string   `json:"type"`
	Topic     string   `json:"topic,omitempty"`
	Word      []string `json:"word,omitempty"`
	CharIndex int      `json:"charIndex"`
}

type AiueBattle struct{}

func (a *AiueBattle) ID() string      { return "aiuebattle" }
func (a *AiueBattle) Name() string    { return "AiueBattle" }
func (a *AiueBattle) MinPlayers() int { return 2 }
func (a *AiueBattle) MaxPlayers() int { return 5 }

func (a *AiueBattle) NewState(playerIDs []string, hostID string) any {
	return &AiueBattleState{
		PlayerIDs:          append([]string(nil), playerIDs...),
		Phase:              aiuePhaseTopicSelect,
		TopicSelectorID:    playerIDs[0],
		Words:              map[string][]string{},
		SubmittedPlayers:   []string{},
		UsedChars:          make([]bool, len(aiueBoardChars)),
		CurrentPlayerIndex: 0,
		Revealed:           map[string][]bool{},
		EliminatedPlayers:  []string{},
		EliminationOrder:   []string{},
	}
}

func (a *AiueBattle) ValidateMove(state any, raw json.RawMessage, playerID string) bool {
	s, ok := state.(*AiueBattleState)
	if !ok || s.Finished {
		return false
	}
	if !contains(s.PlayerIDs, playerID) {
		return false
	}

	var move AiueBattleMove
	if err := json.Unmarshal(raw, &move); err != nil {
		return false
	}

	switch s.Phase {
	case aiuePhaseTopicSelect:
		if move.Type != "select-topic" || playerID != s.TopicSelectorID {
			return false
		}
		return strings.TrimSpace(move.Topic) != ""

	case aiuePhaseWordInput:
		if move.Type != "submit-word" || contains(s.SubmittedPlayers, playerID) {
			return false
		}
		return isValidAiueWord(move.Word)

	case aiuePhaseBattle:
		if move.Type != "attack" {
			return false
		}
		if s.PlayerIDs[s.CurrentPlayerIndex] != playerID {
			return false
		}
		if contains(s.EliminatedPlayers, playerID) {
			return false
		}
		if move.CharIndex < 0 || move.CharIndex >= len(aiueBoardChars) {
			return false
		}
		return !s.UsedChars[move.CharIndex]
	}
	return false
}

func (a *AiueBattle) ApplyMove(state any, raw json.RawMessage, playerID string) any {
	s := state.(*AiueBattleState)

	var move AiueBattleMove
	if err := json.Unmarshal(raw, &move); err != nil {
		panic("aiuebattle: apply of unvalidated move: " + err.Error())
	}

	next := s.clone()

	switch s.Phase {
	case aiuePhaseTopicSelect:
		next.Phase = aiuePhaseWordInput
		next.Topic = strings.TrimSpace(move.Topic)
		return next

	case aiuePhaseWordInput:
		next.Words[playerID] = padAiueWord(move.Word)
		next.SubmittedPlayers = append(next.SubmittedPlayers, playerID)
		next.Revealed[playerID] = make([]bool, aiueWordLength)

		if len(next.SubmittedPlayers) == len(next.PlayerIDs) {
			next.Phase = aiuePhaseBattle
			next.CurrentPlayerIndex = rand.Intn(len(next.PlayerIDs))
		}
		return next

	case aiuePhaseBattle:
		applyAiueAttack(next, move.CharIndex, playerID)
		return next
	}
	return next
}

func (a *AiueBattle) Status(state any) Status {
	if state.(*AiueBattleState).Finished {
		return StatusFinished
	}
	return StatusPlaying
}

func (a *AiueBattle) Winner(state any) *string {
	return state.(*AiueBattleState).WinnerID
}

func (a *AiueBattle) CurrentPlayerID(state any) string {
	s := state.(*AiueBattleState)
	switch s.Phase {
	case aiuePhaseTopicSelect:
		return s.TopicSelectorID
	case aiuePhaseWordInput:
		for _, id := range s.PlayerIDs {
			if !contains(s.SubmittedPlayers, id) {
				return id
			}
		}
		return s.TopicSelectorID
	}
	return s.PlayerIDs[s.CurrentPlayerIndex]
}

// applyAiueAttack reveals the attacked character in every word, eliminates
// fully-revealed players, and advances the turn. Revelation is global: there
// is no attack target.
func applyAiueAttack(s *AiueBattleState, charIndex int, attackerID string) {
	char := aiueBoardChars[charIndex]
	s.UsedChars[charIndex] = true

	hit := false
	for _, id := range s.PlayerIDs {
		word := s.Words[id]
		for i, c := range word {
			if c == char && !s.Revealed[id][i] {
				s.Revealed[id][i] = true
				hit = true
			}
		}
	}

	for _, id := range s.PlayerIDs {
		if contains(s.EliminatedPlayers, id) {
			continue
		}
		word := s.Words[id]
		allRevealed := true
		for i, c := range word {
			if c != aiueFiller && !s.Revealed[id][i] {
				allRevealed = false
				break
			}
		}
		if allRevealed {
			s.EliminatedPlayers = append(s.EliminatedPlayers, id)
			s.EliminationOrder = append(s.EliminationOrder, id)
			for i := range word {
				s.Revealed[id][i] = true
			}
		}
	}

	s.LastAttackHit = hit
	s.LastAttackChar = char
	s.LastAttackPlayerID = attackerID

	active := activeAiuePlayers(s)
	if len(active) <= 1 {
		s.Finished = true
		if len(active) == 1 {
			winner := active[0]
			s.WinnerID = &winner
		} else {
			// Last two eliminated by the same attack: the attacker takes it.
			winner := attackerID
			s.WinnerID = &winner
		}
		return
	}

	attackerEliminated := contains(s.EliminatedPlayers, attackerID)
	if attackerEliminated || !hit {
		s.CurrentPlayerIndex = nextActiveIndex(s, s.CurrentPlayerIndex)
		s.AttackCount = 0
		return
	}

	// Hit and still alive: one bonus attack, capped at two per turn.
	if s.AttackCount+1 >= 2 {
		s.CurrentPlayerIndex = nextActiveIndex(s, s.CurrentPlayerIndex)
		s.AttackCount = 0
	} else {
		s.AttackCount++
	}
}

func activeAiuePlayers(s *AiueBattleState) []string {
	var active []string
	for _, id := range s.PlayerIDs {
		if !contains(s.EliminatedPlayers, id) {
			active = append(active, id)
		}
	}
	return active
}

func nextActiveIndex(s *AiueBattleState, from int) int {
	n := len(s.PlayerIDs)
	idx := (from + 1) % n
	for i := 0; i < n; i++ {
		if !contains(s.EliminatedPlayers, s.PlayerIDs[idx]) {
			return idx
		}
		idx = (idx + 1) % n
	}
	return from
}

func isValidAiueWord(word []string) bool {
	real := 0
	for _, c := range word {
		if c == aiueFiller {
			continue
		}
		if !aiueBoardSet[c] {
			return false
		}
		real++
	}
	return real >= 2 && real <= aiueWordLength
}

func padAiueWord(word []string) []string {
	out := append([]string(nil), word...)
	for len(out) < aiueWordLength {
		out = append(out, aiueFiller)
	}
	return out[:aiueWordLength]
}

func (s *AiueBattleState) clone() *AiueBattleState {
	next := *s
	next.Words = make(map[string][]string, len(s.Words))
	for id, w := range s.Words {
		next.Words[id] = append([]string(nil), w...)
	}
	next.Revealed = make(map[string][]bool, len(s.Revealed))
	for id, r := range s.Revealed {
		next.Revealed[id] = append([]bool(nil), r...)
	}
	next.SubmittedPlayers = append([]string(nil), s.SubmittedPlayers...)
	next.UsedChars = append([]bool(nil), s.UsedChars...)
	next.EliminatedPlayers = append([]string(nil), s.EliminatedPlayers...)
	next.EliminationOrder = append([]string(nil), s.EliminationOrder...)
	return &next
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
