package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Smoke client: creates a room on one connection, joins it on a second,
// starts an othello match and plays the opening move. Useful against a
// locally running server.

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func dial(url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func send(conn *websocket.Conn, typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal %s: %v", typ, err)
	}
	if err := conn.WriteJSON(message{Type: typ, Payload: data}); err != nil {
		log.Fatalf("write %s: %v", typ, err)
	}
}

// waitFor reads frames until one of the wanted type arrives, printing
// everything else along the way.
func waitFor(conn *websocket.Conn, typ string) json.RawMessage {
	deadline := time.Now().Add(10 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			log.Fatalf("waiting for %s: %v", typ, err)
		}
		fmt.Printf("<- %s %s\n", msg.Type, string(msg.Payload))
		if msg.Type == typ {
			return msg.Payload
		}
	}
}

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "websocket endpoint")
	gameID := flag.String("game", "othello", "game to start")
	flag.Parse()

	host := dial(*url)
	defer host.Close()
	guest := dial(*url)
	defer guest.Close()

	send(host, "room:create", map[string]string{"playerName": "alice", "gameId": *gameID})
	created := waitFor(host, "room:created")

	var ack struct {
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(created, &ack); err != nil {
		log.Fatalf("decode room:created: %v", err)
	}

	send(guest, "room:join", map[string]string{"roomCode": ack.RoomCode, "playerName": "bob"})
	waitFor(guest, "room:joined")

	send(host, "game:start", struct{}{})
	started := waitFor(host, "game:started")
	waitFor(guest, "game:started")

	if *gameID != "othello" {
		fmt.Println("smoke stops after game:started for", *gameID)
		return
	}

	var state struct {
		PlayerIDs          []string `json:"playerIds"`
		CurrentPlayerIndex int      `json:"currentPlayerIndex"`
	}
	if err := json.Unmarshal(started, &state); err != nil {
		log.Fatalf("decode game:started: %v", err)
	}

	// Turn order is shuffled at start; whichever connection holds the
	// current player plays a standard opening move.
	mover := host
	if state.PlayerIDs[state.CurrentPlayerIndex] != ack.PlayerID {
		mover = guest
	}
	send(mover, "game:move", map[string]any{"move": map[string]int{"row": 2, "col": 3}})
	waitFor(mover, "game:stateUpdated")

	fmt.Println("smoke OK: room", ack.RoomCode)
}
